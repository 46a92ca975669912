package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"devquiz/internal/app"
)

// SessionStore keeps sessions in a local map and marks each one live in Redis
// under quiz:session:{id}. The marker's TTL is refreshed on every lookup; once it
// expires the session is treated as gone. Redis errors degrade to the local map.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Save(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	_ = s.client.Set(context.Background(), s.key(session.ID), session.UserID, s.ttl).Err()
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl <= 0 {
		return session, true
	}

	alive, err := s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Result()
	if err != nil || alive {
		return session, true
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil, false
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// DeleteIdle removes sessions last seen before cutoff together with their markers.
func (s *SessionStore) DeleteIdle(cutoff time.Time) int {
	s.mu.Lock()
	var idle []string
	for id, session := range s.sessions {
		if session.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			idle = append(idle, s.key(id))
		}
	}
	s.mu.Unlock()
	if len(idle) > 0 {
		_ = s.client.Del(context.Background(), idle...).Err()
	}
	return len(idle)
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
