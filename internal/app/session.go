package app

import (
	"sync"
	"time"

	"devquiz/internal/domain"
)

// Session wraps one user's Engine with the bookkeeping the service needs.
// All engine access goes through the session mutex, so events for the same
// session are handled one at a time.
type Session struct {
	ID     string
	UserID string

	mu       sync.Mutex
	engine   *Engine
	recordID string
	lastSeen time.Time
}

func newSession(id, userID string, engine *Engine, now time.Time) *Session {
	return &Session{
		ID:       id,
		UserID:   userID,
		engine:   engine,
		lastSeen: now,
	}
}

// LastSeen is the time of the last event handled for this session.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionView is what clients see of a session.
type SessionView struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	Category  domain.Category        `json:"category"`
	State     string                 `json:"state"`
	Index     int                    `json:"index"`
	Total     int                    `json:"total"`
	Current   *domain.PublicQuestion `json:"current,omitempty"`
	Selected  *int                   `json:"selected,omitempty"`
	Answered  []bool                 `json:"answered"`
	Elapsed   int                    `json:"elapsedSeconds"`
	Persisted bool                   `json:"persisted"`
	RecordID  string                 `json:"recordId,omitempty"`
}

// ResultView is a session result, either final or a preview of an active session.
type ResultView struct {
	domain.QuizResult
	SessionID string `json:"sessionId"`
	Final     bool   `json:"final"`
	RecordID  string `json:"recordId,omitempty"`
}

func (s *Session) viewLocked() SessionView {
	e := s.engine
	view := SessionView{
		ID:        s.ID,
		UserID:    s.UserID,
		Category:  e.Category(),
		State:     e.State().String(),
		Index:     e.CurrentIndex(),
		Total:     e.Total(),
		Answered:  e.Answered(),
		Elapsed:   int(e.Elapsed() / time.Second),
		Persisted: s.recordID != "",
		RecordID:  s.recordID,
	}
	if q, ok := e.Current(); ok {
		public := q.Public()
		view.Current = &public
		if selected, ok := e.Selected(q.ID); ok {
			view.Selected = &selected
		}
	}
	return view
}
