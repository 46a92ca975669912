package memory

import (
	"context"
	"sort"
	"sync"

	"devquiz/internal/domain"
)

// ResultStore keeps completed sessions in process memory. Data is lost on restart;
// it backs the service when no database is configured.
type ResultStore struct {
	mu      sync.RWMutex
	records []domain.SessionRecord
	users   map[string]domain.User
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		users: map[string]domain.User{
			domain.GuestUserID: {ID: domain.GuestUserID, Name: "Guest"},
		},
	}
}

func (s *ResultStore) RecordSession(_ context.Context, record domain.SessionRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Answers = append([]domain.AnswerRecord(nil), record.Answers...)
	s.records = append(s.records, record)
	return record.ID, nil
}

// PutUser registers a user for leaderboard display names.
func (s *ResultStore) PutUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *ResultStore) Leaderboard(_ context.Context, category domain.Category, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.records))
	for _, r := range s.records {
		if category != "" && r.Category != category {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			SessionID:      r.ID,
			UserID:         r.UserID,
			UserName:       s.users[r.UserID].Name,
			Category:       r.Category,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			CorrectAnswers: r.CorrectAnswers,
			TimeSpent:      r.TimeSpent,
			CompletedAt:    r.CompletedAt,
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RanksBefore(entries[j])
	})
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *ResultStore) SessionDetail(_ context.Context, recordID string) (domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == recordID {
			r.Answers = append([]domain.AnswerRecord(nil), r.Answers...)
			return r, nil
		}
	}
	return domain.SessionRecord{}, domain.ErrRecordNotFound
}

func (s *ResultStore) SessionSummaries(_ context.Context, userID string) ([]domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SessionRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if userID != "" && r.UserID != userID {
			continue
		}
		r.Answers = nil
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}
