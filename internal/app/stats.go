package app

import (
	"context"
	"fmt"
	"strings"

	"devquiz/internal/domain"
)

// Leaderboard ranks persisted sessions, optionally within one category.
func (s *QuizService) Leaderboard(ctx context.Context, category domain.Category, limit int) ([]domain.LeaderboardEntry, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	return s.results.Leaderboard(ctx, category, limit)
}

// Stats aggregates persisted sessions for userID, or for everyone when empty.
func (s *QuizService) Stats(ctx context.Context, userID string) (domain.QuizStats, error) {
	records, err := s.results.SessionSummaries(ctx, strings.TrimSpace(userID))
	if err != nil {
		return domain.QuizStats{}, fmt.Errorf("load sessions: %w", err)
	}
	return ComputeStats(records), nil
}

// History lists a user's persisted sessions, newest first.
func (s *QuizService) History(ctx context.Context, userID string) ([]domain.SessionRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = domain.GuestUserID
	}
	return s.results.SessionSummaries(ctx, userID)
}

// Record returns a persisted session together with its answers.
func (s *QuizService) Record(ctx context.Context, recordID string) (domain.SessionRecord, error) {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return domain.SessionRecord{}, domain.ErrRecordNotFound
	}
	return s.results.SessionDetail(ctx, recordID)
}

// ComputeStats folds session records into QuizStats in a single pass. Every
// category has an entry, zero-valued when it has no sessions.
func ComputeStats(records []domain.SessionRecord) domain.QuizStats {
	type acc struct{ count, sum, best int }
	perCategory := make(map[domain.Category]*acc, len(domain.Categories))
	for _, c := range domain.Categories {
		perCategory[c] = &acc{}
	}

	var stats domain.QuizStats
	sum := 0
	for _, r := range records {
		stats.TotalQuizzes++
		stats.TotalTimeSpent += r.TimeSpent
		sum += r.Score
		if r.Score > stats.BestScore {
			stats.BestScore = r.Score
		}
		if a, ok := perCategory[r.Category]; ok {
			a.count++
			a.sum += r.Score
			if r.Score > a.best {
				a.best = r.Score
			}
		}
	}

	stats.AverageScore = roundedMean(sum, stats.TotalQuizzes)
	stats.CategoryStats = make(map[domain.Category]domain.CategoryScore, len(perCategory))
	for c, a := range perCategory {
		stats.CategoryStats[c] = domain.CategoryScore{
			TotalQuizzes: a.count,
			AverageScore: roundedMean(a.sum, a.count),
			BestScore:    a.best,
		}
	}
	return stats
}

func roundedMean(sum, n int) int {
	if n == 0 {
		return 0
	}
	return (2*sum + n) / (2 * n)
}
