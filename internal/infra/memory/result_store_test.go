package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devquiz/internal/domain"
)

func TestResultStoreLeaderboardOrdering(t *testing.T) {
	store := NewResultStore()
	store.PutUser(domain.User{ID: "u1", Name: "Ada"})
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	records := []domain.SessionRecord{
		{ID: "s1", UserID: "u1", Category: domain.CategoryFrontend, Score: 80, TimeSpent: 300, CompletedAt: base},
		{ID: "s2", UserID: "guest", Category: domain.CategoryFrontend, Score: 80, TimeSpent: 120, CompletedAt: base.Add(time.Minute)},
		{ID: "s3", UserID: "u1", Category: domain.CategoryBackend, Score: 100, TimeSpent: 600, CompletedAt: base.Add(2 * time.Minute)},
		{ID: "s4", UserID: "guest", Category: domain.CategoryFrontend, Score: 40, TimeSpent: 60, CompletedAt: base.Add(3 * time.Minute)},
	}
	for _, r := range records {
		id, err := store.RecordSession(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, r.ID, id)
	}

	all, err := store.Leaderboard(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"s3", "s2", "s1", "s4"}, sessionIDs(all))
	assert.Equal(t, "Ada", all[0].UserName)
	assert.Equal(t, "Guest", all[1].UserName)

	frontend, err := store.Leaderboard(ctx, domain.CategoryFrontend, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s1"}, sessionIDs(frontend))
}

func TestResultStoreSummariesNewestFirst(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	_, _ = store.RecordSession(ctx, domain.SessionRecord{ID: "old", UserID: "u1", CompletedAt: base,
		Answers: []domain.AnswerRecord{{QuestionID: "q", UserAnswer: 1, IsCorrect: true}}})
	_, _ = store.RecordSession(ctx, domain.SessionRecord{ID: "new", UserID: "u1", CompletedAt: base.Add(time.Hour)})
	_, _ = store.RecordSession(ctx, domain.SessionRecord{ID: "other", UserID: "u2", CompletedAt: base.Add(2 * time.Hour)})

	mine, err := store.SessionSummaries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "new", mine[0].ID)
	assert.Nil(t, mine[1].Answers)

	everyone, err := store.SessionSummaries(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everyone, 3)
}

func TestResultStoreSessionDetail(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()
	answers := []domain.AnswerRecord{
		{QuestionID: "react-1", UserAnswer: 1, IsCorrect: true},
		{QuestionID: "react-2", UserAnswer: 0, IsCorrect: false},
	}
	_, err := store.RecordSession(ctx, domain.SessionRecord{ID: "s1", UserID: "u1", Score: 50, Answers: answers})
	require.NoError(t, err)

	detail, err := store.SessionDetail(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 50, detail.Score)
	assert.Equal(t, answers, detail.Answers)

	// callers get their own copy of the answers
	detail.Answers[0].UserAnswer = 3
	again, err := store.SessionDetail(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Answers[0].UserAnswer)

	_, err = store.SessionDetail(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func sessionIDs(entries []domain.LeaderboardEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.SessionID
	}
	return ids
}
