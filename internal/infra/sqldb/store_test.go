package sqldb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"devquiz/internal/domain"
	"devquiz/internal/infra/seed"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, CreateSchema(context.Background(), db))
	return NewStore(db)
}

func TestSeedAndLoadQuestions(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	data := seed.Bundled()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Seed(ctx, data, seed.DemoSessions(data.Questions, now)))

	frontend, err := store.LoadQuestions(ctx, domain.CategoryFrontend)
	require.NoError(t, err)
	require.Len(t, frontend, 6)
	for _, q := range frontend {
		require.NoError(t, q.Validate())
	}

	devops, err := store.LoadQuestions(ctx, domain.CategoryDevOps)
	require.NoError(t, err)
	require.Len(t, devops, 1)
	assert.Equal(t, "docker-1", devops[0].ID)
	assert.Equal(t, 0, devops[0].Correct)
	assert.Contains(t, devops[0].Tags, "dockerfile")
	assert.Len(t, devops[0].Options, 4)

	board, err := store.Leaderboard(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "Demo User", board[0].UserName)
	assert.Equal(t, 80, board[0].Score)
	assert.True(t, now.Equal(board[0].CompletedAt))

	answers, err := store.Answers(ctx, "demo-session-1")
	require.NoError(t, err)
	require.Len(t, answers, 5)
	assert.False(t, answers[4].IsCorrect)

	// reseeding clears sessions and keeps users unique
	require.NoError(t, store.Seed(ctx, data, nil))
	board, err = store.Leaderboard(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, board)
	empty, err := store.LoadQuestions(ctx, domain.CategoryDatabase)
	require.NoError(t, err)
	assert.Len(t, empty, 1)
}

func TestRecordSessionAndRanking(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Seed(ctx, seed.Data{Users: []domain.User{{ID: "u1", Name: "Ada"}}}, nil))

	records := []domain.SessionRecord{
		{ID: "s1", UserID: "u1", Category: domain.CategoryFrontend, Score: 80, TotalQuestions: 5, CorrectAnswers: 4, TimeSpent: 300, CompletedAt: base},
		{ID: "s2", UserID: "guest", Category: domain.CategoryFrontend, Score: 80, TotalQuestions: 5, CorrectAnswers: 4, TimeSpent: 120, CompletedAt: base.Add(time.Minute)},
		{ID: "s3", UserID: "u1", Category: domain.CategoryBackend, Score: 100, TotalQuestions: 2, CorrectAnswers: 2, TimeSpent: 600, CompletedAt: base.Add(2 * time.Minute),
			Answers: []domain.AnswerRecord{{QuestionID: "node-1", UserAnswer: 1, IsCorrect: true}, {QuestionID: "api-1", UserAnswer: 2, IsCorrect: true}}},
		{ID: "s4", UserID: "guest", Category: domain.CategoryFrontend, Score: 40, TotalQuestions: 5, CorrectAnswers: 2, TimeSpent: 60, CompletedAt: base.Add(3 * time.Minute)},
	}
	for _, r := range records {
		id, err := store.RecordSession(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, r.ID, id)
	}

	all, err := store.Leaderboard(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"s3", "s2", "s1", "s4"}, []string{all[0].SessionID, all[1].SessionID, all[2].SessionID, all[3].SessionID})
	assert.Equal(t, "Ada", all[0].UserName)
	assert.Equal(t, "Guest", all[1].UserName)

	frontend, err := store.Leaderboard(ctx, domain.CategoryFrontend, 2)
	require.NoError(t, err)
	require.Len(t, frontend, 2)
	assert.Equal(t, "s2", frontend[0].SessionID)

	mine, err := store.SessionSummaries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "s3", mine[0].ID)
	assert.Nil(t, mine[0].Answers)

	detail, err := store.SessionDetail(ctx, "s3")
	require.NoError(t, err)
	assert.Equal(t, 100, detail.Score)
	assert.Equal(t, domain.CategoryBackend, detail.Category)
	require.Len(t, detail.Answers, 2)
	assert.Equal(t, "node-1", detail.Answers[0].QuestionID)
	assert.Equal(t, "api-1", detail.Answers[1].QuestionID)

	_, err = store.SessionDetail(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	_, err = store.RecordSession(ctx, records[0])
	assert.Error(t, err, "duplicate session id")

	id, err := store.RecordSession(ctx, domain.SessionRecord{UserID: "u2", Category: domain.CategoryDevOps, CompletedAt: base})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestSeedUpdatesExistingUsers(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.Seed(ctx, seed.Data{Users: []domain.User{{ID: "u1", Name: "Ada"}}}, nil))
	require.NoError(t, store.Seed(ctx, seed.Data{Users: []domain.User{{ID: "u1", Name: "Ada Lovelace", Email: "ada@example.com"}}}, nil))

	var row UserModel
	require.NoError(t, store.db.NewSelect().Model(&row).Where("u.id = ?", "u1").Scan(ctx))
	assert.Equal(t, "Ada Lovelace", row.Name)
	assert.Equal(t, "ada@example.com", row.Email)
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqlDB, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func TestRecordSessionBeginFailure(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("connection reset")
	mock.ExpectBegin().WillReturnError(boom)

	id, err := store.RecordSession(context.Background(), domain.SessionRecord{ID: "s1", UserID: "guest"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadQuestionsQueryFailure(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("relation does not exist")
	mock.ExpectQuery(`FROM "questions"`).WillReturnError(boom)

	_, err := store.LoadQuestions(context.Background(), domain.CategoryBackend)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardQueryFailure(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("timeout")
	mock.ExpectQuery(`FROM "quiz_sessions" AS "qs"`).WillReturnError(boom)

	_, err := store.Leaderboard(context.Background(), domain.CategoryFrontend, 5)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	assert.Error(t, err)
	_, err = Open(DriverSQLite, "")
	assert.Error(t, err)
	_, err = Open(DriverMySQL, "not a dsn")
	assert.Error(t, err)
}
