package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"devquiz/internal/domain"
	"devquiz/internal/infra/seed"
)

// Store serves questions and persists completed sessions.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) LoadQuestions(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	var rows []QuestionModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("q.category = ?", string(category)).
		OrderExpr("q.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	out := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		out = append(out, questionFromModel(row))
	}
	return out, nil
}

// Seed replaces all questions, sessions and answers with data and upserts its users.
// demo sessions are recorded after the reset.
func (s *Store) Seed(ctx context.Context, data seed.Data, demo []domain.SessionRecord) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{(*AnswerModel)(nil), (*SessionModel)(nil), (*QuestionModel)(nil)} {
			if _, err := tx.NewDelete().Model(model).Where("1 = 1").Exec(ctx); err != nil {
				return fmt.Errorf("clear tables: %w", err)
			}
		}

		if len(data.Questions) > 0 {
			rows := make([]QuestionModel, 0, len(data.Questions))
			for _, q := range data.Questions {
				rows = append(rows, questionToModel(q))
			}
			if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
				return fmt.Errorf("insert questions: %w", err)
			}
		}

		for _, u := range data.Users {
			if err := s.upsertUser(ctx, tx, u); err != nil {
				return err
			}
		}
		for _, rec := range demo {
			if err := s.insertSession(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) RecordSession(ctx context.Context, record domain.SessionRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return s.insertSession(ctx, tx, record)
	})
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

func (s *Store) Leaderboard(ctx context.Context, category domain.Category, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []SessionModel
	q := s.db.NewSelect().Model(&rows).Relation("User")
	if category != "" {
		q = q.Where("qs.category = ?", string(category))
	}
	q = q.OrderExpr("qs.score DESC").
		OrderExpr("qs.time_spent ASC").
		OrderExpr("qs.completed_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entry := domain.LeaderboardEntry{
			SessionID:      row.ID,
			UserID:         row.UserID,
			Category:       domain.Category(row.Category),
			Score:          row.Score,
			TotalQuestions: row.TotalQuestions,
			CorrectAnswers: row.CorrectAnswers,
			TimeSpent:      row.TimeSpent,
			CompletedAt:    row.CompletedAt.UTC(),
		}
		if row.User != nil {
			entry.UserName = row.User.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Store) SessionSummaries(ctx context.Context, userID string) ([]domain.SessionRecord, error) {
	var rows []SessionModel
	q := s.db.NewSelect().Model(&rows)
	if userID != "" {
		q = q.Where("qs.user_id = ?", userID)
	}
	if err := q.OrderExpr("qs.completed_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("session summaries: %w", err)
	}
	out := make([]domain.SessionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, sessionToRecord(row))
	}
	return out, nil
}

func (s *Store) SessionDetail(ctx context.Context, recordID string) (domain.SessionRecord, error) {
	var row SessionModel
	err := s.db.NewSelect().Model(&row).Where("qs.id = ?", recordID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionRecord{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("session detail: %w", err)
	}

	record := sessionToRecord(row)
	if record.Answers, err = s.Answers(ctx, recordID); err != nil {
		return domain.SessionRecord{}, err
	}
	return record, nil
}

// Answers returns the recorded answers of one persisted session.
func (s *Store) Answers(ctx context.Context, sessionID string) ([]domain.AnswerRecord, error) {
	var rows []AnswerModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("qa.session_id = ?", sessionID).
		OrderExpr("qa.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	out := make([]domain.AnswerRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.AnswerRecord{
			QuestionID: row.QuestionID,
			UserAnswer: row.UserAnswer,
			IsCorrect:  row.IsCorrect,
		})
	}
	return out, nil
}

func (s *Store) insertSession(ctx context.Context, db bun.IDB, record domain.SessionRecord) error {
	if err := s.ensureUserExists(ctx, db, record.UserID); err != nil {
		return err
	}

	session := SessionModel{
		ID:             record.ID,
		UserID:         record.UserID,
		Category:       string(record.Category),
		TotalQuestions: record.TotalQuestions,
		CorrectAnswers: record.CorrectAnswers,
		Score:          record.Score,
		TimeSpent:      record.TimeSpent,
		CompletedAt:    record.CompletedAt.UTC(),
	}
	if _, err := db.NewInsert().Model(&session).Exec(ctx); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if len(record.Answers) == 0 {
		return nil
	}
	answers := make([]AnswerModel, 0, len(record.Answers))
	for i, a := range record.Answers {
		answers = append(answers, AnswerModel{
			// ordered ids keep answers in question order
			ID:         fmt.Sprintf("%s-%03d", record.ID, i),
			SessionID:  record.ID,
			QuestionID: a.QuestionID,
			UserAnswer: a.UserAnswer,
			IsCorrect:  a.IsCorrect,
		})
	}
	if _, err := db.NewInsert().Model(&answers).Exec(ctx); err != nil {
		return fmt.Errorf("insert answers: %w", err)
	}
	return nil
}

func (s *Store) ensureUserExists(ctx context.Context, db bun.IDB, userID string) error {
	exists, err := db.NewSelect().Model((*UserModel)(nil)).Where("u.id = ?", userID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if exists {
		return nil
	}
	name := userID
	if userID == domain.GuestUserID {
		name = "Guest"
	}
	return s.insertUser(ctx, db, domain.User{ID: userID, Name: name})
}

func (s *Store) upsertUser(ctx context.Context, db bun.IDB, user domain.User) error {
	exists, err := db.NewSelect().Model((*UserModel)(nil)).Where("u.id = ?", user.ID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !exists {
		return s.insertUser(ctx, db, user)
	}
	_, err = db.NewUpdate().
		Model(&UserModel{ID: user.ID, Name: user.Name, Email: user.Email}).
		Column("name", "email").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *Store) insertUser(ctx context.Context, db bun.IDB, user domain.User) error {
	row := UserModel{ID: user.ID, Name: user.Name, Email: user.Email, CreatedAt: s.now().UTC()}
	if _, err := db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
