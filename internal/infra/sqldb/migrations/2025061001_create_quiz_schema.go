package migrations

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Table shapes as of this migration. Later schema changes get their own migration.

type userV1 struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk,type:varchar(64)"`
	Name      string    `bun:"name,type:varchar(255),notnull"`
	Email     string    `bun:"email,type:varchar(255)"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type questionV1 struct {
	bun.BaseModel `bun:"table:questions"`

	ID          string   `bun:"id,pk,type:varchar(64)"`
	Category    string   `bun:"category,type:varchar(32),notnull"`
	Difficulty  string   `bun:"difficulty,type:varchar(16),notnull"`
	Prompt      string   `bun:"prompt,type:text,notnull"`
	Code        string   `bun:"code,type:text"`
	Options     []string `bun:"options,type:json,notnull"`
	Correct     int      `bun:"correct_answer,notnull"`
	Explanation string   `bun:"explanation,type:text,notnull"`
	Tags        []string `bun:"tags,type:json"`
}

type sessionV1 struct {
	bun.BaseModel `bun:"table:quiz_sessions"`

	ID             string    `bun:"id,pk,type:varchar(64)"`
	UserID         string    `bun:"user_id,type:varchar(64),notnull"`
	Category       string    `bun:"category,type:varchar(32),notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	CorrectAnswers int       `bun:"correct_answers,notnull"`
	Score          int       `bun:"score,notnull"`
	TimeSpent      int       `bun:"time_spent,notnull"`
	CompletedAt    time.Time `bun:"completed_at,notnull"`
}

type answerV1 struct {
	bun.BaseModel `bun:"table:quiz_answers"`

	ID         string `bun:"id,pk,type:varchar(64)"`
	SessionID  string `bun:"session_id,type:varchar(64),notnull"`
	QuestionID string `bun:"question_id,type:varchar(64),notnull"`
	UserAnswer int    `bun:"user_answer,notnull"`
	IsCorrect  bool   `bun:"is_correct,notnull"`
}

func init() {
	models := []interface{}{
		(*userV1)(nil),
		(*questionV1)(nil),
		(*sessionV1)(nil),
		(*answerV1)(nil),
	}

	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range models {
				if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			for i := len(models) - 1; i >= 0; i-- {
				if _, err := db.NewDropTable().Model(models[i]).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
