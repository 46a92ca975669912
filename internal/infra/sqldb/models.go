package sqldb

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"devquiz/internal/domain"
)

type UserModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk,type:varchar(64)"`
	Name      string    `bun:"name,type:varchar(255),notnull"`
	Email     string    `bun:"email,type:varchar(255)"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type QuestionModel struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

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

type SessionModel struct {
	bun.BaseModel `bun:"table:quiz_sessions,alias:qs"`

	ID             string    `bun:"id,pk,type:varchar(64)"`
	UserID         string    `bun:"user_id,type:varchar(64),notnull"`
	Category       string    `bun:"category,type:varchar(32),notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	CorrectAnswers int       `bun:"correct_answers,notnull"`
	Score          int       `bun:"score,notnull"`
	TimeSpent      int       `bun:"time_spent,notnull"`
	CompletedAt    time.Time `bun:"completed_at,notnull"`

	User *UserModel `bun:"rel:belongs-to,join:user_id=id"`
}

type AnswerModel struct {
	bun.BaseModel `bun:"table:quiz_answers,alias:qa"`

	ID         string `bun:"id,pk,type:varchar(64)"`
	SessionID  string `bun:"session_id,type:varchar(64),notnull"`
	QuestionID string `bun:"question_id,type:varchar(64),notnull"`
	UserAnswer int    `bun:"user_answer,notnull"`
	IsCorrect  bool   `bun:"is_correct,notnull"`
}

// Models lists every table in creation order.
func Models() []interface{} {
	return []interface{}{
		(*UserModel)(nil),
		(*QuestionModel)(nil),
		(*SessionModel)(nil),
		(*AnswerModel)(nil),
	}
}

// CreateSchema creates every table that does not exist yet.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DropSchema drops every table, children first.
func DropSchema(ctx context.Context, db bun.IDB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(models[i]).IfExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func questionFromModel(m QuestionModel) domain.Question {
	return domain.Question{
		ID:          m.ID,
		Prompt:      m.Prompt,
		Code:        m.Code,
		Options:     m.Options,
		Correct:     m.Correct,
		Explanation: m.Explanation,
		Difficulty:  domain.Difficulty(m.Difficulty),
		Category:    domain.Category(m.Category),
		Tags:        m.Tags,
	}
}

func questionToModel(q domain.Question) QuestionModel {
	return QuestionModel{
		ID:          q.ID,
		Category:    string(q.Category),
		Difficulty:  string(q.Difficulty),
		Prompt:      q.Prompt,
		Code:        q.Code,
		Options:     q.Options,
		Correct:     q.Correct,
		Explanation: q.Explanation,
		Tags:        q.Tags,
	}
}

func sessionToRecord(m SessionModel) domain.SessionRecord {
	return domain.SessionRecord{
		ID:             m.ID,
		UserID:         m.UserID,
		Category:       domain.Category(m.Category),
		TotalQuestions: m.TotalQuestions,
		CorrectAnswers: m.CorrectAnswers,
		Score:          m.Score,
		TimeSpent:      m.TimeSpent,
		CompletedAt:    m.CompletedAt.UTC(),
	}
}
