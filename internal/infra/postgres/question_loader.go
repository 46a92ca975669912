package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"devquiz/internal/domain"
)

const selectQuestions = `
SELECT id, difficulty, prompt, code, options, correct_answer, explanation, tags
FROM questions
WHERE category = $1
ORDER BY id`

// QuestionLoader reads category pools straight from Postgres over pgx, for the
// read path the service hits on every cache miss.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, selectQuestions, string(category))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var (
			q                   domain.Question
			difficulty          string
			code                *string
			rawOptions, rawTags []byte
		)
		if err := rows.Scan(&q.ID, &difficulty, &q.Prompt, &code, &rawOptions, &q.Correct, &q.Explanation, &rawTags); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options of %s: %w", q.ID, err)
		}
		if len(rawTags) > 0 {
			if err := json.Unmarshal(rawTags, &q.Tags); err != nil {
				return nil, fmt.Errorf("unmarshal tags of %s: %w", q.ID, err)
			}
		}
		if code != nil {
			q.Code = *code
		}
		q.Category = category
		q.Difficulty = domain.Difficulty(difficulty)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return out, nil
}
