package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"devquiz/internal/domain"
)

// QuestionRepository provides the question pool of a category. An empty category
// yields an empty slice, not an error.
type QuestionRepository interface {
	QuestionsByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error)
}

// EngineState is the lifecycle phase of an Engine.
type EngineState int

const (
	StateUninitialized EngineState = iota
	StateActive
	StateCompleted
)

func (s EngineState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	default:
		return "uninitialized"
	}
}

// Engine runs a single quiz attempt. It is not safe for concurrent use.
type Engine struct {
	now func() time.Time
	rnd *rand.Rand

	state       EngineState
	category    domain.Category
	questions   []domain.Question
	index       int
	answers     map[string]int
	startedAt   time.Time
	completedAt time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithRand sets the shuffle source.
func WithRand(rnd *rand.Rand) EngineOption {
	return func(e *Engine) { e.rnd = rnd }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.rnd == nil {
		e.rnd = rand.New(rand.NewSource(e.now().UnixNano()))
	}
	return e
}

// Initialize starts a fresh attempt with min(count, pool size) shuffled questions of
// category. With an empty pool it returns domain.ErrEmptyCategory and leaves the
// engine uninitialized.
func (e *Engine) Initialize(ctx context.Context, store QuestionRepository, category domain.Category, count int) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	if count < 1 {
		return domain.ErrInvalidQuestionCount
	}

	pool, err := store.QuestionsByCategory(ctx, category)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	selected := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if q.Category == category {
			selected = append(selected, q)
		}
	}
	if len(selected) == 0 {
		e.reset()
		return domain.ErrEmptyCategory
	}

	e.rnd.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	if count < len(selected) {
		selected = selected[:count]
	}

	e.reset()
	e.state = StateActive
	e.category = category
	e.questions = selected
	e.startedAt = e.now()
	return nil
}

func (e *Engine) reset() {
	e.state = StateUninitialized
	e.category = ""
	e.questions = nil
	e.index = 0
	e.answers = make(map[string]int)
	e.startedAt = time.Time{}
	e.completedAt = time.Time{}
}

// RecordAnswer stores option as the answer to questionID, replacing any earlier one.
// Rejected calls leave the engine untouched.
func (e *Engine) RecordAnswer(questionID string, option int) error {
	switch e.state {
	case StateUninitialized:
		return domain.ErrSessionNotStarted
	case StateCompleted:
		return domain.ErrSessionCompleted
	}

	q, ok := e.question(questionID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, questionID)
	}
	if option < 0 || option >= len(q.Options) {
		return fmt.Errorf("%w: %d not in [0,%d)", domain.ErrInvalidOption, option, len(q.Options))
	}
	e.answers[questionID] = option
	return nil
}

// Advance moves to the next question, completing the session at the last one.
// It reports whether this call completed the session.
func (e *Engine) Advance() bool {
	if e.state != StateActive {
		return false
	}
	if e.index < len(e.questions)-1 {
		e.index++
		return false
	}
	e.complete()
	return true
}

// Retreat moves to the previous question, stopping at the first.
func (e *Engine) Retreat() {
	if e.state != StateActive || e.index == 0 {
		return
	}
	e.index--
}

// Complete ends the session from any position, as when time runs out.
// It reports whether this call completed the session.
func (e *Engine) Complete() bool {
	if e.state != StateActive {
		return false
	}
	e.complete()
	return true
}

func (e *Engine) complete() {
	e.state = StateCompleted
	e.completedAt = e.now()
}

// ComputeResult scores the answers recorded so far. Before completion this is a
// preview; unanswered questions always count as incorrect.
func (e *Engine) ComputeResult() (domain.QuizResult, error) {
	if e.state == StateUninitialized {
		return domain.QuizResult{}, domain.ErrSessionNotStarted
	}

	correct := make([]domain.Question, 0, len(e.questions))
	incorrect := make([]domain.Question, 0, len(e.questions))
	for _, q := range e.questions {
		if answer, ok := e.answers[q.ID]; ok && answer == q.Correct {
			correct = append(correct, q)
		} else {
			incorrect = append(incorrect, q)
		}
	}

	return domain.QuizResult{
		Score:            Score(len(correct), len(e.questions)),
		TotalQuestions:   len(e.questions),
		CorrectAnswers:   correct,
		IncorrectAnswers: incorrect,
		TimeSpent:        int(e.Elapsed() / time.Second),
	}, nil
}

// Reveal returns the answer key of one question together with the recorded answer.
func (e *Engine) Reveal(questionID string) (domain.Feedback, error) {
	if e.state == StateUninitialized {
		return domain.Feedback{}, domain.ErrSessionNotStarted
	}
	q, ok := e.question(questionID)
	if !ok {
		return domain.Feedback{}, fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, questionID)
	}

	fb := domain.Feedback{
		QuestionID:  q.ID,
		Correct:     q.Correct,
		Explanation: q.Explanation,
	}
	if answer, ok := e.answers[q.ID]; ok {
		fb.Selected = &answer
		fb.IsCorrect = answer == q.Correct
	}
	return fb, nil
}

// Score is round(100 * correct / total), rounding halves up.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}

func (e *Engine) question(id string) (domain.Question, bool) {
	for _, q := range e.questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

func (e *Engine) State() EngineState        { return e.state }
func (e *Engine) Category() domain.Category { return e.category }
func (e *Engine) CurrentIndex() int         { return e.index }
func (e *Engine) Total() int                { return len(e.questions) }
func (e *Engine) StartedAt() time.Time      { return e.startedAt }
func (e *Engine) Completed() bool           { return e.state == StateCompleted }

// Current returns the question at the current index.
func (e *Engine) Current() (domain.Question, bool) {
	if e.state == StateUninitialized || len(e.questions) == 0 {
		return domain.Question{}, false
	}
	return e.questions[e.index], true
}

// Questions returns a copy of the session's question sequence.
func (e *Engine) Questions() []domain.Question {
	out := make([]domain.Question, len(e.questions))
	copy(out, e.questions)
	return out
}

// Selected returns the recorded answer for questionID.
func (e *Engine) Selected(questionID string) (int, bool) {
	answer, ok := e.answers[questionID]
	return answer, ok
}

// Answered reports, in sequence order, which questions have an answer.
func (e *Engine) Answered() []bool {
	out := make([]bool, len(e.questions))
	for i, q := range e.questions {
		_, out[i] = e.answers[q.ID]
	}
	return out
}

// Elapsed is the wall-clock time since start, frozen once the session completes.
func (e *Engine) Elapsed() time.Duration {
	switch e.state {
	case StateActive:
		return e.now().Sub(e.startedAt)
	case StateCompleted:
		return e.completedAt.Sub(e.startedAt)
	}
	return 0
}

// AnswerRecords lists the recorded answers in sequence order for persistence.
func (e *Engine) AnswerRecords() []domain.AnswerRecord {
	records := make([]domain.AnswerRecord, 0, len(e.answers))
	for _, q := range e.questions {
		answer, ok := e.answers[q.ID]
		if !ok {
			continue
		}
		records = append(records, domain.AnswerRecord{
			QuestionID: q.ID,
			UserAnswer: answer,
			IsCorrect:  answer == q.Correct,
		})
	}
	return records
}
