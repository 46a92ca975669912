package domain

import (
	"fmt"
	"time"
)

// GuestUserID owns sessions started without an explicit user.
const GuestUserID = "guest"

// Question models a multiple-choice question with exactly one correct option.
type Question struct {
	ID          string     `json:"id" yaml:"id"`
	Prompt      string     `json:"question" yaml:"question"`
	Code        string     `json:"code,omitempty" yaml:"code,omitempty"`
	Options     []string   `json:"options" yaml:"options"`
	Correct     int        `json:"correct" yaml:"correct"`
	Explanation string     `json:"explanation" yaml:"explanation"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Category    Category   `json:"category" yaml:"category"`
	Tags        []string   `json:"tags" yaml:"tags"`
}

// Validate checks the structural invariants of a question.
func (q Question) Validate() error {
	switch {
	case q.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	case q.Prompt == "":
		return fmt.Errorf("%w: %s: missing prompt", ErrInvalidQuestion, q.ID)
	case len(q.Options) < 2:
		return fmt.Errorf("%w: %s: needs at least 2 options", ErrInvalidQuestion, q.ID)
	case q.Correct < 0 || q.Correct >= len(q.Options):
		return fmt.Errorf("%w: %s: correct index %d out of range", ErrInvalidQuestion, q.ID, q.Correct)
	case !q.Difficulty.Valid():
		return fmt.Errorf("%w: %s: difficulty %q", ErrInvalidQuestion, q.ID, q.Difficulty)
	case !q.Category.Valid():
		return fmt.Errorf("%w: %s: category %q", ErrInvalidQuestion, q.ID, q.Category)
	}
	return nil
}

// HasTag reports whether the question carries tag.
func (q Question) HasTag(tag string) bool {
	for _, t := range q.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Public strips the answer key.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Code:       q.Code,
		Options:    q.Options,
		Difficulty: q.Difficulty,
		Category:   q.Category,
		Tags:       q.Tags,
	}
}

// PublicQuestion is the view of a question shown while it can still be answered.
type PublicQuestion struct {
	ID         string     `json:"id"`
	Prompt     string     `json:"question"`
	Code       string     `json:"code,omitempty"`
	Options    []string   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
	Category   Category   `json:"category"`
	Tags       []string   `json:"tags"`
}

// QuizResult is the immutable outcome of a session.
type QuizResult struct {
	Score            int        `json:"score"`
	TotalQuestions   int        `json:"totalQuestions"`
	CorrectAnswers   []Question `json:"correctAnswers"`
	IncorrectAnswers []Question `json:"incorrectAnswers"`
	TimeSpent        int        `json:"timeSpent"`
}

// Feedback is the per-question "show answer" view.
type Feedback struct {
	QuestionID  string `json:"questionId"`
	Correct     int    `json:"correct"`
	Explanation string `json:"explanation"`
	Selected    *int   `json:"selected,omitempty"`
	IsCorrect   bool   `json:"isCorrect"`
}

// AnswerRecord is one persisted answer of a completed session.
type AnswerRecord struct {
	QuestionID string `json:"questionId"`
	UserAnswer int    `json:"userAnswer"`
	IsCorrect  bool   `json:"isCorrect"`
}

// SessionRecord is what the persistence layer stores for a completed session.
type SessionRecord struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Category       Category       `json:"category"`
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	Score          int            `json:"score"`
	TimeSpent      int            `json:"timeSpent"`
	CompletedAt    time.Time      `json:"completedAt"`
	Answers        []AnswerRecord `json:"answers,omitempty"`
}

// User is a quiz taker. Only the guest placeholder exists without seeding.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// LeaderboardEntry is one ranked persisted session.
type LeaderboardEntry struct {
	SessionID      string    `json:"sessionId"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	Category       Category  `json:"category"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	TimeSpent      int       `json:"timeSpent"`
	CompletedAt    time.Time `json:"completedAt"`
}

// RanksBefore orders by score descending, then time spent ascending, then completion time.
func (e LeaderboardEntry) RanksBefore(other LeaderboardEntry) bool {
	if e.Score != other.Score {
		return e.Score > other.Score
	}
	if e.TimeSpent != other.TimeSpent {
		return e.TimeSpent < other.TimeSpent
	}
	return e.CompletedAt.Before(other.CompletedAt)
}

// CategoryScore aggregates persisted sessions of one category.
type CategoryScore struct {
	TotalQuizzes int `json:"totalQuizzes"`
	AverageScore int `json:"averageScore"`
	BestScore    int `json:"bestScore"`
}

// QuizStats aggregates persisted sessions globally or for one user.
type QuizStats struct {
	TotalQuizzes   int                        `json:"totalQuizzes"`
	AverageScore   int                        `json:"averageScore"`
	BestScore      int                        `json:"bestScore"`
	TotalTimeSpent int                        `json:"totalTimeSpent"`
	CategoryStats  map[Category]CategoryScore `json:"categoryStats"`
}

// CategoryCount counts the questions of one category.
type CategoryCount struct {
	Total        int                `json:"total"`
	ByDifficulty map[Difficulty]int `json:"byDifficulty"`
	ByTag        map[string]int     `json:"byTag"`
}

// CatalogStats summarizes the question pool.
type CatalogStats struct {
	Total      int                        `json:"total"`
	ByCategory map[Category]CategoryCount `json:"byCategory"`
	ByTag      map[string]int             `json:"byTag"`
}
