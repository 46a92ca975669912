package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no active quiz session has the given ID.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotStarted is returned for engine operations before a successful initialize.
	ErrSessionNotStarted = errors.New("quiz session not started")
	// ErrSessionCompleted is returned when mutating a session that already ended.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrEmptyCategory reports that a category has no questions. It is an expected
	// empty state rather than a failure.
	ErrEmptyCategory = errors.New("no questions available for category")
	// ErrUnknownCategory indicates the category is not part of the fixed enumeration.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrRecordNotFound is returned when no persisted session has the given ID.
	ErrRecordNotFound = errors.New("quiz record not found")
	// ErrInvalidQuestionCount indicates a requested question count below one.
	ErrInvalidQuestionCount = errors.New("question count must be at least 1")
	// ErrUnknownQuestion indicates an answer for a question outside the session.
	ErrUnknownQuestion = errors.New("question not part of this session")
	// ErrInvalidOption indicates an option index outside the question's options.
	ErrInvalidOption = errors.New("option index out of range")
	// ErrQuestionNotFound indicates a question ID missing from the store.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidQuestion indicates seed content that breaks the question shape.
	ErrInvalidQuestion = errors.New("invalid question")
)
