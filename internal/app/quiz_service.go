package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"devquiz/internal/domain"
)

// SessionRepository abstracts where active sessions live (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
	DeleteIdle(cutoff time.Time) int
}

// ResultRepository persists completed sessions and serves read models over them.
type ResultRepository interface {
	RecordSession(ctx context.Context, record domain.SessionRecord) (string, error)
	Leaderboard(ctx context.Context, category domain.Category, limit int) ([]domain.LeaderboardEntry, error)
	// SessionSummaries returns persisted sessions newest first, without answers.
	// An empty userID selects every user.
	SessionSummaries(ctx context.Context, userID string) ([]domain.SessionRecord, error)
	// SessionDetail returns one persisted session with its answers, or
	// domain.ErrRecordNotFound.
	SessionDetail(ctx context.Context, recordID string) (domain.SessionRecord, error)
}

const (
	DefaultQuestionCount    = 10
	DefaultLeaderboardLimit = 10
)

// QuizService contains the quiz use cases on top of the engine.
type QuizService struct {
	questions QuestionRepository
	sessions  SessionRepository
	results   ResultRepository
	log       logrus.FieldLogger

	now          func() time.Time
	newID        func() string
	engineOpts   []EngineOption
	defaultCount int
	maxCount     int
}

// ServiceOption customizes a QuizService.
type ServiceOption func(*QuizService)

// WithServiceClock replaces time.Now for the service and every engine it creates.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *QuizService) {
		s.now = now
		s.engineOpts = append(s.engineOpts, WithClock(now))
	}
}

// WithEngineOptions appends options applied to every new engine.
func WithEngineOptions(opts ...EngineOption) ServiceOption {
	return func(s *QuizService) { s.engineOpts = append(s.engineOpts, opts...) }
}

// WithDefaultQuestionCount sets the count used when a start request omits it.
func WithDefaultQuestionCount(n int) ServiceOption {
	return func(s *QuizService) {
		if n > 0 {
			s.defaultCount = n
		}
	}
}

// WithMaxQuestionCount caps the count a start request may ask for. Zero disables the cap.
func WithMaxQuestionCount(n int) ServiceOption {
	return func(s *QuizService) { s.maxCount = n }
}

// WithIDGenerator replaces uuid-based session IDs.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *QuizService) { s.newID = newID }
}

func NewQuizService(questions QuestionRepository, sessions SessionRepository, results ResultRepository, log logrus.FieldLogger, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		questions:    questions,
		sessions:     sessions,
		results:      results,
		log:          log,
		now:          time.Now,
		newID:        uuid.NewString,
		defaultCount: DefaultQuestionCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRequest describes a new quiz attempt.
type StartRequest struct {
	Category domain.Category `json:"category"`
	Count    int             `json:"count"`
	UserID   string          `json:"userId"`
}

// Start initializes a new session. An empty category yields domain.ErrEmptyCategory
// and no session.
func (s *QuizService) Start(ctx context.Context, req StartRequest) (SessionView, error) {
	count := req.Count
	if count == 0 {
		count = s.defaultCount
	}
	if s.maxCount > 0 && count > s.maxCount {
		return SessionView{}, fmt.Errorf("%w: %d exceeds %d", domain.ErrInvalidQuestionCount, count, s.maxCount)
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = domain.GuestUserID
	}

	engine := NewEngine(s.engineOpts...)
	if err := engine.Initialize(ctx, s.questions, req.Category, count); err != nil {
		if errors.Is(err, domain.ErrEmptyCategory) {
			s.log.WithField("category", req.Category).Info("no questions available")
		}
		return SessionView{}, err
	}

	session := newSession(s.newID(), userID, engine, s.now())
	s.sessions.Save(session)
	s.log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"category":   req.Category,
		"questions":  engine.Total(),
	}).Info("quiz session started")

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.viewLocked(), nil
}

// View returns the current state of a session.
func (s *QuizService) View(_ context.Context, sessionID string) (SessionView, error) {
	var view SessionView
	err := s.withSession(sessionID, false, func(session *Session) error {
		view = session.viewLocked()
		return nil
	})
	return view, err
}

// Answer records an answer. Rejections are logged and leave the session unchanged;
// the returned view is valid in both cases.
func (s *QuizService) Answer(_ context.Context, sessionID, questionID string, option int) (SessionView, error) {
	var view SessionView
	err := s.withSession(sessionID, true, func(session *Session) error {
		err := session.engine.RecordAnswer(questionID, option)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"session_id":  sessionID,
				"question_id": questionID,
				"option":      option,
			}).WithError(err).Warn("answer rejected")
		}
		view = session.viewLocked()
		return err
	})
	return view, err
}

// Next advances the session, completing and persisting it after the last question.
func (s *QuizService) Next(ctx context.Context, sessionID string) (SessionView, error) {
	var view SessionView
	err := s.withSession(sessionID, true, func(session *Session) error {
		if session.engine.Advance() {
			s.persistLocked(ctx, session)
		}
		view = session.viewLocked()
		return nil
	})
	return view, err
}

// Previous moves back one question.
func (s *QuizService) Previous(_ context.Context, sessionID string) (SessionView, error) {
	var view SessionView
	err := s.withSession(sessionID, true, func(session *Session) error {
		session.engine.Retreat()
		view = session.viewLocked()
		return nil
	})
	return view, err
}

// Complete ends the session regardless of position and persists it.
func (s *QuizService) Complete(ctx context.Context, sessionID string) (SessionView, error) {
	var view SessionView
	err := s.withSession(sessionID, true, func(session *Session) error {
		if session.engine.Complete() {
			s.persistLocked(ctx, session)
		}
		view = session.viewLocked()
		return nil
	})
	return view, err
}

// Feedback reveals the answer key of one question in the session.
func (s *QuizService) Feedback(_ context.Context, sessionID, questionID string) (domain.Feedback, error) {
	var fb domain.Feedback
	err := s.withSession(sessionID, true, func(session *Session) error {
		var err error
		fb, err = session.engine.Reveal(questionID)
		return err
	})
	return fb, err
}

// Result scores the session; for an active session the result is a preview.
func (s *QuizService) Result(_ context.Context, sessionID string) (ResultView, error) {
	var view ResultView
	err := s.withSession(sessionID, false, func(session *Session) error {
		result, err := session.engine.ComputeResult()
		if err != nil {
			return err
		}
		view = ResultView{
			QuizResult: result,
			SessionID:  session.ID,
			Final:      session.engine.Completed(),
			RecordID:   session.recordID,
		}
		return nil
	})
	return view, err
}

// Abandon discards an active session without persisting it.
func (s *QuizService) Abandon(_ context.Context, sessionID string) error {
	if _, ok := s.sessions.Get(sessionID); !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions.Delete(sessionID)
	s.log.WithField("session_id", sessionID).Info("quiz session abandoned")
	return nil
}

// SweepIdle drops sessions untouched for longer than maxIdle.
func (s *QuizService) SweepIdle(maxIdle time.Duration) int {
	removed := s.sessions.DeleteIdle(s.now().Add(-maxIdle))
	if removed > 0 {
		s.log.WithField("removed", removed).Debug("idle sessions swept")
	}
	return removed
}

func (s *QuizService) withSession(sessionID string, touch bool, fn func(*Session) error) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if touch {
		session.lastSeen = s.now()
	}
	return fn(session)
}

// persistLocked hands a completed session to the result store once. A failure is
// logged and does not affect the computed result.
func (s *QuizService) persistLocked(ctx context.Context, session *Session) {
	if s.results == nil || session.recordID != "" {
		return
	}
	result, err := session.engine.ComputeResult()
	if err != nil {
		return
	}
	record := domain.SessionRecord{
		ID:             s.newID(),
		UserID:         session.UserID,
		Category:       session.engine.Category(),
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: len(result.CorrectAnswers),
		Score:          result.Score,
		TimeSpent:      result.TimeSpent,
		CompletedAt:    s.now().UTC(),
		Answers:        session.engine.AnswerRecords(),
	}

	fields := logrus.Fields{"session_id": session.ID, "score": record.Score}
	id, err := s.results.RecordSession(ctx, record)
	if err != nil {
		s.log.WithFields(fields).WithError(err).Warn("persist quiz session failed")
		return
	}
	session.recordID = id
	s.log.WithFields(fields).WithField("record_id", id).Info("quiz session persisted")
}
