package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/qudurat/qudurat/internal/store"
)

// Observer is notified of session lifecycle changes. Calls happen while
// the session is locked and must not block.
type Observer interface {
	SessionStarted(ctx context.Context, s *Session)
	AnswerSubmitted(ctx context.Context, s *Session, o Outcome)
	SessionFinalized(ctx context.Context, s *Session, r Report)
	SessionCancelled(ctx context.Context, s *Session)
}

// StartRequest describes a new session.
type StartRequest struct {
	UserID       int64
	ChatID       int64
	Kind         Kind
	QuestionType string
	Scope        Scope
	Mode         SizingMode
	// Input is the raw count or minutes typed by the user.
	Input string
}

// Step tells the caller what to show after an engine call.
type Step struct {
	// Outcome is set when an answer was accepted.
	Outcome *Outcome
	// Presentation is the next question, nil once the session ended.
	Presentation *Presentation
	// Report is set when this call finalized the session.
	Report *Report
}

// Engine drives quiz sessions through their lifecycle. Calls for the same
// session are serialized; different sessions proceed in parallel.
type Engine struct {
	selector  *Selector
	sessions  SessionStore
	evaluator *Evaluator
	finalizer *Finalizer
	registry  Registry

	observers []Observer
	logger    *slog.Logger
	now       func() time.Time
	shuffle   Shuffler

	locks sync.Map // map[int64]*sync.Mutex
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithShuffler overrides how answer options are permuted.
func WithShuffler(s Shuffler) EngineOption {
	return func(e *Engine) { e.shuffle = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithObserver adds a lifecycle observer.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// NewEngine wires an Engine over its storage dependencies.
func NewEngine(questions QuestionSource, sessions SessionStore, answers AnswerRecorder, registry Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		selector: NewSelector(questions),
		sessions: sessions,
		registry: registry,
		logger:   slog.Default(),
		now:      time.Now,
		shuffle:  rand.Shuffle,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.evaluator = NewEvaluator(answers, e.logger)
	e.finalizer = NewFinalizer(sessions)
	return e
}

// Start validates the sizing input, draws questions, persists the session
// row and registers the session as PRESENTING. Questions are drawn before
// the row is written, so an empty draw leaves no trace.
func (e *Engine) Start(ctx context.Context, req StartRequest) (*Session, error) {
	plan, err := ParsePlan(req.Mode, req.Input)
	if err != nil {
		return nil, err
	}

	s := &Session{
		UserID:       req.UserID,
		ChatID:       req.ChatID,
		Kind:         req.Kind,
		QuestionType: req.QuestionType,
		Scope:        req.Scope,
		Requested:    plan.Count,
		State:        StateInitialized,
	}

	qs, err := e.selector.Select(ctx, plan.Count, req.QuestionType, req.Scope)
	if err != nil {
		return nil, err
	}

	now := e.now()
	s.Questions = qs
	s.StartedAt = now
	s.Deadline = now.Add(plan.Duration)

	id, err := e.sessions.Create(ctx, store.SessionRecord{
		UserID:       s.UserID,
		Kind:         string(s.Kind),
		QuestionType: s.QuestionType,
		CategoryKind: s.Scope.Kind,
		CategoryID:   s.Scope.ID,
		NumQuestions: plan.Count,
		CreatedAt:    s.StartedAt,
		Deadline:     s.Deadline,
	})
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	s.ID = id
	s.State = StatePresenting

	if err := e.registry.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("register session %d: %w", id, err)
	}

	e.logger.Info("quiz session started",
		"session_id", s.ID,
		"user_id", s.UserID,
		"kind", s.Kind,
		"questions", len(qs),
		"requested", plan.Count,
	)
	for _, o := range e.observers {
		o.SessionStarted(ctx, s)
	}
	return s, nil
}

// Get returns a copy of the live session.
func (e *Engine) Get(ctx context.Context, id int64) (*Session, error) {
	return e.registry.Get(ctx, id)
}

// Present returns the question under the cursor. When the questions are
// exhausted or the deadline passed, the session is finalized instead and
// the step carries the report.
func (e *Engine) Present(ctx context.Context, id int64) (Step, error) {
	var step Step
	err := e.update(ctx, id, func(s *Session) error {
		if s.State != StatePresenting {
			return ErrSessionClosed
		}
		var err error
		step, err = e.next(ctx, s)
		return err
	})
	return step, err
}

// Submit evaluates an answer for questionID, advances the cursor and
// returns what to show next. An answer arriving after the deadline is not
// recorded; the session is finalized as timed out.
func (e *Engine) Submit(ctx context.Context, id, questionID int64, label string) (Step, error) {
	var step Step
	err := e.update(ctx, id, func(s *Session) error {
		now := e.now()
		out, err := e.evaluator.Submit(ctx, s, questionID, label, now)
		if errors.Is(err, ErrTimeExpired) {
			r, ferr := e.finalize(ctx, s, now, true)
			if ferr != nil {
				return ferr
			}
			step.Report = &r
			return nil
		}
		if err != nil {
			return err
		}
		for _, o := range e.observers {
			o.AnswerSubmitted(ctx, s, out)
		}

		s.Advance()
		step, err = e.next(ctx, s)
		step.Outcome = &out
		return err
	})
	return step, err
}

// SetMessageID records the message that questions are edited into.
func (e *Engine) SetMessageID(ctx context.Context, id int64, messageID int) error {
	return e.update(ctx, id, func(s *Session) error {
		s.MessageID = messageID
		return nil
	})
}

// Cancel abandons a session that is still presenting questions.
func (e *Engine) Cancel(ctx context.Context, id int64) error {
	return e.update(ctx, id, func(s *Session) error {
		if s.State != StatePresenting && s.State != StateInitialized {
			return fmt.Errorf("cancel from %s: %w", s.State, ErrInvalidTransition)
		}
		s.State = StateCancelled
		e.logger.Info("quiz session cancelled", "session_id", s.ID, "user_id", s.UserID, "answered", s.Answered)
		for _, o := range e.observers {
			o.SessionCancelled(ctx, s)
		}
		return nil
	})
}

// ChooseArtifact records that the report format was picked.
func (e *Engine) ChooseArtifact(ctx context.Context, id int64) error {
	return e.transition(ctx, id, StateFinalizing, StateReported)
}

// ChooseAssistance moves a reported session into the AI chat or closes it.
func (e *Engine) ChooseAssistance(ctx context.Context, id int64, wantChat bool) error {
	to := StateClosed
	if wantChat {
		to = StateChatting
	}
	return e.transition(ctx, id, StateReported, to)
}

// EndChat closes a session whose AI chat is over.
func (e *Engine) EndChat(ctx context.Context, id int64) error {
	return e.transition(ctx, id, StateChatting, StateClosed)
}

func (e *Engine) transition(ctx context.Context, id int64, from, to State) error {
	return e.update(ctx, id, func(s *Session) error {
		if s.State != from {
			return fmt.Errorf("%s -> %s from %s: %w", from, to, s.State, ErrInvalidTransition)
		}
		s.State = to
		return nil
	})
}

// next reads the cursor and finalizes when nothing is left to present.
func (e *Engine) next(ctx context.Context, s *Session) (Step, error) {
	now := e.now()
	p, status := s.Current(now, e.shuffle)
	switch status {
	case StatusQuestion:
		return Step{Presentation: &p}, nil
	default:
		r, err := e.finalize(ctx, s, now, status == StatusExpired)
		if err != nil {
			return Step{}, err
		}
		return Step{Report: &r}, nil
	}
}

func (e *Engine) finalize(ctx context.Context, s *Session, now time.Time, timedOut bool) (Report, error) {
	r, err := e.finalizer.Finalize(ctx, s, now, timedOut)
	if err != nil {
		return Report{}, err
	}
	e.logger.Info("quiz session finalized",
		"session_id", s.ID,
		"user_id", s.UserID,
		"score", r.Score,
		"total", r.Total,
		"points", r.Points,
		"timed_out", r.TimedOut,
	)
	for _, o := range e.observers {
		o.SessionFinalized(ctx, s, r)
	}
	return r, nil
}

// update loads the session under its lock, applies fn and stores the
// result. Terminal sessions are dropped from the registry.
func (e *Engine) update(ctx context.Context, id int64, fn func(s *Session) error) error {
	unlock := e.lock(id)
	defer unlock()

	s, err := e.registry.Get(ctx, id)
	if err != nil {
		return err
	}
	before := *s
	fnErr := fn(s)
	if fnErr != nil && !progressed(before, s) {
		return fnErr
	}

	if s.State.Terminal() {
		if err := e.registry.Delete(ctx, id); err != nil {
			return fmt.Errorf("drop session %d: %w", id, err)
		}
		e.locks.Delete(id)
		return fnErr
	}
	if err := e.registry.Put(ctx, s); err != nil {
		e.logger.Error("failed to store session state",
			"session_id", id,
			"state", s.State,
			"previous_state", before.State,
			"error", err,
		)
		return fmt.Errorf("store session %d: %w", id, err)
	}
	return fnErr
}

// progressed reports whether s moved past before. A failed step that
// already advanced the cursor is still stored so answers are not replayed.
func progressed(before Session, s *Session) bool {
	return before.Index != s.Index ||
		before.Answered != s.Answered ||
		before.State != s.State ||
		before.MessageID != s.MessageID
}

func (e *Engine) lock(id int64) func() {
	v, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
