package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qudurat/qudurat/internal/store"
)

// SessionStore persists session rows.
type SessionStore interface {
	Create(ctx context.Context, rec store.SessionRecord) (int64, error)
	Finalize(ctx context.Context, res store.SessionResult) error
}

// Report summarizes a finished session.
type Report struct {
	SessionID int64 `json:"session_id"`
	UserID    int64 `json:"user_id"`
	Kind      Kind  `json:"kind"`

	// Score is the number of correct answers.
	Score int `json:"score"`

	// Total is the number of questions presented and answered, which is
	// less than the requested count when time ran out.
	Total int `json:"total"`

	Requested  int           `json:"requested"`
	Percentage float64       `json:"percentage"`
	Points     int           `json:"points"`
	Elapsed    time.Duration `json:"elapsed"`
	TimedOut   bool          `json:"timed_out"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Finalizer computes and persists session results.
type Finalizer struct {
	sessions SessionStore
}

// NewFinalizer creates a Finalizer over sessions.
func NewFinalizer(sessions SessionStore) *Finalizer {
	return &Finalizer{sessions: sessions}
}

// Finalize moves s from PRESENTING to FINALIZING and persists the result.
// The user statistics and the session row are written in one transaction,
// so a failure leaves both untouched and s unchanged.
func (f *Finalizer) Finalize(ctx context.Context, s *Session, now time.Time, timedOut bool) (Report, error) {
	if s.State != StatePresenting {
		return Report{}, fmt.Errorf("finalize from %s: %w", s.State, ErrInvalidTransition)
	}

	elapsed := now.Sub(s.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	total := s.Answered
	r := Report{
		SessionID:  s.ID,
		UserID:     s.UserID,
		Kind:       s.Kind,
		Score:      s.Score,
		Total:      total,
		Requested:  s.Requested,
		Percentage: Percentage(s.Score, total),
		Points:     Points(elapsed, s.Score, total),
		Elapsed:    elapsed,
		TimedOut:   timedOut,
		FinishedAt: now,
	}

	err := f.sessions.Finalize(ctx, store.SessionResult{
		SessionID:  r.SessionID,
		UserID:     r.UserID,
		Score:      r.Score,
		Answered:   r.Total,
		Percentage: r.Percentage,
		Elapsed:    r.Elapsed,
		Points:     r.Points,
		FinishedAt: r.FinishedAt,
	})
	if err != nil && !errors.Is(err, store.ErrAlreadyFinalized) {
		return Report{}, fmt.Errorf("persist results: %w", err)
	}

	s.State = StateFinalizing
	s.Report = &r
	return r, nil
}
