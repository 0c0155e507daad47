// Package events publishes quiz session lifecycle events to RabbitMQ.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/qudurat/qudurat/internal/quiz"
)

// Type is the routing key of an event.
type Type string

const (
	SessionStarted   Type = "session.started"
	SessionFinalized Type = "session.finalized"
	SessionCancelled Type = "session.cancelled"
)

// Exchange is the topic exchange events are published to.
const Exchange = "qudurat.events"

// Event is the JSON body of a published message.
type Event struct {
	ID         string    `json:"event_id"`
	Type       Type      `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	SessionID  int64     `json:"session_id"`
	UserID     int64     `json:"user_id"`
	Kind       string    `json:"kind"`

	QuestionType string `json:"question_type,omitempty"`
	Requested    int    `json:"requested,omitempty"`

	// Set for session.finalized.
	Score          int     `json:"score,omitempty"`
	Total          int     `json:"total,omitempty"`
	Percentage     float64 `json:"percentage,omitempty"`
	Points         int     `json:"points,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty"`
	TimedOut       bool    `json:"timed_out,omitempty"`
}

func newEvent(t Type, s *quiz.Session, now time.Time) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         t,
		OccurredAt:   now.UTC(),
		SessionID:    s.ID,
		UserID:       s.UserID,
		Kind:         string(s.Kind),
		QuestionType: s.QuestionType,
		Requested:    s.Requested,
	}
}

// Finalized builds the session.finalized event for r.
func Finalized(s *quiz.Session, r quiz.Report) Event {
	e := newEvent(SessionFinalized, s, r.FinishedAt)
	e.Score = r.Score
	e.Total = r.Total
	e.Percentage = r.Percentage
	e.Points = r.Points
	e.ElapsedSeconds = r.Elapsed.Seconds()
	e.TimedOut = r.TimedOut
	return e
}
