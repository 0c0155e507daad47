package quiz

import (
	"time"

	"github.com/qudurat/qudurat/internal/store"
)

// Kind distinguishes level determination from regular tests. Both share
// the same state machine and storage table.
type Kind string

const (
	KindLevelDetermination Kind = store.KindLevelDetermination
	KindTest               Kind = store.KindTest
)

// State is the session's position in its lifecycle. States only move
// forward.
type State int

const (
	StateInitialized State = iota // Created, questions not yet presented
	StatePresenting               // Serving questions and accepting answers
	StateFinalizing               // Results persisted, waiting for artifact choice
	StateReported                 // Artifact chosen, waiting for AI assistance choice
	StateChatting                 // Talking to the AI assistant
	StateClosed                   // Done
	StateCancelled                // Abandoned by the user while presenting
)

var stateNames = [...]string{
	StateInitialized: "initialized",
	StatePresenting:  "presenting",
	StateFinalizing:  "finalizing",
	StateReported:    "reported",
	StateChatting:    "chatting",
	StateClosed:      "closed",
	StateCancelled:   "cancelled",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateCancelled
}

// Scope restricts the question draw to a category.
type Scope struct {
	// Kind is "main", "sub" or "" for no restriction.
	Kind string `json:"kind,omitempty"`
	ID   int64  `json:"id,omitempty"`
}

// Filter converts the scope into a store filter for questionType.
func (s Scope) Filter(questionType string) store.QuestionFilter {
	f := store.QuestionFilter{Type: questionType}
	switch s.Kind {
	case "main":
		f.MainCategoryID = s.ID
	case "sub":
		f.SubcategoryID = s.ID
	}
	return f
}

// Session is the full runtime state of one quiz. It is serialized into
// the Registry between steps, so every field is exported.
type Session struct {
	// ID is the persisted quiz_sessions row id.
	ID int64 `json:"id"`

	// UserID is the Telegram user taking the quiz.
	UserID int64 `json:"user_id"`

	// ChatID is where question messages go.
	ChatID int64 `json:"chat_id"`

	Kind         Kind   `json:"kind"`
	QuestionType string `json:"question_type"`
	Scope        Scope  `json:"scope"`

	// Requested is the planned question count.
	Requested int `json:"requested"`

	// Questions are the drawn questions in presentation order.
	Questions []Question `json:"questions"`

	// Index is the cursor into Questions.
	Index int `json:"index"`

	// Score counts correct answers.
	Score int `json:"score"`

	// Answered counts accepted submissions.
	Answered int `json:"answered"`

	StartedAt time.Time `json:"started_at"`
	Deadline  time.Time `json:"deadline"`

	// MessageID is the single outgoing question message; 0 until the first
	// question is sent, after which every question edits it.
	MessageID int `json:"message_id,omitempty"`

	State State `json:"state"`

	// Report is set once the session is finalized.
	Report *Report `json:"report,omitempty"`
}

// Remaining returns the time left before the deadline, never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	if d := s.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}
