package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrNoQuestions means the draw for a new session came back empty.
	ErrNoQuestions = errors.New("no questions available")

	// ErrStaleAnswer means a submission targets a question that is no
	// longer the current one (duplicate tap or out-of-order delivery).
	ErrStaleAnswer = errors.New("answer is for a question that is no longer current")

	// ErrUnknownSession means the registry has no session with that id.
	ErrUnknownSession = errors.New("unknown quiz session")

	// ErrSessionClosed means the session no longer accepts answers.
	ErrSessionClosed = errors.New("quiz session is not accepting answers")

	// ErrTimeExpired means the session deadline passed before the answer.
	ErrTimeExpired = errors.New("quiz time expired")

	// ErrInvalidLabel means the submitted label is not one of the options.
	ErrInvalidLabel = errors.New("invalid answer label")

	// ErrInvalidTransition means the requested step is not allowed from
	// the session's current state.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrNotNumeric and ErrOutOfRange classify a ValidationError.
	ErrNotNumeric = errors.New("not numeric")
	ErrOutOfRange = errors.New("out of range")
)

// ValidationError reports a rejected sizing input. The caller re-prompts.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
	// Err is ErrNotNumeric or ErrOutOfRange, nil for anything else.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }
