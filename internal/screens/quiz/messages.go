package quiz

import (
	"time"

	"github.com/qudurat/qudurat/internal/quiz"
)

// stepMsg carries the engine's answer to a Present or Submit call.
type stepMsg struct {
	step quiz.Step
	err  error
}

// timerTickMsg is sent every second to update the countdown.
type timerTickMsg time.Time

// cancelledMsg is sent once the engine dropped the session.
type cancelledMsg struct {
	err error
}
