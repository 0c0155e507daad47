// Package screen defines the contract between the terminal app and the
// screens it stacks.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/qudurat/qudurat/internal/ui/layout"
)

// Screen is one page of the terminal app.
type Screen interface {
	// Init returns an initial command when the screen is pushed.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscapeHandler is implemented by screens that handle Esc themselves
// instead of being popped, e.g. to confirm leaving a running quiz.
type EscapeHandler interface {
	HandlesEscape() bool
}
