package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/ui/theme"
)

// MultiChoice selects one of a presented question's four choices. It only
// tracks the cursor; grading happens in the quiz engine.
type MultiChoice struct {
	Choices  [4]quiz.Option
	Selected int

	// Chosen and Correct are set by Reveal once the answer was graded.
	Chosen   quiz.Label
	Correct  quiz.Label
	revealed bool
}

// NewMultiChoice creates a selector over choices.
func NewMultiChoice(choices [4]quiz.Option) MultiChoice {
	return MultiChoice{Choices: choices}
}

// Update moves the cursor. It returns the picked label when the user
// confirms with Enter or a number key 1-4.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, quiz.Label, bool) {
	if m.revealed {
		return m, "", false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, "", false
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Choices)-1 {
			m.Selected++
		}
	case "enter":
		return m, m.Choices[m.Selected].Label, true
	case "1", "2", "3", "4":
		m.Selected = int(key[0] - '1')
		return m, m.Choices[m.Selected].Label, true
	}
	return m, "", false
}

// Reveal marks the graded answer so View can color it.
func (m *MultiChoice) Reveal(chosen, correct quiz.Label) {
	m.revealed = true
	m.Chosen = chosen
	m.Correct = correct
}

// View renders the choices.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, c := range m.Choices {
		prefix := "  "
		if i == m.Selected && !m.revealed {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d) %s. %s", prefix, i+1, c.Label, c.Text)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.revealed && c.Label == m.Correct:
			style = theme.Correct
		case m.revealed && c.Label == m.Chosen:
			style = theme.Incorrect
		case m.revealed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
