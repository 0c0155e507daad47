// Package quiz is the terminal screen that runs one quiz session through
// the engine: it shows questions, grades answers and watches the deadline.
package quiz

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/router"
	"github.com/qudurat/qudurat/internal/screen"
	"github.com/qudurat/qudurat/internal/screens/summary"
	"github.com/qudurat/qudurat/internal/ui/components"
	"github.com/qudurat/qudurat/internal/ui/layout"
)

// QuizScreen runs an active session.
type QuizScreen struct {
	env     *screen.Env
	session *quiz.Session

	current  *quiz.Presentation
	passage  string
	choices  components.MultiChoice
	outcome  *quiz.Outcome
	pending  *quiz.Step // what follows the outcome overlay
	waiting  bool       // an engine call is in flight
	expired  bool
	confirm  bool
	finished bool
	errMsg   string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.EscapeHandler = (*QuizScreen)(nil)

// New creates a screen for a session returned by Engine.Start.
func New(env *screen.Env, s *quiz.Session) *QuizScreen {
	return &QuizScreen{env: env, session: s}
}

func (s *QuizScreen) Init() tea.Cmd {
	if s.current != nil || s.finished {
		return nil
	}
	s.waiting = true
	return tea.Batch(s.present(), tickCmd())
}

func (s *QuizScreen) Title() string {
	if s.session.Kind == quiz.KindLevelDetermination {
		return "تحديد المستوى"
	}
	return "اختبار"
}

// HandlesEscape keeps Esc from popping the screen mid-quiz.
func (s *QuizScreen) HandlesEscape() bool { return !s.finished }

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "إنهاء الاختبار"},
			{Key: "N", Description: "متابعة"},
		}
	case s.outcome != nil:
		return []layout.KeyHint{{Key: "أي زر", Description: "متابعة"}}
	}
	return []layout.KeyHint{
		{Key: "1-4", Description: "إجابة"},
		{Key: "↑↓ Enter", Description: "اختيار"},
		{Key: "Esc", Description: "إنهاء"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		return s.handleStep(msg)
	case timerTickMsg:
		return s.handleTick(time.Time(msg))
	case cancelledMsg:
		s.finished = true
		return s, router.PopToRoot
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleStep(msg stepMsg) (screen.Screen, tea.Cmd) {
	s.waiting = false
	if msg.err != nil {
		switch {
		case errors.Is(msg.err, quiz.ErrStaleAnswer):
			return s, nil
		case errors.Is(msg.err, quiz.ErrUnknownSession), errors.Is(msg.err, quiz.ErrSessionClosed):
			s.finished = true
			s.errMsg = "هذا الاختبار انتهى."
		default:
			s.errMsg = msg.err.Error()
		}
		return s, nil
	}

	if msg.step.Outcome != nil {
		s.outcome = msg.step.Outcome
		s.choices.Reveal(s.outcome.Submitted, s.outcome.CorrectLabel)
		next := msg.step
		s.pending = &next
		return s, nil
	}
	return s.advance(msg.step)
}

// advance shows the next question or moves on to the summary.
func (s *QuizScreen) advance(step quiz.Step) (screen.Screen, tea.Cmd) {
	s.outcome = nil
	s.pending = nil
	if step.Report != nil {
		s.finished = true
		return s, router.Replace(summary.New(s.env, *step.Report))
	}
	if step.Presentation == nil {
		return s, nil
	}
	s.current = step.Presentation
	s.choices = components.NewMultiChoice(step.Presentation.Choices)
	// A missing passage file only hides the passage.
	s.passage, _ = quiz.ReadPassage(s.env.PassagesDir, step.Presentation.Question.Passage)
	return s, nil
}

func (s *QuizScreen) handleTick(now time.Time) (screen.Screen, tea.Cmd) {
	if s.finished {
		return s, nil
	}
	if !s.expired && s.session.Remaining(s.env.Clock()) <= 0 {
		s.expired = true
		// An open overlay is dismissed first; the next Present finalizes.
		if s.outcome == nil && !s.waiting {
			s.waiting = true
			return s, s.present()
		}
	}
	return s, tickCmd()
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, router.PopToRoot
	}
	if s.confirm {
		switch key {
		case "y", "Y":
			s.confirm = false
			return s, s.cancel()
		case "n", "N", "esc":
			s.confirm = false
		}
		return s, nil
	}
	if key == "esc" {
		s.confirm = true
		return s, nil
	}
	if s.waiting {
		return s, nil
	}
	if s.outcome != nil {
		next := *s.pending
		if next.Presentation != nil && s.expired {
			s.outcome = nil
			s.waiting = true
			return s, s.present()
		}
		return s.advance(next)
	}
	if s.current == nil {
		return s, nil
	}

	var label quiz.Label
	var picked bool
	s.choices, label, picked = s.choices.Update(msg)
	if !picked {
		return s, nil
	}
	s.waiting = true
	return s, s.submit(s.current.Question.ID, label)
}

func (s *QuizScreen) present() tea.Cmd {
	engine, id := s.env.Engine, s.session.ID
	return func() tea.Msg {
		step, err := engine.Present(context.Background(), id)
		return stepMsg{step: step, err: err}
	}
}

func (s *QuizScreen) submit(questionID int64, label quiz.Label) tea.Cmd {
	engine, id := s.env.Engine, s.session.ID
	return func() tea.Msg {
		step, err := engine.Submit(context.Background(), id, questionID, string(label))
		return stepMsg{step: step, err: err}
	}
}

func (s *QuizScreen) cancel() tea.Cmd {
	engine, id := s.env.Engine, s.session.ID
	return func() tea.Msg {
		return cancelledMsg{err: engine.Cancel(context.Background(), id)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
