// Package setup collects the question type, sizing mode and amount for a
// new quiz and starts it.
package setup

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/router"
	"github.com/qudurat/qudurat/internal/screen"
	quizscreen "github.com/qudurat/qudurat/internal/screens/quiz"
	"github.com/qudurat/qudurat/internal/store"
	"github.com/qudurat/qudurat/internal/ui/components"
	"github.com/qudurat/qudurat/internal/ui/layout"
	"github.com/qudurat/qudurat/internal/ui/theme"
)

type step int

const (
	stepType step = iota
	stepMode
	stepAmount
	stepStarting
)

// Preset fills in choices ahead of time. When all three are set the quiz
// starts as soon as the screen is pushed.
type Preset struct {
	QuestionType string
	Mode         quiz.SizingMode
	Input        string
}

func (p Preset) complete() bool {
	return p.QuestionType != "" && p.Mode != "" && p.Input != ""
}

type startedMsg struct {
	session *quiz.Session
	err     error
}

// SetupScreen walks through the quiz options.
type SetupScreen struct {
	env  *screen.Env
	kind quiz.Kind

	step         step
	questionType string
	mode         quiz.SizingMode
	menu         components.Menu
	input        components.TextInput
	errMsg       string
	autoStart    bool
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates a setup screen for a quiz of kind.
func New(env *screen.Env, kind quiz.Kind, p Preset) *SetupScreen {
	s := &SetupScreen{
		env:          env,
		kind:         kind,
		questionType: p.QuestionType,
		mode:         p.Mode,
		autoStart:    p.complete(),
	}
	s.input = components.NewTextInput("", true, 6)
	if p.Input != "" {
		s.input.Model.SetValue(p.Input)
	}
	switch {
	case s.autoStart:
		s.step = stepStarting
	case s.questionType == "":
		s.toType()
	case s.mode == "":
		s.toMode()
	default:
		s.step = stepAmount
	}
	return s
}

func (s *SetupScreen) Init() tea.Cmd {
	if s.autoStart {
		s.autoStart = false
		return s.start()
	}
	if s.step == stepAmount {
		return s.input.Init()
	}
	return nil
}

func (s *SetupScreen) Title() string {
	if s.kind == quiz.KindLevelDetermination {
		return "تحديد المستوى"
	}
	return "اختبار"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	if s.step == stepAmount {
		return []layout.KeyHint{
			{Key: "Enter", Description: "ابدأ"},
			{Key: "Esc", Description: "رجوع"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "تنقل"},
		{Key: "Enter", Description: "اختيار"},
		{Key: "Esc", Description: "رجوع"},
	}
}

func (s *SetupScreen) toType() {
	s.step = stepType
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "لفظي", Action: s.pickType(store.QuestionTypeVerbal)},
		{Label: "كمي", Action: s.pickType(store.QuestionTypeQuantitative)},
	})
}

func (s *SetupScreen) toMode() {
	s.step = stepMode
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "حسب عدد الأسئلة", Action: s.pickMode(quiz.ByCount)},
		{Label: "حسب الوقت", Action: s.pickMode(quiz.ByTime)},
	})
}

type typeChosenMsg string

type modeChosenMsg quiz.SizingMode

func (s *SetupScreen) pickType(t string) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return typeChosenMsg(t) }
	}
}

func (s *SetupScreen) pickMode(m quiz.SizingMode) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return modeChosenMsg(m) }
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)
	case typeChosenMsg:
		s.questionType = string(msg)
		s.toMode()
		return s, nil
	case modeChosenMsg:
		s.mode = quiz.SizingMode(msg)
		s.step = stepAmount
		s.errMsg = ""
		s.input.Reset()
		return s, s.input.Init()
	case tea.KeyMsg:
		if s.step == stepStarting {
			return s, nil
		}
		if s.step == stepAmount && msg.String() == "enter" {
			if strings.TrimSpace(s.input.Value()) == "" {
				return s, nil
			}
			s.step = stepStarting
			return s, s.start()
		}
	}

	var cmd tea.Cmd
	switch s.step {
	case stepType, stepMode:
		s.menu, cmd = s.menu.Update(msg)
	case stepAmount:
		s.input, cmd = s.input.Update(msg)
	}
	return s, cmd
}

func (s *SetupScreen) start() tea.Cmd {
	env := s.env
	req := quiz.StartRequest{
		UserID:       env.UserID,
		ChatID:       env.UserID,
		Kind:         s.kind,
		QuestionType: s.questionType,
		Mode:         s.mode,
		Input:        s.input.Value(),
	}
	return func() tea.Msg {
		sess, err := env.Engine.Start(context.Background(), req)
		return startedMsg{session: sess, err: err}
	}
}

func (s *SetupScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.err == nil {
		return s, router.Replace(quizscreen.New(s.env, msg.session))
	}

	s.step = stepAmount
	var verr *quiz.ValidationError
	switch {
	case errors.As(msg.err, &verr):
		s.errMsg = validationText(verr)
	case errors.Is(msg.err, quiz.ErrNoQuestions):
		s.errMsg = "لا توجد أسئلة كافية لهذا الاختيار."
	default:
		s.errMsg = "حدث خطأ: " + msg.err.Error()
	}
	s.input.Reset()
	return s, s.input.Init()
}

func validationText(e *quiz.ValidationError) string {
	switch {
	case errors.Is(e, quiz.ErrNotNumeric):
		return "الرجاء إدخال رقم صحيح."
	case e.Field == "minutes":
		return "الرجاء إدخال عدد دقائق أكبر من صفر."
	default:
		return "الرجاء إدخال عدد بين 10 و 100."
	}
}

func (s *SetupScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString(layout.Centered(theme.Title, cw, s.prompt()))
	b.WriteString("\n\n")

	switch s.step {
	case stepType, stepMode:
		b.WriteString(lipgloss.NewStyle().Width(cw).Render(s.menu.View()))
	case stepAmount:
		b.WriteString(layout.Centered(lipgloss.NewStyle(), cw, s.input.View()))
	case stepStarting:
		b.WriteString(layout.Centered(theme.Hint, cw, "جاري تجهيز الأسئلة..."))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Error), cw, s.errMsg))
	}
	return components.Frame(b.String(), width, height)
}

func (s *SetupScreen) prompt() string {
	switch s.step {
	case stepType:
		return "اختر نوع الأسئلة"
	case stepMode:
		return "اختر طريقة تحديد الاختبار"
	case stepAmount:
		if s.mode == quiz.ByTime {
			return "كم دقيقة تريد أن يستغرق الاختبار؟"
		}
		return "كم عدد الأسئلة التي ترغب في الإجابة عليها؟"
	}
	return ""
}
