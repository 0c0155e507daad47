package summary

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/router"
	"github.com/qudurat/qudurat/internal/screen"
	"github.com/qudurat/qudurat/internal/tutor"
	"github.com/qudurat/qudurat/internal/ui/components"
	"github.com/qudurat/qudurat/internal/ui/layout"
	"github.com/qudurat/qudurat/internal/ui/theme"
)

type feedbackMsg string

// closedMsg is sent once the finished session left the engine.
type closedMsg struct{}

// SummaryScreen shows the report of a finished session and, after a level
// determination, the model's analysis.
type SummaryScreen struct {
	env    *screen.Env
	report quiz.Report

	analyzing bool
	feedback  string
	closing   bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen for r.
func New(env *screen.Env, r quiz.Report) *SummaryScreen {
	return &SummaryScreen{env: env, report: r}
}

func (s *SummaryScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{screen.RefreshStats}
	if s.report.Kind == quiz.KindLevelDetermination && s.env.Feedback != nil && s.feedback == "" {
		s.analyzing = true
		cmds = append(cmds, s.analyze())
	}
	return tea.Batch(cmds...)
}

func (s *SummaryScreen) Title() string {
	return "النتيجة"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "الرئيسية"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case feedbackMsg:
		s.analyzing = false
		s.feedback = string(msg)
		return s, nil
	case closedMsg:
		return s, router.PopToRoot
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc":
			if s.closing {
				return s, nil
			}
			s.closing = true
			return s, s.close()
		}
	}
	return s, nil
}

func (s *SummaryScreen) analyze() tea.Cmd {
	env, r := s.env, s.report
	return func() tea.Msg {
		ctx := context.Background()
		in, err := tutor.LoadInput(ctx, env.Answers, env.Categories, r.UserID, r.SessionID, r.Score, r.Total, r.Elapsed)
		if err != nil {
			return feedbackMsg(tutor.FeedbackFailed)
		}
		return feedbackMsg(env.Feedback.Text(ctx, in))
	}
}

// close walks the finalized session through the remaining states. There
// is no report file or assistant chat in the terminal, so both are
// declined.
func (s *SummaryScreen) close() tea.Cmd {
	engine, id := s.env.Engine, s.report.SessionID
	return func() tea.Msg {
		ctx := context.Background()
		if err := engine.ChooseArtifact(ctx, id); err == nil {
			_ = engine.ChooseAssistance(ctx, id, false)
		}
		return closedMsg{}
	}
}

func (s *SummaryScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var sections []string
	if s.report.TimedOut {
		sections = append(sections, layout.Centered(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true), cw, quiz.TimeUpMessage))
	}
	sections = append(sections, components.Card(plain(s.report.Summary()), cw))

	switch {
	case s.analyzing:
		sections = append(sections, layout.Centered(theme.Hint, cw, "جاري تحليل أدائك... ⏳"))
	case s.feedback != "":
		sections = append(sections, lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Render(s.feedback))
	}
	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

// plain drops the Markdown emphasis meant for Telegram.
func plain(s string) string {
	return strings.ReplaceAll(s, "*", "")
}
