package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/rewards"
	"github.com/qudurat/qudurat/internal/router"
	"github.com/qudurat/qudurat/internal/screen"
	"github.com/qudurat/qudurat/internal/screens/history"
	"github.com/qudurat/qudurat/internal/screens/setup"
	"github.com/qudurat/qudurat/internal/ui/components"
	"github.com/qudurat/qudurat/internal/ui/layout"
	"github.com/qudurat/qudurat/internal/ui/theme"
)

const banner = "قُدُرات"

type statsLoadedMsg struct {
	stats rewards.Stats
	err   error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	env    *screen.Env
	menu   components.Menu
	stats  rewards.Stats
	loaded bool
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen.
func New(env *screen.Env) *HomeScreen {
	h := &HomeScreen{env: env}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "تحديد المستوى", Action: func() tea.Cmd {
			return router.Push(setup.New(env, quiz.KindLevelDetermination, setup.Preset{}))
		}},
		{Label: "اختبار", Action: func() tea.Cmd {
			return router.Push(setup.New(env, quiz.KindTest, setup.Preset{}))
		}},
		{Label: "الاختبارات السابقة", Action: func() tea.Cmd {
			return router.Push(history.New(env))
		}},
		{Label: "خروج", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

// Init reloads the stats; it runs again whenever the screen is revealed.
func (h *HomeScreen) Init() tea.Cmd {
	env := h.env
	return func() tea.Msg {
		u, err := env.Users.Get(context.Background(), env.UserID)
		if err != nil || u == nil {
			return statsLoadedMsg{err: err}
		}
		return statsLoadedMsg{stats: rewards.StatsFor(*u)}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statsLoadedMsg); ok {
		h.loaded = true
		h.stats = msg.stats
		h.errMsg = ""
		if msg.err != nil {
			h.errMsg = msg.err.Error()
		}
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	title := layout.Centered(lipgloss.NewStyle().Foreground(theme.Gold).Bold(true), cw, banner)
	subtitle := layout.Centered(theme.Subtitle, cw, "تدرّب على اختبار القدرات اللفظي والكمي")

	sections := []string{title, subtitle}
	if !layout.IsCompactHeight(height + 6) {
		sections = append(sections, components.Card(h.statsLine(), cw))
	}
	if h.errMsg != "" {
		sections = append(sections, layout.Centered(lipgloss.NewStyle().Foreground(theme.Error), cw, h.errMsg))
	}
	sections = append(sections, lipgloss.NewStyle().Width(cw).Render(h.menu.View()))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) statsLine() string {
	if !h.loaded {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("...")
	}
	s := h.stats
	return fmt.Sprintf("%s   %s   %s",
		lipgloss.NewStyle().Foreground(theme.Gold).Render(fmt.Sprintf("🏅 %d نقطة", s.Points)),
		lipgloss.NewStyle().Foreground(theme.Primary).Render(fmt.Sprintf("📈 %d%%", s.Percentage)),
		lipgloss.NewStyle().Foreground(theme.Secondary).Render(fmt.Sprintf("✍ %d سؤال", s.Answered)),
	)
}

func (h *HomeScreen) Title() string {
	return "الرئيسية"
}
