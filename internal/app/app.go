// Package app is the terminal practice program: a bubbletea model that
// stacks screens over the same quiz engine the bot uses.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/router"
	"github.com/qudurat/qudurat/internal/screen"
	"github.com/qudurat/qudurat/internal/screens/home"
	"github.com/qudurat/qudurat/internal/screens/setup"
	"github.com/qudurat/qudurat/internal/screens/welcome"
	"github.com/qudurat/qudurat/internal/ui/layout"
)

// Options preselect a quiz so the program starts straight into it.
type Options struct {
	Kind         quiz.Kind
	QuestionType string
	Mode         quiz.SizingMode
	Input        string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env    *screen.Env
	opts   Options
	router *router.Router
	stats  layout.HeaderStats
	width  int
	height int
}

func newAppModel(env *screen.Env, opts Options) AppModel {
	var root screen.Screen = welcome.New(env, func() screen.Screen { return home.New(env) })
	if opts.QuestionType != "" {
		root = home.New(env)
	}
	return AppModel{
		env:    env,
		opts:   opts,
		router: router.New(root),
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init(), m.loadStats()}
	if m.opts.QuestionType != "" {
		kind := m.opts.Kind
		if kind == "" {
			kind = quiz.KindTest
		}
		p := setup.Preset{QuestionType: m.opts.QuestionType, Mode: m.opts.Mode, Input: m.opts.Input}
		cmds = append(cmds, router.Push(setup.New(m.env, kind, p)))
	}
	return tea.Batch(cmds...)
}

func (m AppModel) loadStats() tea.Cmd {
	env := m.env
	return func() tea.Msg { return env.LoadStats(context.Background()) }
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.RefreshStatsMsg:
		return m, m.loadStats()

	case screen.StatsMsg:
		if msg.Err == nil {
			m.stats = msg.Stats
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, router.Pop
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.stats, m.width)

	var hints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	}
	if hints == nil {
		hints = []layout.KeyHint{
			{Key: "↑↓", Description: "تنقل"},
			{Key: "Enter", Description: "اختيار"},
		}
	}
	hints = append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "خروج"})
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the terminal program and blocks until it exits.
func Run(ctx context.Context, env *screen.Env, opts Options) error {
	p := tea.NewProgram(newAppModel(env, opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal app: %w", err)
	}
	return nil
}
