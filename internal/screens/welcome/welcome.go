// Package welcome is the first screen of the practice program. It plays a
// short splash and, on the first run, asks for the gender that selects
// the wording of encouragement messages.
package welcome

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/qudurat/qudurat/internal/router"
	"github.com/qudurat/qudurat/internal/screen"
	"github.com/qudurat/qudurat/internal/ui/components"
	"github.com/qudurat/qudurat/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	bannerAt     = 500 * time.Millisecond
	totalDur     = 1500 * time.Millisecond
)

type tickMsg time.Time

// userLoadedMsg reports whether the local user still needs a gender.
type userLoadedMsg struct {
	needsGender bool
	err         error
}

type genderSavedMsg struct {
	err error
}

// WelcomeScreen shows the splash, then replaces itself with the screen
// produced by next.
type WelcomeScreen struct {
	env  *screen.Env
	next func() screen.Screen

	elapsed      time.Duration
	loaded       bool
	needsGender  bool
	menu         components.Menu
	errMsg       string
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen for env's local user.
func New(env *screen.Env, next func() screen.Screen) *WelcomeScreen {
	w := &WelcomeScreen{env: env, next: next}
	w.menu = components.NewMenu([]components.MenuItem{
		{Label: "ذكر", Action: w.saveGender("male")},
		{Label: "أنثى", Action: w.saveGender("female")},
	})
	return w
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	env := w.env
	return tea.Batch(tick(), func() tea.Msg {
		u, err := env.Users.Get(context.Background(), env.UserID)
		if err != nil {
			return userLoadedMsg{err: err}
		}
		return userLoadedMsg{needsGender: u != nil && u.Gender == ""}
	})
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) saveGender(gender string) func() tea.Cmd {
	return func() tea.Cmd {
		env := w.env
		return func() tea.Msg {
			return genderSavedMsg{err: env.Users.SetGender(context.Background(), env.UserID, gender)}
		}
	}
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.elapsed >= totalDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case userLoadedMsg:
		w.loaded = true
		w.needsGender = msg.needsGender
		if msg.err != nil {
			w.errMsg = msg.err.Error()
		}
		return w, nil

	case genderSavedMsg:
		if msg.err != nil {
			w.errMsg = msg.err.Error()
			return w, nil
		}
		w.needsGender = false
		return w, w.transition()

	case tea.KeyPressMsg:
		if w.needsGender {
			var cmd tea.Cmd
			w.menu, cmd = w.menu.Update(msg)
			return w, cmd
		}
		if w.loaded {
			return w, w.transition()
		}
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	return router.Replace(w.next())
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string
	sections = append(sections, RenderBanner(width))

	if w.elapsed >= bannerAt {
		sections = append(sections, "", lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("استعد لاختبار القدرات"))
	}

	switch {
	case w.needsGender:
		sections = append(sections, "", theme.Subtitle.Render("اختر الجنس"), "", w.menu.View())
	case w.loaded:
		sections = append(sections, "", lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("اضغط أي زر للمتابعة"))
	}
	if w.errMsg != "" {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Error).Render(w.errMsg))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
