package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/router"
	"github.com/qudurat/qudurat/internal/screen"
	"github.com/qudurat/qudurat/internal/store"
	"github.com/qudurat/qudurat/internal/ui/components"
	"github.com/qudurat/qudurat/internal/ui/layout"
	"github.com/qudurat/qudurat/internal/ui/theme"
)

// PageSize is the number of sessions per page.
const PageSize = 10

type historyLoadedMsg struct {
	kind     quiz.Kind
	page     int
	sessions []store.SessionSummary
	total    int
	err      error
}

// HistoryScreen lists the local user's finished sessions of one kind.
type HistoryScreen struct {
	env      *screen.Env
	kind     quiz.Kind
	page     int
	sessions []store.SessionSummary
	total    int
	selected int
	expanded map[int64]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen starting on the test sessions.
func New(env *screen.Env) *HistoryScreen {
	return &HistoryScreen{
		env:      env,
		kind:     quiz.KindTest,
		page:     1,
		expanded: make(map[int64]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load(s.kind, s.page)
}

func (s *HistoryScreen) load(kind quiz.Kind, page int) tea.Cmd {
	env := s.env
	return func() tea.Msg {
		items, total, err := env.Sessions.ListByUser(context.Background(), env.UserID, string(kind), store.Page{Number: page, Size: PageSize})
		return historyLoadedMsg{kind: kind, page: page, sessions: items, total: total, err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "الاختبارات السابقة"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "تبديل النوع"},
		{Key: "←→", Description: "الصفحات"},
		{Key: "Enter", Description: "التفاصيل"},
		{Key: "Esc", Description: "رجوع"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		s.errMsg = ""
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.kind, s.page = msg.kind, msg.page
		s.sessions, s.total = msg.sessions, msg.total
		s.selected = 0
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop
		case "tab":
			next := quiz.KindLevelDetermination
			if s.kind == quiz.KindLevelDetermination {
				next = quiz.KindTest
			}
			return s, s.load(next, 1)
		case "left", "h":
			if s.page < s.pages() {
				return s, s.load(s.kind, s.page+1)
			}
		case "right", "l":
			if s.page > 1 {
				return s, s.load(s.kind, s.page-1)
			}
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.sessions) {
				id := s.sessions[s.selected].ID
				s.expanded[id] = !s.expanded[id]
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) pages() int {
	return max(store.TotalPages(s.total, PageSize), 1)
}

func (s *HistoryScreen) View(width, height int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	if s.errMsg != "" {
		return layout.Centered(lipgloss.NewStyle().Foreground(theme.Error), width, "\n\nخطأ: "+s.errMsg)
	}
	if !s.loaded {
		return layout.Centered(dim, width, "\n\nجاري التحميل...")
	}

	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString(layout.Centered(theme.Title, cw, kindTitle(s.kind)))
	b.WriteString("\n")
	b.WriteString(layout.Centered(dim, cw, fmt.Sprintf("الصفحة %d من %d", s.page, s.pages())))
	b.WriteString("\n\n")

	if len(s.sessions) == 0 {
		b.WriteString(layout.Centered(dim.Italic(true), cw, "لا توجد اختبارات سابقة بعد."))
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
	}

	offset := store.Page{Number: s.page, Size: PageSize}.Offset()
	for i, it := range s.sessions {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "▸ "
			style = theme.Selected
		}
		line := fmt.Sprintf("%sاختبار %d  %s  %s", prefix, s.total-offset-i,
			it.CreatedAt.Format("2006-01-02 15:04"), result(it.SessionRecord))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
		if s.expanded[it.ID] {
			b.WriteString(dim.Render(details(it)))
			b.WriteString("\n")
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func kindTitle(k quiz.Kind) string {
	if k == quiz.KindLevelDetermination {
		return "اختبارات تحديد المستوى"
	}
	return "الاختبارات"
}

func result(rec store.SessionRecord) string {
	if !rec.Finished() {
		return "لم يكتمل"
	}
	if rec.Kind == store.KindLevelDetermination {
		return fmt.Sprintf("%.1f%%", rec.Percentage)
	}
	return fmt.Sprintf("%d/%d", rec.Score, rec.NumQuestions)
}

func details(s store.SessionSummary) string {
	secs := int(s.TimeTaken)
	return fmt.Sprintf("    الصحيحة: %d   المجاب عليها: %d/%d   الوقت: %s",
		s.Correct, s.TotalAnswered, s.NumQuestions, components.Clock(secs))
}
