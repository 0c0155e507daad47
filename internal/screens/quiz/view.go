package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/qudurat/qudurat/internal/ui/components"
	"github.com/qudurat/qudurat/internal/ui/layout"
	"github.com/qudurat/qudurat/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return layout.Centered(lipgloss.NewStyle().Foreground(theme.Error), width, "\n\n"+s.errMsg)
	case s.confirm:
		return renderQuitConfirm(width)
	case s.current == nil:
		return layout.Centered(theme.Hint, width, "\n\nجاري تحميل السؤال...")
	}

	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString(s.renderInfo(cw))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))
	b.WriteString("\n\n")

	q := s.current.Question
	if s.passage != "" {
		b.WriteString(lipgloss.NewStyle().Width(cw).Foreground(theme.TextDim).Render(s.passage))
		b.WriteString("\n\n")
	}
	b.WriteString(lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Bold(true).Render(q.Text))
	if q.ImagePath != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("(صورة: " + q.ImagePath + ")"))
	}
	b.WriteString("\n\n")
	b.WriteString(s.choices.View())

	if s.outcome != nil {
		b.WriteString("\n")
		b.WriteString(s.renderOutcome(cw))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (s *QuizScreen) renderInfo(cw int) string {
	remaining := int(s.session.Remaining(s.env.Clock()).Seconds())
	total := s.session.Deadline.Sub(s.session.StartedAt).Seconds()
	pct := 0.0
	if total > 0 {
		pct = float64(remaining) / total
	}
	bar := components.ProgressBar{
		Label:   fmt.Sprintf("السؤال %d/%d", s.current.Number, s.current.Total),
		Percent: pct,
		Suffix:  components.Clock(remaining),
		Width:   cw,
		WarnLow: true,
	}
	return bar.View()
}

func (s *QuizScreen) renderOutcome(cw int) string {
	o := s.outcome
	var b strings.Builder
	if o.Correct {
		b.WriteString(theme.Correct.Render("إجابة صحيحة! ✅"))
	} else {
		b.WriteString(theme.Incorrect.Render("إجابة خاطئة ❌"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "الإجابة الصحيحة: %s. %s", o.CorrectLabel, o.CorrectText)
	}
	if o.Question.Explanation != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(o.Question.Explanation))
	}
	return components.Card(b.String(), cw)
}

func renderQuitConfirm(width int) string {
	return layout.Centered(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true), width,
		"\n\nهل تريد إنهاء الاختبار؟ لن يتم حفظ النتيجة.\n\n(Y) نعم    (N) لا")
}
