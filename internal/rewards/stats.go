// Package rewards computes user statistics, reward progress and the daily
// gift.
package rewards

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/qudurat/qudurat/internal/store"
)

// Stats is the user-facing view of a user's counters.
type Stats struct {
	Points     int
	Percentage int
	StudyHours float64
	Answered   int
}

// StatsFor derives Stats from a user row. Hours are rounded to two
// decimals and the percentage to a whole number.
func StatsFor(u store.User) Stats {
	return Stats{
		Points:     u.Points,
		Percentage: int(math.Round(u.ExpectedPercentage)),
		StudyHours: math.Round(u.UsageSeconds/3600*100) / 100,
		Answered:   u.AnsweredQuestions,
	}
}

// Value returns the stat tracked by m.
func (s Stats) Value(m Metric) float64 {
	switch m {
	case MetricPercentage:
		return float64(s.Percentage)
	case MetricStudyHours:
		return s.StudyHours
	case MetricAnswered:
		return float64(s.Answered)
	case MetricPoints:
		return float64(s.Points)
	}
	return 0
}

// Reached reports whether s meets t.
func (s Stats) Reached(t Target) bool {
	return s.Value(t.Metric) >= t.Value
}

// ProgressLine renders one target as achieved or with the remaining gap.
func ProgressLine(s Stats, t Target) string {
	v := s.Value(t.Metric)
	unit := t.Metric.Unit()
	name := t.Metric.DisplayName()
	if v >= t.Value {
		return fmt.Sprintf("✅ - %s: حققت %s %s من %s %s المطلوبة من %s.",
			t.Reward, num(v), unit, num(t.Value), unit, name)
	}
	return fmt.Sprintf("⚠️ - %s: تحتاج إلى %s %s إضافية من %s للوصول إلى %s %s.",
		t.Reward, num(t.Value-v), unit, name, num(t.Value), unit)
}

// Render formats the statistics followed by reward progress.
func Render(s Stats, targets []Target) string {
	var b strings.Builder
	b.WriteString("📊 إحصائياتك:\n")
	fmt.Fprintf(&b, "🏅 نقاطك: %d\n", s.Points)
	fmt.Fprintf(&b, "📈 النسبة المئوية: %d%%\n", s.Percentage)
	fmt.Fprintf(&b, "⏳ وقت الدراسة: %s ساعة\n", num(s.StudyHours))
	fmt.Fprintf(&b, "✍️ عدد الأسئلة التي أجبت عليها: %d\n\n", s.Answered)

	if len(targets) == 0 {
		b.WriteString("🙅 لم تكسب أي مكافآت حتى الآن. استمر في الدراسة!")
		return b.String()
	}
	b.WriteString("🎁 مكافآتك:\n")
	for i, t := range targets {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ProgressLine(s, t))
	}
	return b.String()
}

// num prints whole numbers without a fraction and others with up to two
// decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64)
}
