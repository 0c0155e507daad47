package quiz

import (
	"fmt"
	"strings"
)

// TimeUpMessage is shown before the summary when the deadline ended the
// session.
const TimeUpMessage = "لقد انتهى وقتك. ⏱️"

// Summary renders the report for the student.
func (r Report) Summary() string {
	secs := int(r.Elapsed.Seconds())
	var b strings.Builder
	b.WriteString("*انتهت الأسئلة!* 🎉\n")
	fmt.Fprintf(&b, "لقد ربحت *%d* نقطة! 🏆\n", r.Points)
	fmt.Fprintf(&b, "لقد حصلت على *%d* من *%d* 👏\n", r.Score, r.Total)
	if r.Kind == KindLevelDetermination {
		fmt.Fprintf(&b, "نسبتك المتوقعة: *%.0f%%* 📊\n", r.Percentage)
	}
	fmt.Fprintf(&b, "لقد استغرقت *%d* دقيقة و*%d* ثانية. ⏱️", secs/60, secs%60)
	return b.String()
}
