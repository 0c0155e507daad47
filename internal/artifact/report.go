package artifact

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/qudurat/qudurat/internal/store"
)

// Option is one answer choice as printed.
type Option struct {
	Label string
	Text  string
}

// Item is one answered question in the report.
type Item struct {
	Number      int
	Text        string
	Passage     string
	Options     []Option
	Correct     string
	UserAnswer  string
	IsCorrect   bool
	Explanation string
}

// ReportData is everything a session report shows.
type ReportData struct {
	StudentName string
	Phone       string
	KindLabel   string
	TestNumber  int
	Date        time.Time
	Count       int
	Result      string
	Items       []Item
}

// KindLabel returns the Arabic title for a session kind.
func KindLabel(kind string) string {
	if kind == store.KindLevelDetermination {
		return "تحديد المستوى"
	}
	return "اختبار"
}

// ResultLine formats the headline result of a session.
func ResultLine(rec store.SessionRecord) string {
	if rec.Kind == store.KindLevelDetermination {
		return fmt.Sprintf("%.0f%%", rec.Percentage)
	}
	return fmt.Sprintf("%d / %d", rec.Score, rec.Answered)
}

// ItemsFrom converts stored answers into report items.
func ItemsFrom(answers []store.AnsweredQuestion) []Item {
	items := make([]Item, len(answers))
	for i, a := range answers {
		items[i] = Item{
			Number:  i + 1,
			Text:    a.Text,
			Passage: a.PassageName,
			Options: []Option{
				{Label: "أ", Text: a.OptionA},
				{Label: "ب", Text: a.OptionB},
				{Label: "ج", Text: a.OptionC},
				{Label: "د", Text: a.OptionD},
			},
			Correct:     a.CorrectAnswer,
			UserAnswer:  a.UserAnswer,
			IsCorrect:   a.IsCorrect,
			Explanation: a.Explanation,
		}
	}
	return items
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
}).Parse(`<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head>
<meta charset="utf-8">
<title>{{.KindLabel}} {{.TestNumber}}</title>
<style>
body { font-family: "Noto Naskh Arabic", "Amiri", serif; direction: rtl; margin: 2em; }
h1 { text-align: center; }
table.meta td { padding: 0.2em 1em; }
.q { border-top: 1px solid #999; padding: 0.8em 0; page-break-inside: avoid; }
.ok { color: #1a7f37; }
.bad { color: #cf222e; }
.passage { background: #f3f3f3; padding: 0.5em; }
</style>
</head>
<body>
<h1>{{.KindLabel}} رقم {{.TestNumber}}</h1>
<table class="meta">
<tr><td>الاسم:</td><td>{{.StudentName}}</td></tr>
{{- if .Phone}}
<tr><td>الجوال:</td><td>{{.Phone}}</td></tr>
{{- end}}
<tr><td>التاريخ:</td><td>{{date .Date}}</td></tr>
<tr><td>عدد الأسئلة:</td><td>{{.Count}}</td></tr>
<tr><td>النتيجة:</td><td>{{.Result}}</td></tr>
</table>
{{range .Items}}
<div class="q">
{{- if .Passage}}<p class="passage">{{.Passage}}</p>{{end}}
<p><b>{{.Number}}.</b> {{.Text}}</p>
<ul>
{{- range .Options}}
<li>{{.Label}}) {{.Text}}</li>
{{- end}}
</ul>
<p>الإجابة الصحيحة: {{.Correct}}</p>
<p class="{{if .IsCorrect}}ok{{else}}bad{{end}}">إجابتك: {{.UserAnswer}}</p>
{{- if .Explanation}}
<p>الشرح: {{.Explanation}}</p>
{{- end}}
</div>
{{end}}
</body>
</html>
`))

// WriteHTML renders the report as a right-to-left HTML page.
func WriteHTML(w io.Writer, data ReportData) error {
	return reportTemplate.Execute(w, data)
}
