package quiz

import (
	"strings"
	"unicode"

	"github.com/qudurat/qudurat/internal/store"
)

// Label identifies one of the four answer options.
type Label string

const (
	LabelA Label = "أ"
	LabelB Label = "ب"
	LabelC Label = "ج"
	LabelD Label = "د"
)

// Labels lists the option labels in canonical order.
var Labels = [4]Label{LabelA, LabelB, LabelC, LabelD}

// labelAliases maps accepted spellings to canonical labels.
var labelAliases = map[string]Label{
	"أ": LabelA, "ا": LabelA, "إ": LabelA, "آ": LabelA, "a": LabelA,
	"ب": LabelB, "b": LabelB,
	"ج": LabelC, "c": LabelC,
	"د": LabelD, "d": LabelD,
}

// ParseLabel normalizes a submitted label. Surrounding whitespace and
// punctuation are ignored, Latin letters are case-insensitive aliases.
func ParseLabel(s string) (Label, bool) {
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || r == 'ـ'
	})
	l, ok := labelAliases[strings.ToLower(s)]
	return l, ok
}

// Option is a labeled answer choice.
type Option struct {
	Label Label  `json:"label"`
	Text  string `json:"text"`
}

// Question is a multiple-choice question in play.
type Question struct {
	ID             int64     `json:"id"`
	Text           string    `json:"text"`
	Options        [4]Option `json:"options"`
	Correct        Label     `json:"correct"`
	Explanation    string    `json:"explanation,omitempty"`
	Type           string    `json:"type"`
	ImagePath      string    `json:"image_path,omitempty"`
	Passage        string    `json:"passage,omitempty"`
	MainCategoryID int64     `json:"main_category_id"`
}

// OptionText returns the text behind label, or "" for unknown labels.
func (q Question) OptionText(l Label) string {
	for _, o := range q.Options {
		if o.Label == l {
			return o.Text
		}
	}
	return ""
}

// HasPassage reports whether the question belongs to a reading passage.
func (q Question) HasPassage() bool {
	return q.Passage != ""
}

// FromStore converts a question bank row. A passage name of "-" means the
// question stands alone.
func FromStore(sq store.Question) Question {
	correct, ok := ParseLabel(sq.CorrectAnswer)
	if !ok {
		correct = Label(strings.TrimSpace(sq.CorrectAnswer))
	}
	passage := strings.TrimSpace(sq.PassageName)
	if passage == "-" {
		passage = ""
	}
	return Question{
		ID:   sq.ID,
		Text: sq.Text,
		Options: [4]Option{
			{Label: LabelA, Text: sq.OptionA},
			{Label: LabelB, Text: sq.OptionB},
			{Label: LabelC, Text: sq.OptionC},
			{Label: LabelD, Text: sq.OptionD},
		},
		Correct:        correct,
		Explanation:    sq.Explanation,
		Type:           sq.Type,
		ImagePath:      sq.ImagePath,
		Passage:        passage,
		MainCategoryID: sq.MainCategoryID,
	}
}
