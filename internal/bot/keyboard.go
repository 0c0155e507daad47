package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/sections"
	"github.com/qudurat/qudurat/internal/store"
)

// Button is an inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Keyboard is rows of inline buttons.
type Keyboard [][]Button

func row(buttons ...Button) []Button { return buttons }

func btn(text, data string) Button { return Button{Text: text, Data: data} }

// Callback data. Telegram caps it at 64 bytes, so every payload is a short
// prefix followed by ':'-separated ids.
const (
	cbMenu       = "menu"
	cbBack       = "back"
	cbHelp       = "help"
	cbLevel      = "ld"
	cbLevelNew   = "ld:new"
	cbTests      = "tests"
	cbTestsNew   = "t:new"
	cbStats      = "stats"
	cbRewards    = "rw"
	cbGift       = "rw:gift"
	cbRewardList = "rw:stats"
	cbChatEnd    = "chat:end"
	cbPractice   = "cl"
)

// Short kind codes used in history callbacks.
const (
	codeLevel = "ld"
	codeTest  = "t"
)

func kindCode(kind quiz.Kind) string {
	if kind == quiz.KindLevelDetermination {
		return codeLevel
	}
	return codeTest
}

func kindFromCode(code string) (quiz.Kind, bool) {
	switch code {
	case codeLevel:
		return quiz.KindLevelDetermination, true
	case codeTest:
		return quiz.KindTest, true
	}
	return "", false
}

// callback is parsed callback data: the prefix and its arguments.
type callback struct {
	name string
	args []string
}

func parseCallback(data string) callback {
	parts := strings.Split(data, ":")
	return callback{name: parts[0], args: parts[1:]}
}

func (c callback) arg(i int) string {
	if i < len(c.args) {
		return c.args[i]
	}
	return ""
}

func (c callback) int64Arg(i int) (int64, error) {
	v, err := strconv.ParseInt(c.arg(i), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("callback %s arg %d: %w", c.name, i, err)
	}
	return v, nil
}

func (c callback) intArg(i int, fallback int) int {
	v, err := strconv.Atoi(c.arg(i))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func answerData(sessionID, questionID int64, l quiz.Label) string {
	return fmt.Sprintf("ans:%d:%d:%s", sessionID, questionID, l)
}

func mainMenuKeyboard() Keyboard {
	return Keyboard{
		row(btn(BtnLevel, cbLevel)),
		row(btn(BtnTraditional, "sec:"+sections.TraditionalLearning)),
		row(btn(BtnConversation, cbPractice)),
		row(btn(BtnTests, cbTests)),
		row(btn(BtnTips, "sec:"+sections.Tips)),
		row(btn(BtnStatistics, cbStats)),
		row(btn(BtnDesigns, "sec:"+sections.Designs)),
		row(btn(BtnRewards, cbRewards)),
		row(btn(BtnHelp, cbHelp)),
	}
}

func menuOnlyKeyboard() Keyboard {
	return Keyboard{row(btn(BtnMainMenu, cbMenu))}
}

func levelMenuKeyboard() Keyboard {
	return Keyboard{
		row(btn(BtnTestLevel, cbLevelNew)),
		row(btn(BtnTrackProgress, "hist:"+codeLevel+":1")),
		row(btn(BtnBack, cbBack)),
	}
}

func testsMenuKeyboard() Keyboard {
	return Keyboard{
		row(btn(BtnNewTest, cbTestsNew)),
		row(btn(BtnPreviousTests, "hist:"+codeTest+":1")),
		row(btn(BtnBack, cbBack)),
	}
}

// typeKeyboard offers verbal or quantitative. prefix is "ld:t" or "t:t".
func typeKeyboard(prefix, back string) Keyboard {
	return Keyboard{
		row(btn(BtnVerbal, prefix+":"+store.QuestionTypeVerbal)),
		row(btn(BtnQuantitative, prefix+":"+store.QuestionTypeQuantitative)),
		row(btn(BtnBack, back)),
	}
}

// scopeKeyboard offers the category kind. Subcategories only exist for
// quantitative questions.
func scopeKeyboard(questionType string) Keyboard {
	kb := Keyboard{row(btn(BtnMainCategory, "t:c:main:1"))}
	if questionType == store.QuestionTypeQuantitative {
		kb = append(kb, row(btn(BtnSubCategory, "t:c:sub:1")))
	}
	return append(kb, row(btn(BtnBack, cbTestsNew)))
}

func modeKeyboard(back string) Keyboard {
	return Keyboard{
		row(btn(BtnByCount, "m:"+string(quiz.ByCount))),
		row(btn(BtnByTime, "m:"+string(quiz.ByTime))),
		row(btn(BtnBack, back)),
	}
}

// pager returns the previous/next row for page of total pages, or nil when
// there is only one page. data formats a page number into callback data.
func pager(page, total int, data func(page int) string) []Button {
	var r []Button
	if page > 1 {
		r = append(r, btn(BtnPrev, data(page-1)))
	}
	if page < total {
		r = append(r, btn(BtnNext, data(page+1)))
	}
	return r
}

// questionKeyboard lays the choices out two per row, in display order.
func questionKeyboard(sessionID int64, p quiz.Presentation) Keyboard {
	kb := make(Keyboard, 0, 3)
	for i := 0; i < len(p.Choices); i += 2 {
		r := make([]Button, 0, 2)
		for _, c := range p.Choices[i : i+2] {
			r = append(r, btn(string(c.Label)+". "+c.Text, answerData(sessionID, p.Question.ID, c.Label)))
		}
		kb = append(kb, r)
	}
	return append(kb, row(btn(BtnEndQuiz, fmt.Sprintf("end:%d", sessionID))))
}

func formatKeyboard(sessionID int64) Keyboard {
	return Keyboard{row(
		btn(BtnPDF, fmt.Sprintf("art:%d:pdf", sessionID)),
		btn(BtnVideo, fmt.Sprintf("art:%d:video", sessionID)),
	)}
}

func assistanceKeyboard(sessionID int64) Keyboard {
	return Keyboard{row(
		btn(BtnYes, fmt.Sprintf("ai:%d:yes", sessionID)),
		btn(BtnNo, fmt.Sprintf("ai:%d:no", sessionID)),
	)}
}

func chatKeyboard() Keyboard {
	return Keyboard{row(btn(BtnEndChat, cbChatEnd))}
}

func practiceMenuKeyboard() Keyboard {
	return Keyboard{
		row(btn(BtnStartPractice, cbPractice+":start")),
		row(btn(BtnAskQuestions, cbPractice+":free")),
		row(btn(BtnBack, cbBack)),
	}
}

// practiceReviewKeyboard follows a solved practice question. ask is the
// label of the ask button, which changes once a question was asked.
func practiceReviewKeyboard(ask string) Keyboard {
	return Keyboard{
		row(btn(ask, cbPractice+":ask")),
		row(btn(BtnNextQuestion, cbPractice+":next")),
		row(btn(BtnMainMenu, cbMenu)),
	}
}

func rewardsKeyboard() Keyboard {
	return Keyboard{
		row(btn(BtnDailyGift, cbGift)),
		row(btn(BtnPremiumRewards, cbRewardList)),
		row(btn(BtnBack, cbBack)),
	}
}

func genderKeyboard() Keyboard {
	return Keyboard{row(btn(BtnMale, "gender:male"), btn(BtnFemale, "gender:female"))}
}

func detailsKeyboard(rec store.SessionRecord) Keyboard {
	return Keyboard{
		row(btn(BtnDownloadPDF, fmt.Sprintf("hist:f:%d:pdf", rec.ID))),
		row(btn(BtnDownloadVideo, fmt.Sprintf("hist:f:%d:video", rec.ID))),
		row(btn(BtnBack, "hist:"+kindCode(quiz.Kind(rec.Kind))+":1")),
	}
}
