package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qudurat/qudurat/internal/artifact"
	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/sections"
	"github.com/qudurat/qudurat/internal/store"
	"github.com/qudurat/qudurat/internal/tutor"
)

// timerSlack pushes the deadline timer past the deadline so the engine
// sees it as expired.
const timerSlack = 500 * time.Millisecond

// alertQuestionRunes bounds the question excerpt in answer alerts.
const alertQuestionRunes = 100

func validType(t string) bool {
	return t == store.QuestionTypeVerbal || t == store.QuestionTypeQuantitative
}

// levelFlow handles the level determination menus up to the sizing choice.
func (b *Bot) levelFlow(ctx context.Context, p Press, cb callback) error {
	switch cb.arg(0) {
	case "":
		if ok, err := b.checkSection(ctx, p.UserID, p.ChatID, sections.LevelDetermination); err != nil || !ok {
			return err
		}
		return b.edit(ctx, p, MsgLevelMenu, levelMenuKeyboard())
	case "new":
		return b.edit(ctx, p, MsgChooseType, typeKeyboard("ld:t", cbLevel))
	case "t":
		qt := cb.arg(1)
		if !validType(qt) {
			return fmt.Errorf("unknown question type %q", qt)
		}
		if ok, err := b.checkSection(ctx, p.UserID, p.ChatID, sections.LevelDetermination+":"+qt); err != nil || !ok {
			return err
		}
		b.convs.update(p.UserID, func(cv *conversation) {
			*cv = conversation{kind: quiz.KindLevelDetermination, questionType: qt, sessionID: cv.sessionID}
		})
		return b.edit(ctx, p, MsgChooseMode, modeKeyboard(cbLevelNew))
	}
	return nil
}

// testFlow handles the test menus: type, category scope, category and
// sizing mode.
func (b *Bot) testFlow(ctx context.Context, p Press, cb callback) error {
	if cb.name == cbTests {
		if ok, err := b.checkSection(ctx, p.UserID, p.ChatID, sections.Tests); err != nil || !ok {
			return err
		}
		return b.edit(ctx, p, MsgTestsMenu, testsMenuKeyboard())
	}
	if cb.name == "m" {
		return b.chooseMode(ctx, p, quiz.SizingMode(cb.arg(0)))
	}

	switch cb.arg(0) {
	case "new":
		return b.edit(ctx, p, MsgChooseType, typeKeyboard("t:t", cbTests))
	case "t":
		qt := cb.arg(1)
		if !validType(qt) {
			return fmt.Errorf("unknown question type %q", qt)
		}
		if ok, err := b.checkSection(ctx, p.UserID, p.ChatID, sections.Tests+":"+qt); err != nil || !ok {
			return err
		}
		b.convs.update(p.UserID, func(cv *conversation) {
			*cv = conversation{kind: quiz.KindTest, questionType: qt, sessionID: cv.sessionID}
		})
		return b.edit(ctx, p, MsgChooseScope, scopeKeyboard(qt))
	case "c":
		return b.listCategories(ctx, p, cb.arg(1), cb.intArg(2, 1))
	case "cat":
		id, err := cb.int64Arg(2)
		if err != nil {
			return err
		}
		kind := cb.arg(1)
		b.convs.update(p.UserID, func(cv *conversation) {
			cv.scope = quiz.Scope{Kind: kind, ID: id}
		})
		return b.edit(ctx, p, MsgChooseMode, modeKeyboard("t:c:"+kind+":1"))
	}
	return nil
}

func (b *Bot) listCategories(ctx context.Context, p Press, kind string, page int) error {
	cv := b.convs.get(p.UserID)
	if cv.kind != quiz.KindTest {
		return b.showMenu(ctx, p.UserID, p.ChatID, p.MessageID, "")
	}

	pg := store.Page{Number: page, Size: CategoriesPerPage}
	var (
		cats  []store.Category
		total int
		err   error
		title string
	)
	switch kind {
	case "main":
		cats, total, err = b.Categories.ListMain(ctx, cv.questionType, pg)
		title = MsgChooseMain
	case "sub":
		cats, total, err = b.Categories.ListSub(ctx, pg)
		title = MsgChooseSub
	default:
		return fmt.Errorf("unknown category kind %q", kind)
	}
	if err != nil {
		return err
	}

	back := row(btn(BtnBack, "t:t:"+cv.questionType))
	if total == 0 {
		return b.edit(ctx, p, MsgNoCategories, Keyboard{back})
	}
	pages := store.TotalPages(total, CategoriesPerPage)
	kb := make(Keyboard, 0, len(cats)+2)
	for _, c := range cats {
		kb = append(kb, row(btn(c.Name, fmt.Sprintf("t:cat:%s:%d", kind, c.ID))))
	}
	if nav := pager(page, pages, func(n int) string { return fmt.Sprintf("t:c:%s:%d", kind, n) }); nav != nil {
		kb = append(kb, nav)
	}
	kb = append(kb, back)
	return b.edit(ctx, p, fmt.Sprintf(title, page, pages), kb)
}

func (b *Bot) chooseMode(ctx context.Context, p Press, mode quiz.SizingMode) error {
	cv := b.convs.get(p.UserID)
	if cv.kind == "" {
		return b.showMenu(ctx, p.UserID, p.ChatID, p.MessageID, "")
	}
	prompt := MsgAskCount
	switch mode {
	case quiz.ByCount:
	case quiz.ByTime:
		prompt = MsgAskMinutes
	default:
		return fmt.Errorf("unknown sizing mode %q", mode)
	}
	b.convs.update(p.UserID, func(cv *conversation) {
		cv.mode = mode
		cv.step = stepAwaitSize
	})
	return b.edit(ctx, p, prompt, nil)
}

// startQuiz starts a session from the typed count or minutes. Invalid
// input keeps the user at the prompt.
func (b *Bot) startQuiz(ctx context.Context, m Message, cv conversation) error {
	sess, err := b.Engine.Start(ctx, quiz.StartRequest{
		UserID:       m.UserID,
		ChatID:       m.ChatID,
		Kind:         cv.kind,
		QuestionType: cv.questionType,
		Scope:        cv.scope,
		Mode:         cv.mode,
		Input:        m.Text,
	})
	var verr *quiz.ValidationError
	switch {
	case errors.As(err, &verr):
		b.reply(ctx, m.ChatID, validationText(verr))
		return nil
	case errors.Is(err, quiz.ErrNoQuestions):
		b.convs.reset(m.UserID)
		b.send(ctx, OutMessage{ChatID: m.ChatID, Text: MsgNoQuestions, Keyboard: menuOnlyKeyboard()})
		return nil
	case err != nil:
		b.convs.reset(m.UserID)
		return err
	}

	b.convs.update(m.UserID, func(cv *conversation) {
		*cv = conversation{sessionID: sess.ID}
	})
	intro := MsgTestIntro
	if sess.Kind == quiz.KindLevelDetermination {
		intro = MsgLevelIntro
	}
	b.reply(ctx, m.ChatID, intro)
	for i := 3; i > 0; i-- {
		b.sleep(CountdownStep)
		b.reply(ctx, m.ChatID, fmt.Sprintf("%d...", i))
	}

	b.schedule(sess)
	step, err := b.Engine.Present(ctx, sess.ID)
	if err != nil {
		return err
	}
	return b.show(ctx, sess.ID, m.ChatID, 0, step)
}

func validationText(e *quiz.ValidationError) string {
	switch {
	case errors.Is(e, quiz.ErrNotNumeric):
		return MsgNotANumber
	case e.Field == "minutes":
		return MsgBadMinutes
	default:
		return MsgBadCountRange
	}
}

// show renders what an engine step asks for.
func (b *Bot) show(ctx context.Context, sessionID, chatID int64, messageID int, step quiz.Step) error {
	switch {
	case step.Presentation != nil:
		return b.showQuestion(ctx, sessionID, chatID, messageID, *step.Presentation)
	case step.Report != nil:
		return b.finish(ctx, chatID, messageID, *step.Report)
	}
	return nil
}

// showQuestion edits the session's question message in place. The first
// question, a question with an image, or a failed edit sends a new message
// and records it as the one to edit from now on.
func (b *Bot) showQuestion(ctx context.Context, sessionID, chatID int64, messageID int, p quiz.Presentation) error {
	out := OutMessage{ChatID: chatID, Text: b.questionText(p), Keyboard: questionKeyboard(sessionID, p)}

	fresh := p.First || messageID == 0
	if img := p.Question.ImagePath; img != "" && b.sendFile(ctx, chatID, FilePhoto, img, "") {
		fresh = true
	}
	if !fresh {
		err := b.Messenger.Edit(ctx, messageID, out)
		if err == nil {
			return nil
		}
		b.Logger.Warn("failed to edit question message", "session_id", sessionID, "message_id", messageID, "error", err)
	}

	id, err := b.Messenger.Send(ctx, out)
	if err != nil {
		return err
	}
	return b.Engine.SetMessageID(ctx, sessionID, id)
}

func (b *Bot) questionText(p quiz.Presentation) string {
	var sb strings.Builder
	if p.Question.HasPassage() {
		if text := b.passage(p.Question.Passage); text != "" {
			sb.WriteString(MsgPassagePrefix)
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	}
	fmt.Fprintf(&sb, "(%d/%d)\n%s", p.Number, p.Total, p.Question.Text)
	return sb.String()
}

// passage reads PassagesDir/<name>.txt. A missing passage is logged and
// the question is shown without it.
func (b *Bot) passage(name string) string {
	text, err := quiz.ReadPassage(b.PassagesDir, name)
	if err != nil {
		b.Logger.Warn("passage unavailable", "passage", name, "error", err)
	}
	return text
}

func (b *Bot) answer(ctx context.Context, p Press, cb callback) error {
	sid, err := cb.int64Arg(0)
	if err != nil {
		b.ack(ctx, p, MsgGenericError, false)
		return nil
	}
	qid, err := cb.int64Arg(1)
	if err != nil {
		b.ack(ctx, p, MsgGenericError, false)
		return nil
	}
	if !b.owns(ctx, p, sid) {
		return nil
	}

	step, err := b.Engine.Submit(ctx, sid, qid, cb.arg(2))
	switch {
	case errors.Is(err, quiz.ErrStaleAnswer):
		b.ack(ctx, p, MsgStaleAnswer, false)
		return nil
	case isGone(err):
		b.ack(ctx, p, MsgQuizOver, false)
		return nil
	case errors.Is(err, quiz.ErrInvalidLabel):
		b.ack(ctx, p, MsgGenericError, false)
		return nil
	case err != nil:
		b.ack(ctx, p, "", false)
		return err
	}

	if o := step.Outcome; o != nil {
		b.ack(ctx, p, outcomeText(*o), true)
	} else {
		b.ack(ctx, p, "", false)
	}
	return b.show(ctx, sid, p.ChatID, p.MessageID, step)
}

func outcomeText(o quiz.Outcome) string {
	q := truncate(o.Question.Text, alertQuestionRunes)
	if o.Correct {
		return fmt.Sprintf(MsgCorrect, q, o.CorrectText)
	}
	return fmt.Sprintf(MsgWrong, q, o.SubmittedText, o.CorrectText)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// finish shows the report, the level feedback for level determination,
// and the artifact offer.
func (b *Bot) finish(ctx context.Context, chatID int64, messageID int, r quiz.Report) error {
	b.cancelTimer(r.SessionID)
	if r.TimedOut {
		b.reply(ctx, chatID, quiz.TimeUpMessage)
	}

	summary := OutMessage{ChatID: chatID, Text: r.Summary(), Markdown: true}
	if messageID == 0 || b.Messenger.Edit(ctx, messageID, summary) != nil {
		b.send(ctx, summary)
	}

	if r.Kind == quiz.KindLevelDetermination {
		b.reply(ctx, chatID, MsgAnalyzing)
		text := tutor.FeedbackFailed
		in, err := b.feedbackInput(ctx, r)
		if err != nil {
			b.Logger.Warn("failed to load answers for feedback", "session_id", r.SessionID, "error", err)
		} else {
			text = b.Feedback.Text(ctx, in)
		}
		b.reply(ctx, chatID, text)
	}

	_, err := b.Messenger.Send(ctx, OutMessage{ChatID: chatID, Text: MsgChooseFormat, Keyboard: formatKeyboard(r.SessionID)})
	return err
}

func (b *Bot) feedbackInput(ctx context.Context, r quiz.Report) (tutor.FeedbackInput, error) {
	return tutor.LoadInput(ctx, b.Answers, b.Categories, r.UserID, r.SessionID, r.Score, r.Total, r.Elapsed)
}

// schedule arms the deadline timer of s, replacing any earlier one.
func (b *Bot) schedule(s *quiz.Session) {
	d := s.Remaining(b.now()) + timerSlack
	id, userID := s.ID, s.UserID
	t := time.AfterFunc(d, func() { b.expire(id, userID) })
	if old, loaded := b.timers.Swap(id, t); loaded {
		old.(*time.Timer).Stop()
	}
}

func (b *Bot) cancelTimer(sessionID int64) {
	if v, ok := b.timers.LoadAndDelete(sessionID); ok {
		v.(*time.Timer).Stop()
	}
}

// expire finalizes a session whose deadline passed without an answer.
func (b *Bot) expire(sessionID, userID int64) {
	unlock := b.lock(userID)
	defer unlock()

	ctx := context.Background()
	log := b.Logger.With("session_id", sessionID, "user_id", userID)
	b.timers.Delete(sessionID)

	s, err := b.Engine.Get(ctx, sessionID)
	if err != nil {
		if !isGone(err) {
			log.Warn("deadline check failed", "error", err)
		}
		return
	}
	if s.State != quiz.StatePresenting {
		return
	}
	step, err := b.Engine.Present(ctx, sessionID)
	if err != nil {
		if !isGone(err) {
			log.Warn("deadline finalize failed", "error", err)
		}
		return
	}
	if step.Presentation != nil {
		b.schedule(s)
		return
	}
	if err := b.show(ctx, sessionID, s.ChatID, s.MessageID, step); err != nil {
		log.Warn("failed to show timed out report", "error", err)
	}
}

// owns reports whether the session behind a pressed button belongs to the
// presser. Presses on someone else's session are answered with a toast.
// An unknown session counts as owned so the handler reports it as over.
func (b *Bot) owns(ctx context.Context, p Press, sessionID int64) bool {
	s, err := b.Engine.Get(ctx, sessionID)
	if err != nil || s.UserID == p.UserID {
		return true
	}
	b.Logger.Warn("press on another user's session", "user_id", p.UserID, "session_id", sessionID, "owner_id", s.UserID)
	b.ack(ctx, p, MsgNotYourQuiz, true)
	return false
}

// cancelPress handles the end button under a question.
func (b *Bot) cancelPress(ctx context.Context, p Press, cb callback) error {
	sid, err := cb.int64Arg(0)
	if err != nil {
		b.ack(ctx, p, MsgGenericError, false)
		return nil
	}
	if !b.owns(ctx, p, sid) {
		return nil
	}
	b.ack(ctx, p, "", false)
	if err := b.Engine.Cancel(ctx, sid); err != nil {
		if isGone(err) {
			return b.edit(ctx, p, MsgQuizOver, menuOnlyKeyboard())
		}
		return err
	}
	b.cancelTimer(sid)
	b.convs.update(p.UserID, func(cv *conversation) { *cv = conversation{} })
	return b.edit(ctx, p, MsgQuizCancelled, menuOnlyKeyboard())
}

// cancelActive handles /cancel: the running session, if any, is cancelled
// and any setup in progress is dropped.
func (b *Bot) cancelActive(ctx context.Context, userID, chatID int64) error {
	if sid := b.convs.get(userID).sessionID; sid != 0 {
		if err := b.Engine.Cancel(ctx, sid); err != nil && !isGone(err) {
			return err
		}
		b.cancelTimer(sid)
	}
	b.convs.update(userID, func(cv *conversation) { *cv = conversation{} })
	_, err := b.Messenger.Send(ctx, OutMessage{ChatID: chatID, Text: MsgQuizCancelled, Keyboard: menuOnlyKeyboard()})
	return err
}

// chooseArtifact renders the picked format, sends it, then offers the
// assistant.
func (b *Bot) chooseArtifact(ctx context.Context, p Press, cb callback) error {
	sid, err := cb.int64Arg(0)
	if err != nil {
		b.ack(ctx, p, MsgGenericError, false)
		return nil
	}
	format := cb.arg(1)
	if format != artifact.FormatPDF && format != artifact.FormatVideo {
		b.ack(ctx, p, MsgGenericError, false)
		return nil
	}
	if !b.owns(ctx, p, sid) {
		return nil
	}
	if err := b.Engine.ChooseArtifact(ctx, sid); err != nil {
		if isGone(err) {
			b.ack(ctx, p, MsgFormatChosen, false)
			return nil
		}
		b.ack(ctx, p, "", false)
		return err
	}
	b.ack(ctx, p, "", false)

	b.deliver(ctx, p, sid, format)
	_, err = b.Messenger.Send(ctx, OutMessage{ChatID: p.ChatID, Text: MsgAIOffer, Keyboard: assistanceKeyboard(sid)})
	return err
}

// deliver replaces the pressed message with a progress note, then sends
// the artifact or an apology. Rendering failures are never fatal.
func (b *Bot) deliver(ctx context.Context, p Press, sessionID int64, format string) {
	note, kind := MsgGeneratingPDF, FileDocument
	if format == artifact.FormatVideo {
		note, kind = MsgGeneratingVideo, FileVideo
	}
	if err := b.edit(ctx, p, note, nil); err != nil {
		b.Logger.Debug("failed to show progress note", "session_id", sessionID, "error", err)
	}

	path, err := b.Artifacts.Ensure(ctx, sessionID, format)
	if err != nil {
		b.Logger.Warn("artifact unavailable", "session_id", sessionID, "format", format, "error", err)
	}
	if path == "" || !b.sendFile(ctx, p.ChatID, kind, path, "") {
		b.reply(ctx, p.ChatID, MsgArtifactFailed)
	}
}

func (b *Bot) chooseAssistance(ctx context.Context, p Press, cb callback) error {
	sid, err := cb.int64Arg(0)
	if err != nil {
		b.ack(ctx, p, MsgGenericError, false)
		return nil
	}
	if !b.owns(ctx, p, sid) {
		return nil
	}
	want := cb.arg(1) == "yes"
	if err := b.Engine.ChooseAssistance(ctx, sid, want); err != nil {
		if isGone(err) {
			b.ack(ctx, p, MsgQuizOver, false)
			return nil
		}
		b.ack(ctx, p, "", false)
		return err
	}
	b.ack(ctx, p, "", false)

	if !want {
		b.convs.update(p.UserID, func(cv *conversation) { *cv = conversation{} })
		return b.edit(ctx, p, MsgAINo, menuOnlyKeyboard())
	}
	b.convs.update(p.UserID, func(cv *conversation) {
		*cv = conversation{step: stepChat, sessionID: sid}
	})
	return b.edit(ctx, p, MsgAIYes, chatKeyboard())
}

// openChat starts an assistant chat that is not tied to a session.
func (b *Bot) openChat(ctx context.Context, userID, chatID int64) error {
	b.convs.update(userID, func(cv *conversation) { *cv = conversation{step: stepChat} })
	_, err := b.Messenger.Send(ctx, OutMessage{ChatID: chatID, Text: MsgAssistantHello, Keyboard: chatKeyboard()})
	return err
}

func (b *Bot) chat(ctx context.Context, m Message) error {
	reply, err := b.Assistant.Reply(ctx, m.UserID, m.Text)
	if err != nil {
		b.Logger.Warn("assistant reply failed", "user_id", m.UserID, "error", err)
		b.reply(ctx, m.ChatID, MsgChatError)
		return nil
	}
	_, err = b.Messenger.Send(ctx, OutMessage{ChatID: m.ChatID, Text: reply, Keyboard: chatKeyboard()})
	return err
}

// endChat leaves the assistant chat and closes its session.
func (b *Bot) endChat(ctx context.Context, userID, chatID int64) error {
	cv := b.convs.get(userID)
	if cv.practice != nil {
		b.convs.update(userID, func(cv *conversation) { *cv = conversation{sessionID: cv.sessionID} })
		_, err := b.Messenger.Send(ctx, OutMessage{ChatID: chatID, Text: MsgPracticeEnded, Keyboard: menuOnlyKeyboard()})
		return err
	}
	if cv.step == stepChat && cv.sessionID != 0 {
		if err := b.Engine.EndChat(ctx, cv.sessionID); err != nil && !isGone(err) {
			b.Logger.Warn("failed to close chat session", "session_id", cv.sessionID, "error", err)
		}
	}
	b.convs.update(userID, func(cv *conversation) { *cv = conversation{} })
	_, err := b.Messenger.Send(ctx, OutMessage{ChatID: chatID, Text: MsgChatEnded, Keyboard: menuOnlyKeyboard()})
	return err
}
