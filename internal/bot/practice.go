package bot

import (
	"context"
	"fmt"

	"github.com/qudurat/qudurat/internal/sections"
	"github.com/qudurat/qudurat/internal/store"
	"github.com/qudurat/qudurat/internal/tutor"
)

// practice handles the conversation learning menu. A random question is
// answered in free text and judged by the coach until it is right, then
// the user may ask about the answer or move on.
func (b *Bot) practice(ctx context.Context, p Press, cb callback) error {
	switch cb.arg(0) {
	case "":
		if ok, err := b.checkSection(ctx, p.UserID, p.ChatID, sections.ConversationLearning); err != nil || !ok {
			return err
		}
		b.convs.reset(p.UserID)
		return b.edit(ctx, p, MsgPracticeMenu, practiceMenuKeyboard())
	case "start", "next":
		return b.nextPractice(ctx, p.UserID, p.ChatID)
	case "ask":
		cv := b.convs.get(p.UserID)
		if cv.practice == nil {
			return b.showMenu(ctx, p.UserID, p.ChatID, p.MessageID, "")
		}
		b.convs.update(p.UserID, func(cv *conversation) { cv.step = stepPracticeAsk })
		_, err := b.Messenger.Send(ctx, OutMessage{ChatID: p.ChatID, Text: MsgPracticeAsk, Keyboard: chatKeyboard()})
		return err
	case "free":
		return b.openChat(ctx, p.UserID, p.ChatID)
	}
	return nil
}

func (b *Bot) nextPractice(ctx context.Context, userID, chatID int64) error {
	qs, err := b.Questions.Random(ctx, store.QuestionFilter{}, 1)
	if err != nil {
		return err
	}
	if len(qs) == 0 {
		b.convs.reset(userID)
		_, err := b.Messenger.Send(ctx, OutMessage{ChatID: chatID, Text: MsgNoPracticeQuestions, Keyboard: menuOnlyKeyboard()})
		return err
	}
	q := qs[0]
	b.convs.update(userID, func(cv *conversation) {
		*cv = conversation{step: stepPractice, practice: &q, sessionID: cv.sessionID}
	})

	if q.ImagePath != "" {
		b.sendFile(ctx, chatID, FilePhoto, q.ImagePath, "")
	}
	_, err = b.Messenger.Send(ctx, OutMessage{
		ChatID:   chatID,
		Text:     MsgPracticeQuestion + "\n\n" + tutor.FormatQuestion(q),
		Keyboard: chatKeyboard(),
	})
	return err
}

// judge sends a free-text answer to the coach. A wrong answer gets a hint
// and keeps the question open.
func (b *Bot) judge(ctx context.Context, m Message, cv conversation) error {
	b.reply(ctx, m.ChatID, MsgThinking)
	v, err := b.Coach.Judge(ctx, *cv.practice, m.Text)
	if err != nil {
		b.Logger.Warn("practice judge failed", "user_id", m.UserID, "question_id", cv.practice.ID, "error", err)
		b.reply(ctx, m.ChatID, MsgChatError)
		return nil
	}

	if !v.Correct {
		text := v.Text
		if v.Hint != "" {
			text = fmt.Sprintf(MsgPracticeHint, v.Text, v.Hint)
		}
		_, err := b.Messenger.Send(ctx, OutMessage{ChatID: m.ChatID, Text: text, Keyboard: chatKeyboard()})
		return err
	}

	b.convs.update(m.UserID, func(cv *conversation) { cv.step = stepPracticeReview })
	b.reply(ctx, m.ChatID, v.Text)
	_, err = b.Messenger.Send(ctx, OutMessage{ChatID: m.ChatID, Text: MsgPracticeReview, Keyboard: practiceReviewKeyboard(BtnAskAnswer)})
	return err
}

// explain answers a question about a solved practice question.
func (b *Bot) explain(ctx context.Context, m Message, cv conversation) error {
	b.reply(ctx, m.ChatID, MsgThinking)
	text, err := b.Coach.Explain(ctx, *cv.practice, m.Text)
	if err != nil {
		b.Logger.Warn("practice explain failed", "user_id", m.UserID, "question_id", cv.practice.ID, "error", err)
		b.reply(ctx, m.ChatID, MsgChatError)
		return nil
	}
	b.convs.update(m.UserID, func(cv *conversation) { cv.step = stepPracticeReview })
	_, err = b.Messenger.Send(ctx, OutMessage{ChatID: m.ChatID, Text: text, Keyboard: practiceReviewKeyboard(BtnAskMore)})
	return err
}
