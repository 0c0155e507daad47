package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/qudurat/qudurat/internal/motivation"
	"github.com/qudurat/qudurat/internal/rewards"
	"github.com/qudurat/qudurat/internal/sections"
	"github.com/qudurat/qudurat/internal/store"
)

// start refreshes the user's profile and walks new users through gender
// and phone before the menu.
func (b *Bot) start(ctx context.Context, m Message) error {
	if err := b.Users.Register(ctx, store.User{ID: m.UserID, Name: m.Name, Username: m.Username, CreatedAt: b.now()}); err != nil {
		return err
	}
	b.convs.reset(m.UserID)
	if b.Welcome != "" {
		b.reply(ctx, m.ChatID, strings.ReplaceAll(b.Welcome, motivation.NamePlaceholder, m.Name))
	}

	u, err := b.Users.Get(ctx, m.UserID)
	if err != nil {
		return err
	}
	if u.Gender == "" {
		_, err := b.Messenger.Send(ctx, OutMessage{ChatID: m.ChatID, Text: MsgChooseGender, Keyboard: genderKeyboard()})
		return err
	}
	if u.Phone == "" {
		return b.Messenger.RequestContact(ctx, m.ChatID, MsgAskPhone)
	}
	return b.showMenu(ctx, m.UserID, m.ChatID, 0, "")
}

func (b *Bot) saveGender(ctx context.Context, p Press, gender string) error {
	if gender != "male" && gender != "female" {
		return fmt.Errorf("unknown gender %q", gender)
	}
	if err := b.Users.SetGender(ctx, p.UserID, gender); err != nil {
		return err
	}
	u, err := b.Users.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	if u.Phone == "" {
		return b.Messenger.RequestContact(ctx, p.ChatID, MsgAskPhone)
	}
	return b.showMenu(ctx, p.UserID, p.ChatID, p.MessageID, "")
}

func (b *Bot) savePhone(ctx context.Context, m Message) error {
	if err := b.Users.SetPhone(ctx, m.UserID, m.Phone); err != nil {
		return err
	}
	b.reply(ctx, m.ChatID, MsgPhoneSaved)
	return b.showMenu(ctx, m.UserID, m.ChatID, 0, "")
}

// showMenu shows the main menu in place of messageID, or as a new message
// when messageID is 0. place counts towards the motivational messages.
func (b *Bot) showMenu(ctx context.Context, userID, chatID int64, messageID int, place string) error {
	p := Press{UserID: userID, ChatID: chatID, MessageID: messageID}
	if err := b.edit(ctx, p, MsgMainMenu, mainMenuKeyboard()); err != nil {
		return err
	}
	if place == "" || b.Motivation == nil {
		return nil
	}
	u, err := b.Users.Get(ctx, userID)
	if err != nil || u == nil {
		return err
	}
	if text, ok := b.Motivation.Click(userID, place, u.Gender, u.Name); ok {
		b.reply(ctx, chatID, text)
	}
	return nil
}

// checkSection reports whether path is open to the user. For a locked
// section, or a lapsed subscription when one is required, the reason is
// sent and false returned.
func (b *Bot) checkSection(ctx context.Context, userID, chatID int64, path string) (bool, error) {
	if b.RequireSubscription {
		u, err := b.Users.Get(ctx, userID)
		if err != nil {
			return false, err
		}
		if u == nil || !u.SubscriptionEnd.After(b.now()) {
			b.send(ctx, OutMessage{ChatID: chatID, Text: MsgSubscriptionRequired, Keyboard: menuOnlyKeyboard()})
			return false, nil
		}
	}

	st, err := b.Sections.Check(ctx, path)
	if err != nil {
		return false, err
	}
	if !st.Available {
		b.reply(ctx, chatID, st.Message)
	}
	return st.Available, nil
}

// openSection handles the menu entries that have no content of their own.
func (b *Bot) openSection(ctx context.Context, p Press, path string) error {
	ok, err := b.checkSection(ctx, p.UserID, p.ChatID, path)
	if err != nil || !ok {
		return err
	}
	b.reply(ctx, p.ChatID, MsgSectionSoon)
	return nil
}

func (b *Bot) statistics(ctx context.Context, p Press) error {
	ok, err := b.checkSection(ctx, p.UserID, p.ChatID, sections.Statistics)
	if err != nil || !ok {
		return err
	}
	u, err := b.Users.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	s := rewards.StatsFor(*u)
	var sb strings.Builder
	sb.WriteString("📊 إحصائياتك:\n")
	fmt.Fprintf(&sb, "🏅 نقاطك: %d\n", s.Points)
	fmt.Fprintf(&sb, "📈 نسبتك المتوقعة: %d%%\n", s.Percentage)
	fmt.Fprintf(&sb, "⏳ وقت الدراسة: %.2f ساعة\n", s.StudyHours)
	fmt.Fprintf(&sb, "✍️ عدد الأسئلة التي أجبت عليها: %d", s.Answered)
	return b.edit(ctx, p, sb.String(), Keyboard{row(btn(BtnBack, cbBack))})
}

// rewards handles the rewards sub-menu, the reward list and the daily gift.
func (b *Bot) rewards(ctx context.Context, p Press, cb callback) (bool, error) {
	if ok, err := b.checkSection(ctx, p.UserID, p.ChatID, sections.Rewards); err != nil || !ok {
		return false, err
	}
	switch cb.arg(0) {
	case "":
		return false, b.edit(ctx, p, MsgRewardsMenu, rewardsKeyboard())
	case "stats":
		u, err := b.Users.Get(ctx, p.UserID)
		if err != nil {
			return false, err
		}
		b.reply(ctx, p.ChatID, rewards.Render(rewards.StatsFor(*u), b.Targets))
		return false, nil
	case "gift":
		return true, b.dailyGift(ctx, p)
	}
	return false, nil
}

func (b *Bot) dailyGift(ctx context.Context, p Press) error {
	gift, claimed, err := b.Gifts.Claim(ctx, p.UserID)
	if err == nil && !claimed {
		b.ack(ctx, p, MsgGiftTaken, true)
		return nil
	}
	b.ack(ctx, p, "", false)
	if err != nil {
		b.Logger.Warn("daily gift failed", "user_id", p.UserID, "error", err)
		b.reply(ctx, p.ChatID, MsgGiftFailed)
		return nil
	}
	if gift.Empty() {
		b.reply(ctx, p.ChatID, MsgGiftEmpty)
		return nil
	}

	b.reply(ctx, p.ChatID, MsgGiftPreparing)
	for _, photo := range gift.Photos {
		b.sendFile(ctx, p.ChatID, FilePhoto, photo, "")
	}
	for _, video := range gift.Videos {
		b.sendFile(ctx, p.ChatID, FileVideo, video, "")
	}
	if gift.Message != "" {
		b.reply(ctx, p.ChatID, gift.Message)
	}
	b.reply(ctx, p.ChatID, MsgGiftShown)
	return nil
}

func (b *Bot) sendFile(ctx context.Context, chatID int64, kind FileKind, path, caption string) bool {
	if err := b.Messenger.SendFile(ctx, chatID, kind, path, caption); err != nil {
		b.Logger.Warn("failed to send file", "chat_id", chatID, "path", path, "error", err)
		return false
	}
	return true
}
