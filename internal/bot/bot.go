// Package bot is the Telegram front end. It turns updates into quiz engine
// calls and renders the results as Arabic messages with inline keyboards.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/qudurat/qudurat/internal/artifact"
	"github.com/qudurat/qudurat/internal/motivation"
	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/rewards"
	"github.com/qudurat/qudurat/internal/sections"
	"github.com/qudurat/qudurat/internal/store"
	"github.com/qudurat/qudurat/internal/tutor"
)

// Page sizes of the paginated lists.
const (
	CategoriesPerPage = 10
	HistoryPerPage    = 5
)

// CountdownStep is the pause between the 3-2-1 countdown messages.
const CountdownStep = time.Second

// Deps are the collaborators a Bot needs. Motivation may be nil.
type Deps struct {
	Messenger  Messenger
	Engine     *quiz.Engine
	Users      store.UserRepo
	Categories store.CategoryRepo
	Questions  store.QuestionRepo
	Sessions   store.SessionRepo
	Answers    store.AnswerRepo
	Sections   *sections.Manager
	Gifts      *rewards.Gifts
	Targets    []rewards.Target
	Motivation *motivation.Tracker
	Feedback   *tutor.Feedback
	Assistant  *tutor.Assistant
	Coach      *tutor.Coach
	Artifacts  *artifact.Service

	// RequireSubscription closes every section to users without a
	// running subscription.
	RequireSubscription bool

	// PassagesDir holds the reading passages as <name>.txt.
	PassagesDir string
	Welcome     string
	Support     string
	Logger      *slog.Logger
}

// Message is an incoming text, command or shared contact.
type Message struct {
	UserID   int64
	ChatID   int64
	Name     string
	Username string
	Text     string
	// Command is the command without its slash, "" for plain text.
	Command string
	// Phone is set when the user shared their contact.
	Phone string
}

// Press is a tap on an inline button.
type Press struct {
	ID        string
	UserID    int64
	ChatID    int64
	MessageID int
	Name      string
	Username  string
	Data      string
}

// Bot routes updates for all users. Updates of one user are handled one at
// a time; different users proceed in parallel.
type Bot struct {
	Deps

	convs  *conversations
	now    func() time.Time
	sleep  func(time.Duration)
	locks  sync.Map // map[int64]*sync.Mutex
	timers sync.Map // map[int64]*time.Timer, keyed by session id
}

// New creates a Bot.
func New(d Deps) *Bot {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Bot{
		Deps:  d,
		convs: newConversations(),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Run long-polls Telegram until ctx is cancelled and waits for in-flight
// handlers before returning.
func (b *Bot) Run(ctx context.Context, api *tgbotapi.BotAPI) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()
	defer b.stopTimers()

	b.Logger.Info("bot polling started")
	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			b.Logger.Info("bot polling stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.HandleUpdate(context.WithoutCancel(ctx), upd)
			}()
		}
	}
}

// HandleUpdate dispatches one Telegram update.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		p := Press{ID: cq.ID, Data: cq.Data}
		if cq.From != nil {
			p.UserID, p.Name, p.Username = cq.From.ID, fullName(cq.From), cq.From.UserName
		}
		if cq.Message != nil && cq.Message.Chat != nil {
			p.ChatID, p.MessageID = cq.Message.Chat.ID, cq.Message.MessageID
		}
		b.OnPress(ctx, p)
	case upd.Message != nil && upd.Message.From != nil && upd.Message.Chat != nil:
		m := upd.Message
		msg := Message{
			UserID:   m.From.ID,
			ChatID:   m.Chat.ID,
			Name:     fullName(m.From),
			Username: m.From.UserName,
			Text:     m.Text,
		}
		if m.IsCommand() {
			msg.Command = m.Command()
		}
		if m.Contact != nil {
			msg.Phone = m.Contact.PhoneNumber
		}
		b.OnMessage(ctx, msg)
	}
}

func fullName(u *tgbotapi.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// OnMessage handles a text message, command or contact.
func (b *Bot) OnMessage(ctx context.Context, m Message) {
	unlock := b.lock(m.UserID)
	defer unlock()

	log := b.Logger.With("user_id", m.UserID, "command", m.Command)
	if err := b.ensureUser(ctx, m.UserID, m.Name, m.Username); err != nil {
		log.Error("failed to register user", "error", err)
		b.reply(ctx, m.ChatID, MsgGenericError)
		return
	}
	if err := b.routeMessage(ctx, m); err != nil {
		log.Error("message handler failed", "error", err)
		b.reply(ctx, m.ChatID, MsgGenericError)
	}
}

func (b *Bot) routeMessage(ctx context.Context, m Message) error {
	if m.Phone != "" {
		return b.savePhone(ctx, m)
	}
	switch m.Command {
	case "start":
		return b.start(ctx, m)
	case "main_menu":
		b.convs.reset(m.UserID)
		return b.showMenu(ctx, m.UserID, m.ChatID, 0, motivation.MainMenu)
	case "help_support":
		_, err := b.Messenger.Send(ctx, OutMessage{ChatID: m.ChatID, Text: b.Support, Keyboard: menuOnlyKeyboard()})
		return err
	case "cancel":
		return b.cancelActive(ctx, m.UserID, m.ChatID)
	case "personal_assistant_chat":
		return b.openChat(ctx, m.UserID, m.ChatID)
	case "clear_history":
		if err := b.Assistant.Reset(ctx, m.UserID); err != nil {
			return err
		}
		b.reply(ctx, m.ChatID, MsgHistoryCleared)
		return nil
	case "end_chat":
		return b.endChat(ctx, m.UserID, m.ChatID)
	case "":
	default:
		b.reply(ctx, m.ChatID, MsgUseMenu)
		return nil
	}

	switch cv := b.convs.get(m.UserID); cv.step {
	case stepAwaitSize:
		return b.startQuiz(ctx, m, cv)
	case stepChat:
		return b.chat(ctx, m)
	case stepPractice:
		return b.judge(ctx, m, cv)
	case stepPracticeAsk:
		return b.explain(ctx, m, cv)
	case stepPracticeReview:
		_, err := b.Messenger.Send(ctx, OutMessage{ChatID: m.ChatID, Text: MsgChooseOption, Keyboard: practiceReviewKeyboard(BtnAskAnswer)})
		return err
	default:
		b.reply(ctx, m.ChatID, MsgUseMenu)
		return nil
	}
}

// OnPress handles an inline button tap. Every press is acknowledged
// exactly once, either by the handler or here.
func (b *Bot) OnPress(ctx context.Context, p Press) {
	unlock := b.lock(p.UserID)
	defer unlock()

	log := b.Logger.With("user_id", p.UserID, "data", p.Data)
	if err := b.ensureUser(ctx, p.UserID, p.Name, p.Username); err != nil {
		log.Error("failed to register user", "error", err)
		b.ack(ctx, p, MsgGenericError, false)
		return
	}

	acked, err := b.routePress(ctx, p)
	if err != nil {
		log.Error("callback handler failed", "error", err)
		if !acked {
			b.ack(ctx, p, "", false)
		}
		b.reply(ctx, p.ChatID, MsgGenericError)
		return
	}
	if !acked {
		b.ack(ctx, p, "", false)
	}
}

// routePress runs the handler for p. It reports whether the handler
// already answered the callback.
func (b *Bot) routePress(ctx context.Context, p Press) (bool, error) {
	cb := parseCallback(p.Data)
	switch cb.name {
	case cbMenu:
		b.convs.reset(p.UserID)
		return false, b.showMenu(ctx, p.UserID, p.ChatID, p.MessageID, motivation.MainMenu)
	case cbBack:
		b.convs.reset(p.UserID)
		return false, b.showMenu(ctx, p.UserID, p.ChatID, p.MessageID, motivation.GoBack)
	case cbHelp:
		return false, b.edit(ctx, p, b.Support, menuOnlyKeyboard())
	case "sec":
		return false, b.openSection(ctx, p, strings.Join(cb.args, ":"))
	case "gender":
		return false, b.saveGender(ctx, p, cb.arg(0))
	case "ld":
		return false, b.levelFlow(ctx, p, cb)
	case "tests", "t", "m":
		return false, b.testFlow(ctx, p, cb)
	case "ans":
		return true, b.answer(ctx, p, cb)
	case "end":
		return true, b.cancelPress(ctx, p, cb)
	case "art":
		return true, b.chooseArtifact(ctx, p, cb)
	case "ai":
		return true, b.chooseAssistance(ctx, p, cb)
	case cbPractice:
		return false, b.practice(ctx, p, cb)
	case "chat":
		return false, b.endChat(ctx, p.UserID, p.ChatID)
	case "hist":
		return b.history(ctx, p, cb)
	case cbStats:
		return false, b.statistics(ctx, p)
	case cbRewards:
		return b.rewards(ctx, p, cb)
	default:
		b.Logger.Warn("unknown callback", "user_id", p.UserID, "data", p.Data)
		return false, nil
	}
}

func (b *Bot) lock(userID int64) func() {
	v, _ := b.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ensureUser registers users the first time they are seen.
func (b *Bot) ensureUser(ctx context.Context, id int64, name, username string) error {
	u, err := b.Users.Get(ctx, id)
	if err != nil {
		return err
	}
	if u != nil {
		return nil
	}
	return b.Users.Register(ctx, store.User{ID: id, Name: name, Username: username, CreatedAt: b.now()})
}

// reply sends text and logs failures. Used where nothing else can be done
// about a failed send.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, OutMessage{ChatID: chatID, Text: text})
}

func (b *Bot) send(ctx context.Context, m OutMessage) int {
	id, err := b.Messenger.Send(ctx, m)
	if err != nil {
		b.Logger.Warn("failed to send message", "chat_id", m.ChatID, "error", err)
	}
	return id
}

// edit replaces the pressed message, or sends a new one when there is
// nothing to edit or the edit fails.
func (b *Bot) edit(ctx context.Context, p Press, text string, kb Keyboard) error {
	m := OutMessage{ChatID: p.ChatID, Text: text, Keyboard: kb}
	if p.MessageID != 0 {
		err := b.Messenger.Edit(ctx, p.MessageID, m)
		if err == nil {
			return nil
		}
		b.Logger.Debug("edit failed, sending instead", "chat_id", p.ChatID, "message_id", p.MessageID, "error", err)
	}
	_, err := b.Messenger.Send(ctx, m)
	return err
}

func (b *Bot) ack(ctx context.Context, p Press, text string, alert bool) {
	if p.ID == "" {
		return
	}
	if err := b.Messenger.AnswerCallback(ctx, p.ID, text, alert); err != nil {
		b.Logger.Debug("failed to answer callback", "user_id", p.UserID, "error", err)
	}
}

func (b *Bot) stopTimers() {
	b.timers.Range(func(k, v any) bool {
		v.(*time.Timer).Stop()
		b.timers.Delete(k)
		return true
	})
}

// isGone reports whether err means the session is no longer live.
func isGone(err error) bool {
	return errors.Is(err, quiz.ErrUnknownSession) ||
		errors.Is(err, quiz.ErrSessionClosed) ||
		errors.Is(err, quiz.ErrInvalidTransition)
}
