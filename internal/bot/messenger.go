package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// OutMessage is a text message to send or an edit to apply.
type OutMessage struct {
	ChatID   int64
	Text     string
	Keyboard Keyboard
	Markdown bool
}

// FileKind selects how a file is uploaded.
type FileKind int

const (
	FileDocument FileKind = iota
	FilePhoto
	FileVideo
)

// Messenger is everything the bot sends to Telegram.
type Messenger interface {
	// Send posts a message and returns its id.
	Send(ctx context.Context, m OutMessage) (int, error)
	// Edit replaces the text and keyboard of messageID.
	Edit(ctx context.Context, messageID int, m OutMessage) error
	// AnswerCallback acknowledges a button tap. A non-empty text is shown
	// as a toast, or as a dialog when alert is set.
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	SendFile(ctx context.Context, chatID int64, kind FileKind, path, caption string) error
	// RequestContact shows a one-time keyboard asking for the phone number.
	RequestContact(ctx context.Context, chatID int64, text string) error
}

// TelegramMessenger implements Messenger over the Bot API.
type TelegramMessenger struct {
	api *tgbotapi.BotAPI
}

// NewBotAPI connects with token. The library's own logging goes through
// logger at debug level.
func NewBotAPI(token string, debug bool, logger *slog.Logger) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug)); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = debug
	logger.Info("authorized on telegram", "bot", api.Self.UserName)
	return api, nil
}

// NewTelegramMessenger wraps api.
func NewTelegramMessenger(api *tgbotapi.BotAPI) *TelegramMessenger {
	return &TelegramMessenger{api: api}
}

func (t *TelegramMessenger) Send(_ context.Context, m OutMessage) (int, error) {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	if m.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if len(m.Keyboard) > 0 {
		msg.ReplyMarkup = inlineMarkup(m.Keyboard)
	}
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.MessageID, nil
}

func (t *TelegramMessenger) Edit(_ context.Context, messageID int, m OutMessage) error {
	edit := tgbotapi.NewEditMessageText(m.ChatID, messageID, m.Text)
	if m.Markdown {
		edit.ParseMode = tgbotapi.ModeMarkdown
	}
	if len(m.Keyboard) > 0 {
		mk := inlineMarkup(m.Keyboard)
		edit.ReplyMarkup = &mk
	}
	if _, err := t.api.Request(edit); err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

func (t *TelegramMessenger) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	if _, err := t.api.Request(cb); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

func (t *TelegramMessenger) SendFile(_ context.Context, chatID int64, kind FileKind, path, caption string) error {
	file := tgbotapi.FilePath(path)
	var c tgbotapi.Chattable
	switch kind {
	case FilePhoto:
		p := tgbotapi.NewPhoto(chatID, file)
		p.Caption = caption
		c = p
	case FileVideo:
		v := tgbotapi.NewVideo(chatID, file)
		v.Caption = caption
		c = v
	default:
		d := tgbotapi.NewDocument(chatID, file)
		d.Caption = caption
		c = d
	}
	if _, err := t.api.Send(c); err != nil {
		return fmt.Errorf("send file %s: %w", path, err)
	}
	return nil
}

func (t *TelegramMessenger) RequestContact(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(BtnSharePhone)),
	)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("request contact: %w", err)
	}
	return nil
}

func inlineMarkup(kb Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, r := range kb {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
