package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qudurat/qudurat/internal/llm"
	"github.com/qudurat/qudurat/internal/store"
)

// Assistant is the free-form tutoring chat. Conversations are persisted per
// user so a later session resumes with context.
type Assistant struct {
	provider llm.Provider
	chats    store.ChatRepo
	cfg      Config
	logger   *slog.Logger
}

// NewAssistant creates an Assistant.
func NewAssistant(provider llm.Provider, chats store.ChatRepo, cfg Config, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}
	return &Assistant{provider: provider, chats: chats, cfg: cfg, logger: logger}
}

// Reply sends message with the user's recent history and stores both turns.
// The user turn is stored only once the model answered.
func (a *Assistant) Reply(ctx context.Context, userID int64, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("empty message")
	}

	history, err := a.chats.Recent(ctx, userID, a.cfg.HistoryLimit)
	if err != nil {
		return "", fmt.Errorf("load chat history: %w", err)
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	for _, h := range history {
		role := llm.RoleUser
		if llm.Role(h.Role) == llm.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: h.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})

	ctx = llm.WithPurpose(ctx, llm.PurposeAssistantChat)
	resp, err := a.provider.Generate(ctx, llm.Request{
		System:      AssistantSystemPrompt,
		Messages:    msgs,
		MaxTokens:   a.cfg.ChatMaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("assistant reply: %w", err)
	}
	reply := resp.Text()

	for _, m := range []store.ChatMessage{
		{UserID: userID, Role: string(llm.RoleUser), Content: message},
		{UserID: userID, Role: string(llm.RoleAssistant), Content: reply},
	} {
		if err := a.chats.Append(ctx, m); err != nil {
			a.logger.Warn("chat turn not saved", "user_id", userID, "role", m.Role, "error", err)
		}
	}
	return reply, nil
}

// Reset forgets the user's conversation.
func (a *Assistant) Reset(ctx context.Context, userID int64) error {
	if err := a.chats.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}
