// Package tutor talks to the language model on behalf of the bot: level
// feedback after a placement quiz and the follow-up assistant chat.
package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/qudurat/qudurat/internal/llm"
)

// FeedbackFailed is shown when the analysis could not be produced.
const FeedbackFailed = "حدث خطأ أثناء الحصول على تحليل الأداء. ⚠️"

// Config tunes the model requests.
type Config struct {
	FeedbackMaxTokens int
	ChatMaxTokens     int
	Temperature       float64
	HistoryLimit      int
}

// DefaultConfig returns the default request settings.
func DefaultConfig() Config {
	return Config{
		FeedbackMaxTokens: 1024,
		ChatMaxTokens:     800,
		Temperature:       0.4,
		HistoryLimit:      20,
	}
}

// Feedback produces placement-quiz analyses.
type Feedback struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
}

// NewFeedback creates a Feedback over provider.
func NewFeedback(provider llm.Provider, cfg Config, logger *slog.Logger) *Feedback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feedback{provider: provider, cfg: cfg, logger: logger}
}

// Analyze asks the model for a structured analysis of the session.
func (f *Feedback) Analyze(ctx context.Context, in FeedbackInput) (*Analysis, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeLevelFeedback)

	resp, err := f.provider.Generate(ctx, llm.Request{
		System:      feedbackSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildFeedbackUserMessage(in)}},
		Schema:      AnalysisSchema,
		MaxTokens:   f.cfg.FeedbackMaxTokens,
		Temperature: f.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("level feedback: %w", err)
	}

	var out Analysis
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse level feedback: %w", err)
	}
	return &out, nil
}

// Text returns the rendered analysis, or FeedbackFailed when the model
// could not be reached. It never fails.
func (f *Feedback) Text(ctx context.Context, in FeedbackInput) string {
	a, err := f.Analyze(ctx, in)
	if err != nil {
		f.logger.Warn("level feedback unavailable", "user_id", in.UserID, "error", err)
		return FeedbackFailed
	}
	return Render(*a)
}
