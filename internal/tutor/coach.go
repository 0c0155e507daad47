package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qudurat/qudurat/internal/llm"
	"github.com/qudurat/qudurat/internal/store"
)

// Verdict is the model's judgement of a free-text answer.
type Verdict struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
	Hint    string `json:"hint,omitempty"`
}

// VerdictSchema is the JSON schema for practice verdicts.
var VerdictSchema = &llm.Schema{
	Name:        "practice-verdict",
	Description: "Arabic reply to a student's free-text answer, whether it is correct, and a hint when it is not",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Reply to the student, in Arabic",
			},
			"correct": map[string]any{
				"type": "boolean",
			},
			"hint": map[string]any{
				"type":        "string",
				"description": "A hint towards the answer without giving it away, in Arabic",
			},
		},
		"required":             []any{"text", "correct"},
		"additionalProperties": false,
	},
}

// Coach runs conversational practice: the student answers a question in
// their own words and the model judges it, hinting until it is right.
type Coach struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
}

// NewCoach creates a Coach over provider.
func NewCoach(provider llm.Provider, cfg Config, logger *slog.Logger) *Coach {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coach{provider: provider, cfg: cfg, logger: logger}
}

// Judge asks the model whether answer solves q.
func (c *Coach) Judge(ctx context.Context, q store.Question, answer string) (*Verdict, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("empty answer")
	}

	ctx = llm.WithPurpose(ctx, llm.PurposePractice)
	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      coachSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildJudgeMessage(q, answer)}},
		Schema:      VerdictSchema,
		MaxTokens:   c.cfg.ChatMaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("judge answer: %w", err)
	}

	var v Verdict
	if err := json.Unmarshal(resp.Content, &v); err != nil {
		return nil, fmt.Errorf("parse verdict: %w", err)
	}
	return &v, nil
}

// Explain answers the student's question about q once it was solved.
func (c *Coach) Explain(ctx context.Context, q store.Question, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("empty question")
	}

	ctx = llm.WithPurpose(ctx, llm.PurposePractice)
	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      AssistantSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildExplainMessage(q, question)}},
		MaxTokens:   c.cfg.ChatMaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("explain answer: %w", err)
	}
	return resp.Text(), nil
}

// FormatQuestion lays out a question with its lettered options.
func FormatQuestion(q store.Question) string {
	return fmt.Sprintf("%s\n\nأ: %s\nب: %s\nج: %s\nد: %s",
		strings.TrimSpace(q.Text), q.OptionA, q.OptionB, q.OptionC, q.OptionD)
}
