package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// PurposeDefaults fill the request fields a caller leaves at zero.
type PurposeDefaults struct {
	MaxTokens   int
	Temperature float64
}

// Level feedback is a long structured analysis that should be stable run
// to run. Practice verdicts are short and must not wander. The assistant
// chat is free conversation.
var purposeDefaults = map[string]PurposeDefaults{
	PurposeLevelFeedback: {MaxTokens: 1500, Temperature: 0.2},
	PurposeAssistantChat: {MaxTokens: 800, Temperature: 0.7},
	PurposePractice:      {MaxTokens: 400, Temperature: 0.2},
}

// DefaultsFor returns the defaults of purpose. Unknown purposes get
// DefaultMaxTokens and temperature 0.
func DefaultsFor(purpose string) PurposeDefaults {
	if d, ok := purposeDefaults[purpose]; ok {
		return d
	}
	return PurposeDefaults{MaxTokens: DefaultMaxTokens}
}

// prepare resolves req for one provider call: purpose defaults fill the
// zero fields and structured requests get the JSON reply instruction.
func prepare(ctx context.Context, req Request) Request {
	d := DefaultsFor(PurposeFrom(ctx))
	if req.MaxTokens <= 0 {
		req.MaxTokens = d.MaxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = d.Temperature
	}
	if req.Schema != nil {
		req.System = withJSONInstruction(req.System, req.Schema)
	}
	return req
}

// withJSONInstruction appends the reply format to the system prompt.
// Providers without strict schema mode rely on it; the others ignore it.
func withJSONInstruction(system string, s *Schema) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(system))
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Reply with one JSON object for the %q schema", s.Name)
	if s.Description != "" {
		fmt.Fprintf(&b, " (%s)", s.Description)
	}
	b.WriteString(". Write the string values in Arabic. Do not wrap the JSON in markdown.")
	return b.String()
}

// reply is what an adapter got back, before validation.
type reply struct {
	text  string
	usage Usage
	model string
	stop  string
}

// finish turns a raw reply into a Response. Structured replies lose any
// markdown fence and are validated. A structured reply that hit the token
// cap is reported as truncated since it cannot be complete JSON.
func finish(provider string, req Request, r reply) (*Response, error) {
	content := json.RawMessage(r.text)
	if req.Schema != nil {
		content = json.RawMessage(stripFence(r.text))
		if r.stop == StopMaxTokens {
			return nil, &Error{Kind: KindTruncated, Provider: provider, Content: content}
		}
		if err := validateResponse(req.Schema, content); err != nil {
			if e, ok := err.(*Error); ok {
				e.Provider = provider
			}
			return nil, err
		}
	}
	return &Response{
		Content:    content,
		Usage:      r.usage,
		Model:      r.model,
		StopReason: r.stop,
	}, nil
}

// stripFence removes a ```json fence some models put around JSON despite
// being told not to.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// resolveModel maps a friendly model name to a provider model id. Unknown
// names are passed through as ids.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
