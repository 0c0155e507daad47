package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestMockProvider_ReturnsCanedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &Error{Kind: KindRateLimited, Status: 429}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposePractice)
	if p := PurposeFrom(ctx); p != PurposePractice {
		t.Fatalf("expected %q, got %q", PurposePractice, p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("QUDURAT_LLM_PROVIDER", "openrouter")
	t.Setenv("QUDURAT_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("QUDURAT_OPENROUTER_MODEL", "openai/gpt-4.1-mini")
	t.Setenv("QUDURAT_LLM_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openrouter" {
		t.Errorf("Provider = %q, want openrouter", cfg.Provider)
	}
	if cfg.OpenRouter.Model != "openai/gpt-4.1-mini" {
		t.Errorf("OpenRouter.Model = %q", cfg.OpenRouter.Model)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestApplyEnv_DiscoversVendorKey(t *testing.T) {
	t.Setenv("QUDURAT_LLM_PROVIDER", "")
	t.Setenv("QUDURAT_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg := ConfigFromEnv()
	if cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "sk-ant" {
		t.Errorf("Provider/key = %q/%q, want anthropic/sk-ant", cfg.Provider, cfg.Anthropic.APIKey)
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{`"مرحبا"`, "مرحبا"},
		{"plain reply\n", "plain reply"},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		r := &Response{Content: json.RawMessage(tt.content)}
		if got := r.Text(); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestMockProvider_RecordsPreparedRequest(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(feedbackJSON)})

	ctx := WithPurpose(context.Background(), PurposeLevelFeedback)
	if _, err := mock.Generate(ctx, Request{System: "حلل", Schema: feedbackSchema()}); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if mock.Calls[0].MaxTokens != 0 || mock.Calls[0].System != "حلل" {
		t.Errorf("Calls[0] = %+v, want the request as sent", mock.Calls[0])
	}
	prepared := mock.Prepared[0]
	if prepared.MaxTokens != 1500 || prepared.Temperature != 0.2 || prepared.System == "حلل" {
		t.Errorf("Prepared[0] = %+v", prepared)
	}
}

func TestMockProvider_StripsFence(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage("```json\n" + feedbackJSON + "\n```")})
	resp, err := mock.Generate(context.Background(), Request{Schema: feedbackSchema()})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if string(resp.Content) != feedbackJSON {
		t.Errorf("Content = %s", resp.Content)
	}
}

func TestOpenAIModelAliases(t *testing.T) {
	if got := resolveModel("gpt-mini", openaiModels); got != "gpt-4o-mini" {
		t.Errorf("resolveModel(gpt-mini) = %q", got)
	}
	if got := resolveModel("gpt-4.1", openaiModels); got != "gpt-4.1" {
		t.Errorf("resolveModel(gpt-4.1) = %q", got)
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want DeadlineExceeded", err)
	}
	if p.ModelID() != "slow" {
		t.Errorf("ModelID() = %q", p.ModelID())
	}

	var base Provider = slowProvider{}
	if WithTimeout(base, 0) != base {
		t.Error("zero timeout should return the provider unchanged")
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock", Retry: RetryConfig{MaxAttempts: 1}}, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID() = %q, want mock", p.ModelID())
	}

	if _, err := NewProvider(context.Background(), Config{Provider: "llama"}, nil, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("openai/gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for vendor-prefixed id")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Cost = %v, want 0.75", got)
	}
	if LookupCost("local-llama") != nil {
		t.Error("expected nil for unknown model")
	}
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	schema := &Schema{
		Name: "mock-check",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"summary"},
			"properties": map[string]any{
				"summary": map[string]any{"type": "string"},
			},
		},
	}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"other":1}`)},
		MockResponse{Content: json.RawMessage(`{"summary":"جيد"}`)},
	)

	_, err := mock.Generate(context.Background(), Request{Schema: schema})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}
	if _, err := mock.Generate(context.Background(), Request{Schema: schema}); err != nil {
		t.Fatalf("valid content rejected: %v", err)
	}
}
