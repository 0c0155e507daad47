package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"google.golang.org/genai"
)

func geminiServer(t *testing.T, status int, reply map[string]any) (*GeminiProvider, *map[string]any) {
	t.Helper()
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(server.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: server.URL + "/"},
	})
	if err != nil {
		t.Fatalf("genai.NewClient: %v", err)
	}
	return &GeminiProvider{client: client, model: "gemini-2.5-flash"}, &body
}

func geminiCandidate(text string, finish genai.FinishReason) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": finish,
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 500, "candidatesTokenCount": 220, "totalTokenCount": 720},
	}
}

func TestGeminiProvider_LevelFeedback(t *testing.T) {
	p, body := geminiServer(t, http.StatusOK, geminiCandidate(feedbackJSON, genai.FinishReasonStop))

	ctx := WithPurpose(context.Background(), PurposeLevelFeedback)
	resp, err := p.Generate(ctx, Request{
		System:   "أنت مدرس قدرات",
		Messages: []Message{{Role: RoleUser, Content: "حلل نتائج اختباري"}},
		Schema:   feedbackSchema(),
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if string(resp.Content) != feedbackJSON || resp.StopReason != StopEnd {
		t.Errorf("resp = %s / %q", resp.Content, resp.StopReason)
	}
	if resp.Usage.TotalTokens != 720 {
		t.Errorf("Usage = %+v", resp.Usage)
	}

	gen, _ := (*body)["generationConfig"].(map[string]any)
	if gen["maxOutputTokens"] != float64(1500) || gen["responseMimeType"] != "application/json" {
		t.Errorf("generationConfig = %v", gen)
	}
}

func TestGeminiProvider_TruncatedFeedback(t *testing.T) {
	p, _ := geminiServer(t, http.StatusOK, geminiCandidate(`{"summary":"أداؤك`, genai.FinishReasonMaxTokens))

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "حلل"}},
		Schema:   feedbackSchema(),
	})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("error = %v, want ErrTruncated", err)
	}
}

func TestGeminiProvider_BlockedPrompt(t *testing.T) {
	p, _ := geminiServer(t, http.StatusOK, map[string]any{
		"promptFeedback": map[string]any{"blockReason": "SAFETY"},
	})

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "سؤال"}}})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("error = %v, want ErrRejected", err)
	}
}

func TestGeminiProvider_Errors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusForbidden, ErrRejected},
		{http.StatusServiceUnavailable, ErrUnavailable},
	}
	for _, tt := range tests {
		p, _ := geminiServer(t, tt.status, map[string]any{
			"error": map[string]any{"code": tt.status, "message": "فشل", "status": "ERROR"},
		})
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "سؤال"}}})
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: error = %v, want %v", tt.status, err, tt.want)
		}
	}
}

func TestGeminiModelAliases(t *testing.T) {
	tests := []struct{ in, want string }{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, geminiModels); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGeminiSchema_LevelFeedback(t *testing.T) {
	s := geminiSchema(feedbackSchema().Definition)

	if s.Type != genai.TypeObject || len(s.Properties) != 3 {
		t.Fatalf("schema = %+v", s)
	}
	if s.Properties["weak_areas"].Type != genai.TypeArray || s.Properties["weak_areas"].Items.Type != genai.TypeString {
		t.Errorf("weak_areas = %+v", s.Properties["weak_areas"])
	}
	if !slices.Equal(s.Required, []string{"summary", "weak_areas", "study_plan"}) {
		t.Errorf("Required = %v", s.Required)
	}
	if !slices.Equal(s.PropertyOrdering, []string{"study_plan", "summary", "weak_areas"}) {
		t.Errorf("PropertyOrdering = %v", s.PropertyOrdering)
	}
}

func TestGeminiSchema_Enum(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "string",
		"enum": []string{"كمي", "لفظي"},
	})
	if s.Type != genai.TypeString || !slices.Equal(s.Enum, []string{"كمي", "لفظي"}) {
		t.Errorf("schema = %+v", s)
	}
}
