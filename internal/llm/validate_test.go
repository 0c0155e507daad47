package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateResponse_Feedback(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"complete", feedbackJSON, false},
		{"no weak areas", `{"summary":"ممتاز","weak_areas":[],"study_plan":"حافظ على مستواك"}`, false},
		{"missing study plan", `{"summary":"جيد","weak_areas":[]}`, true},
		{"weak areas not a list", `{"summary":"جيد","weak_areas":"التناظر","study_plan":"راجع"}`, true},
		{"weak area not a string", `{"summary":"جيد","weak_areas":[3],"study_plan":"راجع"}`, true},
		{"extra field", `{"summary":"جيد","weak_areas":[],"study_plan":"راجع","score":90}`, true},
		{"not json", `{summary: جيد}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(feedbackSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var e *Error
			if !errors.As(err, &e) || e.Kind != KindInvalid {
				t.Fatalf("error = %v, want KindInvalid", err)
			}
			if string(e.Content) != tt.raw {
				t.Errorf("Content = %s, want the offending reply", e.Content)
			}
		})
	}
}

func TestValidateResponse_Verdict(t *testing.T) {
	if err := validateResponse(verdictSchema(), json.RawMessage(`{"text":"أحسنت","correct":true}`)); err != nil {
		t.Fatalf("verdict without hint rejected: %v", err)
	}
	err := validateResponse(verdictSchema(), json.RawMessage(`{"text":"أحسنت","correct":"نعم"}`))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`مرحبا`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_BrokenSchemaRejected(t *testing.T) {
	broken := &Schema{
		Name:       "broken-schema",
		Definition: map[string]any{"type": 12},
	}
	err := validateResponse(broken, json.RawMessage(`{}`))
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("error = %v, want ErrRejected", err)
	}
}
