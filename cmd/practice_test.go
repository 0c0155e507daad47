package cmd

import (
	"testing"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/store"
)

func TestPracticeOptions(t *testing.T) {
	tests := []struct {
		name    string
		flags   practiceFlags
		want    func(t *testing.T, kind quiz.Kind, qt string, mode quiz.SizingMode, input string)
		wantErr bool
	}{
		{
			name:  "menu",
			flags: practiceFlags{},
			want: func(t *testing.T, kind quiz.Kind, qt string, mode quiz.SizingMode, input string) {
				if kind != "" || qt != "" || mode != "" || input != "" {
					t.Errorf("expected empty options, got %q %q %q %q", kind, qt, mode, input)
				}
			},
		},
		{
			name:  "arabic type with count",
			flags: practiceFlags{questionType: "كمي", count: 20},
			want: func(t *testing.T, kind quiz.Kind, qt string, mode quiz.SizingMode, input string) {
				if qt != store.QuestionTypeQuantitative || mode != quiz.ByCount || input != "20" {
					t.Errorf("got %q %q %q", qt, mode, input)
				}
			},
		},
		{
			name:  "level by minutes",
			flags: practiceFlags{questionType: "verbal", minutes: 13.5, level: true},
			want: func(t *testing.T, kind quiz.Kind, qt string, mode quiz.SizingMode, input string) {
				if kind != quiz.KindLevelDetermination || mode != quiz.ByTime || input != "13.5" {
					t.Errorf("got %q %q %q", kind, mode, input)
				}
			},
		},
		{
			name:  "type only opens sizing",
			flags: practiceFlags{questionType: "verbal"},
			want: func(t *testing.T, kind quiz.Kind, qt string, mode quiz.SizingMode, input string) {
				if qt != store.QuestionTypeVerbal || mode != "" {
					t.Errorf("got %q %q", qt, mode)
				}
			},
		},
		{name: "count without type", flags: practiceFlags{count: 10}, wantErr: true},
		{name: "unknown type", flags: practiceFlags{questionType: "math", count: 10}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.flags.options()
			if (err != nil) != tt.wantErr {
				t.Fatalf("options() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != nil {
				tt.want(t, opts.Kind, opts.QuestionType, opts.Mode, opts.Input)
			}
		})
	}
}
