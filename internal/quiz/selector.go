package quiz

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/qudurat/qudurat/internal/store"
)

// QuestionSource draws random questions from the bank.
type QuestionSource interface {
	Random(ctx context.Context, f store.QuestionFilter, n int) ([]store.Question, error)
}

// Selector draws the questions for a new session.
type Selector struct {
	source QuestionSource
}

// NewSelector creates a Selector over source.
func NewSelector(source QuestionSource) *Selector {
	return &Selector{source: source}
}

// Select draws up to count distinct questions of questionType within scope
// and groups them by passage. A short draw is fine; an empty one is
// ErrNoQuestions. Storage errors are returned wrapped.
func (s *Selector) Select(ctx context.Context, count int, questionType string, scope Scope) ([]Question, error) {
	if count <= 0 {
		return nil, ErrNoQuestions
	}

	rows, err := s.source.Random(ctx, scope.Filter(questionType), count)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoQuestions
	}

	qs := make([]Question, len(rows))
	for i, r := range rows {
		qs[i] = FromStore(r)
	}
	SortByPassage(qs)
	return qs, nil
}

// SortByPassage stably orders questions by passage name so questions on
// the same passage are adjacent. Standalone questions come first and keep
// their draw order.
func SortByPassage(qs []Question) {
	slices.SortStableFunc(qs, func(a, b Question) int {
		return strings.Compare(a.Passage, b.Passage)
	})
}
