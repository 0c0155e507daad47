package tutor

import (
	"context"
	"fmt"
	"time"

	"github.com/qudurat/qudurat/internal/store"
)

// AnswerLister returns a session's answers joined with their questions.
type AnswerLister interface {
	ListBySession(ctx context.Context, sessionID int64) ([]store.AnsweredQuestion, error)
}

// CategoryNamer resolves main category names.
type CategoryNamer interface {
	MainName(ctx context.Context, id int64) (string, error)
}

// LoadInput builds the analysis input for a finished session from its
// recorded answers.
func LoadInput(ctx context.Context, answers AnswerLister, categories CategoryNamer, userID, sessionID int64, score, total int, elapsed time.Duration) (FeedbackInput, error) {
	rows, err := answers.ListBySession(ctx, sessionID)
	if err != nil {
		return FeedbackInput{}, fmt.Errorf("list answers: %w", err)
	}
	names := make(map[int64]string)
	results := make([]QuestionResult, 0, len(rows))
	for _, a := range rows {
		name, ok := names[a.MainCategoryID]
		if !ok {
			name, err = categories.MainName(ctx, a.MainCategoryID)
			if err != nil {
				return FeedbackInput{}, fmt.Errorf("category name: %w", err)
			}
			names[a.MainCategoryID] = name
		}
		results = append(results, QuestionResult{
			Text:          a.Text,
			Category:      name,
			Type:          a.Type,
			CorrectAnswer: a.CorrectAnswer,
			UserAnswer:    a.UserAnswer,
			Correct:       a.IsCorrect,
		})
	}
	return FeedbackInput{
		UserID:    userID,
		Score:     score,
		Total:     total,
		Elapsed:   elapsed,
		Questions: results,
	}, nil
}
