package quiz

import (
	"context"
	"log/slog"
	"time"

	"github.com/qudurat/qudurat/internal/store"
)

// AnswerRecorder persists submitted answers.
type AnswerRecorder interface {
	Append(ctx context.Context, rec store.AnswerRecord) error
}

// Outcome is the result of one accepted submission.
type Outcome struct {
	Question      Question
	Correct       bool
	Submitted     Label
	SubmittedText string
	CorrectLabel  Label
	CorrectText   string
}

// Evaluator checks answers against the session cursor and records them.
type Evaluator struct {
	answers AnswerRecorder
	logger  *slog.Logger
}

// NewEvaluator creates an Evaluator. A nil logger uses slog.Default().
func NewEvaluator(answers AnswerRecorder, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{answers: answers, logger: logger}
}

// Submit evaluates raw as the answer to questionID. The question must be
// the one under the cursor, otherwise ErrStaleAnswer is returned and
// nothing is recorded. A failed write is logged and does not change the
// outcome. Submit never moves the cursor.
func (e *Evaluator) Submit(ctx context.Context, s *Session, questionID int64, raw string, now time.Time) (Outcome, error) {
	if s.State != StatePresenting {
		return Outcome{}, ErrSessionClosed
	}
	q, ok := s.currentQuestion()
	if !ok || q.ID != questionID {
		return Outcome{}, ErrStaleAnswer
	}
	if now.After(s.Deadline) {
		return Outcome{}, ErrTimeExpired
	}
	label, ok := ParseLabel(raw)
	if !ok {
		return Outcome{}, ErrInvalidLabel
	}

	out := Outcome{
		Question:      q,
		Correct:       label == q.Correct,
		Submitted:     label,
		SubmittedText: q.OptionText(label),
		CorrectLabel:  q.Correct,
		CorrectText:   q.OptionText(q.Correct),
	}

	err := e.answers.Append(ctx, store.AnswerRecord{
		UserID:     s.UserID,
		SessionID:  s.ID,
		QuestionID: q.ID,
		UserAnswer: string(label),
		IsCorrect:  out.Correct,
		CreatedAt:  now,
	})
	if err != nil {
		e.logger.Warn("failed to record answer",
			"session_id", s.ID,
			"user_id", s.UserID,
			"question_id", q.ID,
			"error", err,
		)
	}

	s.Answered++
	if out.Correct {
		s.Score++
	}
	return out, nil
}
