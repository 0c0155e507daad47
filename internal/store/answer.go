package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type answerRepo struct {
	db *sql.DB
}

func (r *answerRepo) Append(ctx context.Context, rec AnswerRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := exec(ctx, r.db, builder.Insert(AnswersTable.Name).
		Columns("user_id", "session_id", "question_id", "user_answer", "is_correct", "created_at").
		Values(rec.UserID, rec.SessionID, rec.QuestionID, rec.UserAnswer, rec.IsCorrect, created.Unix()))
	if err != nil {
		return fmt.Errorf("save answer for session %d: %w", rec.SessionID, err)
	}
	return nil
}

func (r *answerRepo) ListBySession(ctx context.Context, sessionID int64) ([]AnsweredQuestion, error) {
	a := builder.Table(AnswersTable.Name).As("a")
	q := builder.Table(QuestionsTable.Name).As("q")
	cols := append(q.Columns(questionColumns...), a.C("user_answer"), a.C("is_correct"))
	query, args := builder.Select(cols...).
		From(a).
		Join(q).On(a.C("question_id"), q.C("id")).
		Where(entsql.EQ(a.C("session_id"), sessionID)).
		OrderBy(a.C("id")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list answers for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	var out []AnsweredQuestion
	for rows.Next() {
		var aq AnsweredQuestion
		if err := rows.Scan(&aq.ID, &aq.CorrectAnswer, &aq.Text, &aq.OptionA,
			&aq.OptionB, &aq.OptionC, &aq.OptionD, &aq.Explanation, &aq.Type,
			&aq.ImagePath, &aq.PassageName, &aq.MainCategoryID,
			&aq.UserAnswer, &aq.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, aq)
	}
	return out, rows.Err()
}
