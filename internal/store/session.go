package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// ErrAlreadyFinalized is returned when a session's final fields were
// already written.
var ErrAlreadyFinalized = errors.New("session already finalized")

var sessionColumns = []string{
	"id", "user_id", "kind", "question_type", "category_kind", "category_id",
	"num_questions", "created_at", "deadline", "score", "answered",
	"percentage", "time_taken", "pdf_path", "video_path", "finished_at",
}

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Create(ctx context.Context, rec SessionRecord) (int64, error) {
	id, err := insertID(ctx, r.db, builder.Insert(QuizSessionsTable.Name).
		Columns("user_id", "kind", "question_type", "category_kind", "category_id",
			"num_questions", "created_at", "deadline").
		Values(rec.UserID, rec.Kind, rec.QuestionType, rec.CategoryKind, rec.CategoryID,
			rec.NumQuestions, rec.CreatedAt.Unix(), rec.Deadline.Unix()))
	if err != nil {
		return 0, fmt.Errorf("create %s session: %w", rec.Kind, err)
	}
	return id, nil
}

func (r *sessionRepo) Get(ctx context.Context, id int64) (*SessionRecord, error) {
	t := builder.Table(QuizSessionsTable.Name)
	query, args := builder.Select(t.Columns(sessionColumns...)...).
		From(t).
		Where(entsql.EQ(t.C("id"), id)).
		Query()

	rec, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return rec, nil
}

func (r *sessionRepo) Finalize(ctx context.Context, res SessionResult) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		u := builder.Table(UsersTable.Name)
		query, args := builder.Select(u.C("answered_questions"), u.C("expected_percentage")).
			From(u).
			Where(entsql.EQ(u.C("id"), res.UserID)).
			Query()
		var (
			before   int
			expected float64
		)
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&before, &expected); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("user %d: %w", res.UserID, errNotFound)
			}
			return fmt.Errorf("read user stats: %w", err)
		}
		expected = RunningPercentage(expected, before, res.Percentage, res.Answered)

		updates := []struct {
			what string
			q    *entsql.UpdateBuilder
		}{
			{"usage time", builder.Update(UsersTable.Name).Add("usage_seconds", res.Elapsed.Seconds())},
			{"answered questions", builder.Update(UsersTable.Name).Add("answered_questions", res.Answered)},
			{"expected percentage", builder.Update(UsersTable.Name).Set("expected_percentage", expected)},
			{"points", builder.Update(UsersTable.Name).Add("points", res.Points)},
		}
		for _, up := range updates {
			if _, err := exec(ctx, tx, up.q.Where(entsql.EQ("id", res.UserID))); err != nil {
				return fmt.Errorf("update %s: %w", up.what, err)
			}
		}

		sq := builder.Update(QuizSessionsTable.Name).
			Set("score", res.Score).
			Set("answered", res.Answered).
			Set("percentage", res.Percentage).
			Set("time_taken", res.Elapsed.Seconds()).
			Set("finished_at", res.FinishedAt.Unix()).
			Where(entsql.And(
				entsql.EQ("id", res.SessionID),
				entsql.EQ("finished_at", 0),
			))
		result, err := exec(ctx, tx, sq)
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrAlreadyFinalized
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("finalize session %d: %w", res.SessionID, err)
	}
	return nil
}

// RunningPercentage folds pct over answered questions into a running
// average that already covers before questions.
func RunningPercentage(current float64, before int, pct float64, answered int) float64 {
	total := before + answered
	if total <= 0 {
		return current
	}
	return (current*float64(before) + pct*float64(answered)) / float64(total)
}

func (r *sessionRepo) SetArtifact(ctx context.Context, id int64, format, path string) error {
	var column string
	switch format {
	case "pdf":
		column = "pdf_path"
	case "video":
		column = "video_path"
	default:
		return fmt.Errorf("unknown artifact format %q", format)
	}
	q := builder.Update(QuizSessionsTable.Name).Set(column, path).Where(entsql.EQ("id", id))
	if _, err := exec(ctx, r.db, q); err != nil {
		return fmt.Errorf("set %s for session %d: %w", column, id, err)
	}
	return nil
}

func (r *sessionRepo) ListByUser(ctx context.Context, userID int64, kind string, page Page) ([]SessionSummary, int, error) {
	t := builder.Table(QuizSessionsTable.Name)
	total, err := count(ctx, r.db, builder.Select().Count().From(t).Where(entsql.And(
		entsql.EQ(t.C("user_id"), userID),
		entsql.EQ(t.C("kind"), kind),
	)))
	if err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	s := builder.Table(QuizSessionsTable.Name).As("s")
	sel := summarySelector(s).
		Where(entsql.And(
			entsql.EQ(s.C("user_id"), userID),
			entsql.EQ(s.C("kind"), kind),
		)).
		OrderBy(entsql.Desc(s.C("created_at")), entsql.Desc(s.C("id"))).
		Limit(page.Size).
		Offset(page.Offset())

	out, err := r.scanSummaries(ctx, sel)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return out, total, nil
}

func (r *sessionRepo) Summary(ctx context.Context, id int64) (*SessionSummary, error) {
	s := builder.Table(QuizSessionsTable.Name).As("s")
	out, err := r.scanSummaries(ctx, summarySelector(s).Where(entsql.EQ(s.C("id"), id)))
	if err != nil {
		return nil, fmt.Errorf("session summary %d: %w", id, err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (r *sessionRepo) Ordinal(ctx context.Context, rec SessionRecord) (int, error) {
	t := builder.Table(QuizSessionsTable.Name)
	n, err := count(ctx, r.db, builder.Select().Count().From(t).Where(entsql.And(
		entsql.EQ(t.C("user_id"), rec.UserID),
		entsql.EQ(t.C("kind"), rec.Kind),
		entsql.LTE(t.C("id"), rec.ID),
	)))
	if err != nil {
		return 0, fmt.Errorf("session ordinal %d: %w", rec.ID, err)
	}
	return n, nil
}

// summarySelector selects session columns plus answer counts, grouped per
// session. Sessions without answers report zero counts.
func summarySelector(s *entsql.SelectTable) *entsql.Selector {
	a := builder.Table(AnswersTable.Name).As("a")
	cols := append(s.Columns(sessionColumns...),
		"COUNT(CASE WHEN "+a.C("is_correct")+" = 1 THEN 1 END)",
		entsql.Count(a.C("id")),
	)
	return builder.Select(cols...).
		From(s).
		LeftJoin(a).On(s.C("id"), a.C("session_id")).
		GroupBy(s.C("id"))
}

func (r *sessionRepo) scanSummaries(ctx context.Context, sel *entsql.Selector) ([]SessionSummary, error) {
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		rec, err := scanSession(rows, &sum.Correct, &sum.TotalAnswered)
		if err != nil {
			return nil, err
		}
		sum.SessionRecord = *rec
		out = append(out, sum)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession scans the session columns followed by any extra destinations.
func scanSession(row rowScanner, extra ...any) (*SessionRecord, error) {
	var (
		rec                           SessionRecord
		created, deadline, finishedAt int64
	)
	dest := []any{
		&rec.ID, &rec.UserID, &rec.Kind, &rec.QuestionType, &rec.CategoryKind,
		&rec.CategoryID, &rec.NumQuestions, &created, &deadline, &rec.Score,
		&rec.Answered, &rec.Percentage, &rec.TimeTaken, &rec.PDFPath,
		&rec.VideoPath, &finishedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	rec.CreatedAt = fromUnix(created)
	rec.Deadline = fromUnix(deadline)
	rec.FinishedAt = fromUnix(finishedAt)
	return &rec, nil
}
