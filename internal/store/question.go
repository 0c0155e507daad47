package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
)

var questionColumns = []string{
	"id", "correct_answer", "question_text", "option_a", "option_b",
	"option_c", "option_d", "explanation", "question_type", "image_path",
	"passage_name", "main_category_id",
}

type questionRepo struct {
	db *sql.DB
}

func (r *questionRepo) Random(ctx context.Context, f QuestionFilter, n int) ([]Question, error) {
	if n <= 0 {
		return nil, nil
	}

	q := builder.Table(QuestionsTable.Name).As("q")
	sel := builder.Select(q.Columns(questionColumns...)...).From(q)

	var preds []*entsql.Predicate
	if f.Type != "" {
		preds = append(preds, entsql.EQ(q.C("question_type"), f.Type))
	}
	switch {
	case f.SubcategoryID != 0:
		l := builder.Table(MainSubLinksTable.Name).As("msl")
		sel.Join(l).On(q.C("main_category_id"), l.C("main_category_id"))
		preds = append(preds, entsql.EQ(l.C("subcategory_id"), f.SubcategoryID))
	case f.MainCategoryID != 0:
		preds = append(preds, entsql.EQ(q.C("main_category_id"), f.MainCategoryID))
	}

	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderExpr(entsql.Expr("RANDOM()")).
		Limit(n)

	qs, err := scanQuestions(ctx, r.db, sel)
	if err != nil {
		return nil, fmt.Errorf("select random questions: %w", err)
	}
	return qs, nil
}

func (r *questionRepo) Get(ctx context.Context, id int64) (*Question, error) {
	t := builder.Table(QuestionsTable.Name)
	qs, err := scanQuestions(ctx, r.db, builder.Select(t.Columns(questionColumns...)...).
		From(t).
		Where(entsql.EQ(t.C("id"), id)))
	if err != nil {
		return nil, fmt.Errorf("get question %d: %w", id, err)
	}
	if len(qs) == 0 {
		return nil, nil
	}
	return &qs[0], nil
}

func (r *questionRepo) Count(ctx context.Context, questionType string) (int, error) {
	t := builder.Table(QuestionsTable.Name)
	sel := builder.Select().Count().From(t)
	if questionType != "" {
		sel.Where(entsql.EQ(t.C("question_type"), questionType))
	}
	n, err := count(ctx, r.db, sel)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (r *questionRepo) Import(ctx context.Context, items []QuestionImport) (ImportResult, error) {
	var res ImportResult
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		mains := make(map[string]int64)
		subs := make(map[string]int64)

		for i, item := range items {
			mainName := strings.TrimSpace(item.MainCategory)
			if mainName == "" {
				return fmt.Errorf("item %d: main category is required", i)
			}
			mainID, ok := mains[mainName]
			if !ok {
				id, created, err := categoryID(ctx, tx, MainCategoriesTable.Name, mainName)
				if err != nil {
					return fmt.Errorf("main category %q: %w", mainName, err)
				}
				if created {
					res.MainCategories++
				}
				mains[mainName] = id
				mainID = id
			}

			for _, sub := range item.Subcategories {
				sub = strings.TrimSpace(sub)
				if sub == "" {
					continue
				}
				subID, ok := subs[sub]
				if !ok {
					id, created, err := categoryID(ctx, tx, SubcategoriesTable.Name, sub)
					if err != nil {
						return fmt.Errorf("subcategory %q: %w", sub, err)
					}
					if created {
						res.Subcategories++
					}
					subs[sub] = id
					subID = id
				}
				if err := linkCategories(ctx, tx, mainID, subID); err != nil {
					return fmt.Errorf("link %q to %q: %w", sub, mainName, err)
				}
			}

			qq := item.Question
			_, err := insertID(ctx, tx, builder.Insert(QuestionsTable.Name).
				Columns(questionColumns[1:]...).
				Values(qq.CorrectAnswer, qq.Text, qq.OptionA, qq.OptionB,
					qq.OptionC, qq.OptionD, qq.Explanation, qq.Type,
					qq.ImagePath, qq.PassageName, mainID))
			if err != nil {
				return fmt.Errorf("insert question %d: %w", i, err)
			}
			res.Questions++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("import questions: %w", err)
	}
	return res, nil
}

func scanQuestions(ctx context.Context, db execer, sel *entsql.Selector) ([]Question, error) {
	query, args := sel.Query()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qs []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.CorrectAnswer, &q.Text, &q.OptionA,
			&q.OptionB, &q.OptionC, &q.OptionD, &q.Explanation, &q.Type,
			&q.ImagePath, &q.PassageName, &q.MainCategoryID); err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, rows.Err()
}

// errNotFound is returned by internal lookups that require a row.
var errNotFound = errors.New("not found")
