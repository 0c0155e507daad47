package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type categoryRepo struct {
	db *sql.DB
}

func (r *categoryRepo) ListMain(ctx context.Context, questionType string, page Page) ([]Category, int, error) {
	mc := builder.Table(MainCategoriesTable.Name).As("mc")
	q := builder.Table(QuestionsTable.Name).As("q")

	total, err := count(ctx, r.db, builder.Select(entsql.Count(entsql.Distinct(mc.C("id")))).
		From(mc).
		Join(q).On(mc.C("id"), q.C("main_category_id")).
		Where(entsql.EQ(q.C("question_type"), questionType)))
	if err != nil {
		return nil, 0, fmt.Errorf("count main categories: %w", err)
	}

	sel := builder.Select(mc.C("id"), mc.C("name")).
		Distinct().
		From(mc).
		Join(q).On(mc.C("id"), q.C("main_category_id")).
		Where(entsql.EQ(q.C("question_type"), questionType)).
		OrderBy(mc.C("id")).
		Limit(page.Size).
		Offset(page.Offset())
	cats, err := r.scan(ctx, sel)
	if err != nil {
		return nil, 0, fmt.Errorf("list main categories: %w", err)
	}
	return cats, total, nil
}

func (r *categoryRepo) ListSub(ctx context.Context, page Page) ([]Category, int, error) {
	t := builder.Table(SubcategoriesTable.Name)
	total, err := count(ctx, r.db, builder.Select().Count().From(t))
	if err != nil {
		return nil, 0, fmt.Errorf("count subcategories: %w", err)
	}

	sel := builder.Select(t.C("id"), t.C("name")).
		From(t).
		OrderBy(t.C("id")).
		Limit(page.Size).
		Offset(page.Offset())
	cats, err := r.scan(ctx, sel)
	if err != nil {
		return nil, 0, fmt.Errorf("list subcategories: %w", err)
	}
	return cats, total, nil
}

func (r *categoryRepo) MainName(ctx context.Context, id int64) (string, error) {
	return r.name(ctx, MainCategoriesTable.Name, id)
}

func (r *categoryRepo) SubName(ctx context.Context, id int64) (string, error) {
	return r.name(ctx, SubcategoriesTable.Name, id)
}

func (r *categoryRepo) name(ctx context.Context, table string, id int64) (string, error) {
	t := builder.Table(table)
	query, args := builder.Select(t.C("name")).From(t).Where(entsql.EQ(t.C("id"), id)).Query()
	var name string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s %d: %w", table, id, err)
	}
	return name, nil
}

func (r *categoryRepo) scan(ctx context.Context, sel *entsql.Selector) ([]Category, error) {
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// categoryID returns the id of the named category in table, inserting it
// when missing. The second result reports whether a row was created.
func categoryID(ctx context.Context, db execer, table, name string) (int64, bool, error) {
	t := builder.Table(table)
	query, args := builder.Select(t.C("id")).From(t).Where(entsql.EQ(t.C("name"), name)).Query()
	var id int64
	err := db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}
	id, err = insertID(ctx, db, builder.Insert(table).Columns("name").Values(name))
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// linkCategories records that sub belongs to main. Existing links are kept.
func linkCategories(ctx context.Context, db execer, mainID, subID int64) error {
	q := builder.Insert(MainSubLinksTable.Name).
		Columns("main_category_id", "subcategory_id").
		Values(mainID, subID).
		OnConflict(
			entsql.ConflictColumns("main_category_id", "subcategory_id"),
			entsql.DoNothing(),
		)
	_, err := exec(ctx, db, q)
	return err
}
