package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var userColumns = []string{
	"id", "name", "username", "phone", "gender", "points", "usage_seconds",
	"answered_questions", "expected_percentage", "daily_gifts_used",
	"last_gift_day", "subscription_end", "created_at",
}

type userRepo struct {
	db *sql.DB
}

func (r *userRepo) Register(ctx context.Context, u User) error {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	q := builder.Insert(UsersTable.Name).
		Columns("id", "name", "username", "created_at").
		Values(u.ID, u.Name, u.Username, created.Unix()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(s *entsql.UpdateSet) {
				s.SetExcluded("name")
				s.SetExcluded("username")
			}),
		)
	if _, err := exec(ctx, r.db, q); err != nil {
		return fmt.Errorf("register user %d: %w", u.ID, err)
	}
	return nil
}

func (r *userRepo) Get(ctx context.Context, id int64) (*User, error) {
	t := builder.Table(UsersTable.Name)
	query, args := builder.Select(t.Columns(userColumns...)...).
		From(t).
		Where(entsql.EQ(t.C("id"), id)).
		Query()

	var (
		u                 User
		subEnd, createdAt int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Name, &u.Username, &u.Phone, &u.Gender, &u.Points,
		&u.UsageSeconds, &u.AnsweredQuestions, &u.ExpectedPercentage,
		&u.DailyGiftsUsed, &u.LastGiftDay, &subEnd, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	u.SubscriptionEnd = fromUnix(subEnd)
	u.CreatedAt = fromUnix(createdAt)
	return &u, nil
}

func (r *userRepo) SetGender(ctx context.Context, id int64, gender string) error {
	return r.set(ctx, id, "gender", gender)
}

func (r *userRepo) SetPhone(ctx context.Context, id int64, phone string) error {
	return r.set(ctx, id, "phone", phone)
}

func (r *userRepo) SetSubscriptionEnd(ctx context.Context, id int64, end time.Time) error {
	var sec int64
	if !end.IsZero() {
		sec = end.Unix()
	}
	return r.set(ctx, id, "subscription_end", sec)
}

func (r *userRepo) set(ctx context.Context, id int64, column string, v any) error {
	q := builder.Update(UsersTable.Name).Set(column, v).Where(entsql.EQ("id", id))
	if _, err := exec(ctx, r.db, q); err != nil {
		return fmt.Errorf("update user %d %s: %w", id, column, err)
	}
	return nil
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	n, err := count(ctx, r.db, builder.Select().Count().From(builder.Table(UsersTable.Name)))
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *userRepo) ClaimDailyGift(ctx context.Context, id int64, day string) (int, bool, error) {
	var (
		n       int
		claimed bool
	)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		q := builder.Update(UsersTable.Name).
			Add("daily_gifts_used", 1).
			Set("last_gift_day", day).
			Where(entsql.And(
				entsql.EQ("id", id),
				entsql.NEQ("last_gift_day", day),
			))
		res, err := exec(ctx, tx, q)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		claimed = affected > 0

		t := builder.Table(UsersTable.Name)
		query, args := builder.Select(t.C("daily_gifts_used")).From(t).Where(entsql.EQ(t.C("id"), id)).Query()
		return tx.QueryRowContext(ctx, query, args...).Scan(&n)
	})
	if err != nil {
		return 0, false, fmt.Errorf("claim daily gift for %d: %w", id, err)
	}
	return n, claimed, nil
}

func fromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
