package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type chatRepo struct {
	db *sql.DB
}

func (r *chatRepo) Append(ctx context.Context, msg ChatMessage) error {
	created := msg.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := exec(ctx, r.db, builder.Insert(ChatMessagesTable.Name).
		Columns("user_id", "role", "content", "created_at").
		Values(msg.UserID, msg.Role, msg.Content, created.Unix()))
	if err != nil {
		return fmt.Errorf("save chat message: %w", err)
	}
	return nil
}

func (r *chatRepo) Recent(ctx context.Context, userID int64, limit int) ([]ChatMessage, error) {
	t := builder.Table(ChatMessagesTable.Name)
	sel := builder.Select(t.Columns("id", "user_id", "role", "content", "created_at")...).
		From(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		OrderBy(entsql.Desc(t.C("id")))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var (
			m       ChatMessage
			created int64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		m.CreatedAt = fromUnix(created)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func (r *chatRepo) Clear(ctx context.Context, userID int64) error {
	q := builder.Delete(ChatMessagesTable.Name).Where(entsql.EQ("user_id", userID))
	if _, err := exec(ctx, r.db, q); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}
