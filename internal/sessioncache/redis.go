// Package sessioncache keeps live quiz sessions in Redis so they survive a
// bot restart.
package sessioncache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qudurat/qudurat/internal/quiz"
)

// Retention is how long a session outlives its deadline.
const Retention = quiz.Retention

const minTTL = time.Minute

// Registry is a quiz.Registry backed by Redis.
type Registry struct {
	rdb *redis.Client
	now func() time.Time
}

var _ quiz.Registry = (*Registry)(nil)

// Open parses a redis:// URL, connects and pings.
func Open(ctx context.Context, url string) (*Registry, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(rdb), nil
}

// New wraps an existing client.
func New(rdb *redis.Client) *Registry {
	return &Registry{rdb: rdb, now: time.Now}
}

// Key returns the Redis key of a session.
func Key(id int64) string {
	return "quiz:session:" + strconv.FormatInt(id, 10)
}

// TTL is the expiry for s stored at now: the time until the deadline plus
// Retention, never below a minute.
func TTL(s *quiz.Session, now time.Time) time.Duration {
	ttl := s.Deadline.Sub(now) + Retention
	if ttl < minTTL {
		return minTTL
	}
	return ttl
}

func (r *Registry) Put(ctx context.Context, s *quiz.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", s.ID, err)
	}
	if err := r.rdb.Set(ctx, Key(s.ID), data, TTL(s, r.now())).Err(); err != nil {
		return fmt.Errorf("store session %d: %w", s.ID, err)
	}
	return nil
}

func (r *Registry) Get(ctx context.Context, id int64) (*quiz.Session, error) {
	data, err := r.rdb.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, quiz.ErrUnknownSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", id, err)
	}
	var s quiz.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", id, err)
	}
	return &s, nil
}

func (r *Registry) Delete(ctx context.Context, id int64) error {
	if err := r.rdb.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *Registry) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close releases the client.
func (r *Registry) Close() error {
	return r.rdb.Close()
}
