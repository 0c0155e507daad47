package quiz

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Registry holds live sessions between steps. Implementations must return
// ErrUnknownSession for missing ids.
type Registry interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id int64) (*Session, error)
	Delete(ctx context.Context, id int64) error
}

// Retention is how long a registry keeps a session past its deadline.
// Sessions left waiting for an artifact choice or in a chat are dropped
// after that.
const Retention = 24 * time.Hour

// MemoryRegistry is an in-process Registry. It stores encoded copies so
// callers never share mutable state with it. Entries expire Retention
// after the session deadline and are swept on Put.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[int64]memEntry
	now      func() time.Time
}

type memEntry struct {
	data    []byte
	expires time.Time
}

// RegistryOption configures a MemoryRegistry.
type RegistryOption func(*MemoryRegistry)

// WithRegistryClock sets the clock expiry is measured against. It should
// be the engine's clock.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *MemoryRegistry) { r.now = now }
}

// NewMemoryRegistry creates an empty MemoryRegistry.
func NewMemoryRegistry(opts ...RegistryOption) *MemoryRegistry {
	r := &MemoryRegistry{sessions: make(map[int64]memEntry), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryRegistry) Put(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, e := range r.sessions {
		if !now.Before(e.expires) {
			delete(r.sessions, id)
		}
	}
	r.sessions[s.ID] = memEntry{data: data, expires: s.Deadline.Add(Retention)}
	return nil
}

func (r *MemoryRegistry) Get(_ context.Context, id int64) (*Session, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || !r.now().Before(e.expires) {
		return nil, ErrUnknownSession
	}
	var s Session
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *MemoryRegistry) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included until
// the next sweep.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
