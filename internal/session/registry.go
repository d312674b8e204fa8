// Package session tracks the mounted views (booking wizards, chats,
// dashboards) each client owns, and tears them down on unmount or idleness.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var ErrSessionNotFound = errors.New("session not found")

// Closer is implemented by views that own timers.
type Closer interface {
	Close()
}

// Gauge tracks how many sessions of a kind are live. A nil Gauge is ignored.
type Gauge interface {
	SetActiveSessions(kind string, n int)
}

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// Registry owns one kind of view, keyed by session id.
type Registry[T any] struct {
	mu    sync.Mutex
	kind  string
	clock clockwork.Clock
	ttl   time.Duration
	gauge Gauge
	items map[uuid.UUID]*entry[T]
}

// NewRegistry creates a registry. A ttl of zero disables idle expiry.
func NewRegistry[T any](kind string, clk clockwork.Clock, ttl time.Duration, gauge Gauge) *Registry[T] {
	return &Registry[T]{
		kind:  kind,
		clock: clk,
		ttl:   ttl,
		gauge: gauge,
		items: make(map[uuid.UUID]*entry[T]),
	}
}

func (r *Registry[T]) Kind() string { return r.kind }

// Create stores v under a new id.
func (r *Registry[T]) Create(v T) uuid.UUID {
	id := uuid.New()

	r.mu.Lock()
	r.items[id] = &entry[T]{value: v, lastSeen: r.clock.Now()}
	n := len(r.items)
	r.mu.Unlock()

	r.report(n)
	return id
}

// Get returns the view and marks it as recently used.
func (r *Registry[T]) Get(id uuid.UUID) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		var zero T
		return zero, ErrSessionNotFound
	}
	e.lastSeen = r.clock.Now()
	return e.value, nil
}

// Delete removes the view and closes it.
func (r *Registry[T]) Delete(id uuid.UUID) error {
	r.mu.Lock()
	e, ok := r.items[id]
	if ok {
		delete(r.items, id)
	}
	n := len(r.items)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	closeValue(e.value)
	r.report(n)
	return nil
}

// ExpireIdle closes every view unused for longer than the ttl and returns
// how many were removed.
func (r *Registry[T]) ExpireIdle() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.clock.Now().Add(-r.ttl)

	r.mu.Lock()
	var expired []T
	for id, e := range r.items {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.value)
			delete(r.items, id)
		}
	}
	n := len(r.items)
	r.mu.Unlock()

	for _, v := range expired {
		closeValue(v)
	}
	if len(expired) > 0 {
		r.report(n)
	}
	return len(expired)
}

// CloseAll tears down every view. Used on shutdown.
func (r *Registry[T]) CloseAll() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[uuid.UUID]*entry[T])
	r.mu.Unlock()

	for _, e := range items {
		closeValue(e.value)
	}
	r.report(0)
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Registry[T]) report(n int) {
	if r.gauge != nil {
		r.gauge.SetActiveSessions(r.kind, n)
	}
}

func closeValue(v any) {
	if c, ok := v.(Closer); ok {
		c.Close()
	}
}
