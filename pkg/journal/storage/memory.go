package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"voygen/gateway/pkg/journal"
)

// MemoryStorage keeps journal entries in process memory. Entries are lost
// on restart; it suits development and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries []*journal.Entry // ordered by CreatedAt ascending
	closed  bool
}

// NewMemoryStorage creates an empty in-memory journal.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store implements journal.Storage.
func (m *MemoryStorage) Store(ctx context.Context, e *journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	cp := *e
	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].CreatedAt.After(cp.CreatedAt)
	})
	m.entries = append(m.entries, nil)
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = &cp
	return nil
}

// List implements journal.Storage.
func (m *MemoryStorage) List(ctx context.Context, q journal.Query) ([]*journal.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	limit := q.EffectiveLimit()
	out := make([]*journal.Entry, 0)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if q.Matches(m.entries[i]) {
			cp := *m.entries[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Count implements journal.Storage.
func (m *MemoryStorage) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	return int64(len(m.entries)), nil
}

// DeleteBefore implements journal.Storage.
func (m *MemoryStorage) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}

	i := sort.Search(len(m.entries), func(i int) bool {
		return !m.entries[i].CreatedAt.Before(t)
	})
	m.entries = m.entries[i:]
	return int64(i), nil
}

// DeleteOldest implements journal.Storage.
func (m *MemoryStorage) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}

	if n <= 0 {
		return 0, nil
	}
	if n > int64(len(m.entries)) {
		n = int64(len(m.entries))
	}
	m.entries = m.entries[n:]
	return n, nil
}

// Ping implements journal.Storage.
func (m *MemoryStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close implements journal.Storage.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = nil
	return nil
}
