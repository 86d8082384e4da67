package journal

import (
	"context"
	"time"
)

// Entry statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Entry records one call the gateway made to an upstream MCP service.
// Payloads are not stored; the journal is an operational record, not a
// copy of the data held by the MCP services.
type Entry struct {
	ID         string        `json:"id"`
	RequestID  string        `json:"request_id,omitempty"`
	Route      string        `json:"route,omitempty"`
	Upstream   string        `json:"upstream"`
	Method     string        `json:"method"`
	Status     string        `json:"status"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Error      string        `json:"error,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Query filters journal entries. Zero-valued fields do not filter.
type Query struct {
	Since    time.Time
	Until    time.Time
	Upstream string
	Method   string
	Status   string

	// Limit caps the result size. Zero means DefaultLimit.
	Limit int
}

// Query limits.
const (
	DefaultLimit = 100
	MaxLimit     = 10000
)

// EffectiveLimit returns the limit to apply for q.
func (q Query) EffectiveLimit() int {
	switch {
	case q.Limit <= 0:
		return DefaultLimit
	case q.Limit > MaxLimit:
		return MaxLimit
	default:
		return q.Limit
	}
}

// Matches reports whether e satisfies the filters of q.
func (q Query) Matches(e *Entry) bool {
	if !q.Since.IsZero() && e.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && e.CreatedAt.After(q.Until) {
		return false
	}
	if q.Upstream != "" && e.Upstream != q.Upstream {
		return false
	}
	if q.Method != "" && e.Method != q.Method {
		return false
	}
	if q.Status != "" && e.Status != q.Status {
		return false
	}
	return true
}

// Storage persists journal entries. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists an entry.
	Store(ctx context.Context, e *Entry) error

	// List returns entries matching q, newest first.
	List(ctx context.Context, q Query) ([]*Entry, error)

	// Count returns the total number of stored entries.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes entries created before t and returns how many
	// were removed.
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)

	// DeleteOldest removes the n oldest entries.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}
