package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"voygen/gateway/pkg/journal"
)

// ErrClosed is returned by a backend after Close.
var ErrClosed = errors.New("journal storage closed")

// SQLiteConfig contains configuration for the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file path. ":memory:" keeps the database in memory.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// WALMode enables write-ahead logging.
	WALMode bool

	// BusyTimeout is how long to wait on a locked database.
	BusyTimeout time.Duration
}

// SQLiteStorage implements journal.Storage on SQLite using the pure-Go
// modernc.org/sqlite driver.
type SQLiteStorage struct {
	db     *sql.DB
	config SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) the journal database and
// applies the schema.
func NewSQLiteStorage(cfg SQLiteConfig) (*SQLiteStorage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite journal: path is required")
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 4
	}
	inMemory := cfg.Path == ":memory:"
	if inMemory {
		// Every connection to :memory: is a separate database.
		cfg.MaxOpenConns = 1
		cfg.WALMode = false
	} else if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite journal: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite journal: open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		logger: slog.Default().With("component", "journal.storage.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("journal database ready", "path", cfg.Path, "wal_mode", cfg.WALMode)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("sqlite journal: enable WAL: %w", err)
		}
	}
	if s.config.BusyTimeout > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("sqlite journal: set busy timeout: %w", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("sqlite journal: create schema: %w", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("sqlite journal: record schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return fmt.Errorf("sqlite journal: read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("sqlite journal: schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}
	return nil
}

// Store implements journal.Storage.
func (s *SQLiteStorage) Store(ctx context.Context, e *journal.Entry) error {
	_, err := s.db.ExecContext(ctx, insertEntry,
		e.ID,
		nullString(e.RequestID),
		nullString(e.Route),
		e.Upstream,
		e.Method,
		e.Status,
		e.StatusCode,
		int64(e.Duration),
		nullString(e.Error),
		e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite journal: insert %s: %w", e.ID, err)
	}
	return nil
}

// List implements journal.Storage.
func (s *SQLiteStorage) List(ctx context.Context, q journal.Query) ([]*journal.Entry, error) {
	var (
		where []string
		args  []any
	)
	if !q.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if !q.Until.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, q.Until.UnixNano())
	}
	if q.Upstream != "" {
		where = append(where, "upstream = ?")
		args = append(args, q.Upstream)
	}
	if q.Method != "" {
		where = append(where, "method = ?")
		args = append(args, q.Method)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}

	query := `SELECT id, request_id, route, upstream, method, status, status_code, duration_ns, error, created_at
FROM journal_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, q.EffectiveLimit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite journal: list: %w", err)
	}
	defer rows.Close()

	entries := make([]*journal.Entry, 0)
	for rows.Next() {
		var (
			e                         journal.Entry
			requestID, route, errText sql.NullString
			statusCode                sql.NullInt64
			durationNS, createdAt     int64
		)
		if err := rows.Scan(&e.ID, &requestID, &route, &e.Upstream, &e.Method, &e.Status,
			&statusCode, &durationNS, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite journal: scan: %w", err)
		}
		e.RequestID = requestID.String
		e.Route = route.String
		e.Error = errText.String
		e.StatusCode = int(statusCode.Int64)
		e.Duration = time.Duration(durationNS)
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite journal: iterate: %w", err)
	}
	return entries, nil
}

// Count implements journal.Storage.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite journal: count: %w", err)
	}
	return n, nil
}

// DeleteBefore implements journal.Storage.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteBefore, t.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sqlite journal: delete before %s: %w", t.Format(time.RFC3339), err)
	}
	return res.RowsAffected()
}

// DeleteOldest implements journal.Storage.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, deleteOldest, n)
	if err != nil {
		return 0, fmt.Errorf("sqlite journal: delete oldest: %w", err)
	}
	return res.RowsAffected()
}

// Ping implements journal.Storage.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements journal.Storage.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
