package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"voygen/gateway/pkg/config"
	"voygen/gateway/pkg/journal"
)

func backends(t *testing.T) map[string]journal.Storage {
	t.Helper()

	sqlite, err := NewSQLiteStorage(SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		WALMode:     true,
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]journal.Storage{
		"memory": NewMemoryStorage(),
		"sqlite": sqlite,
	}
}

func seed(t *testing.T, s journal.Storage, base time.Time) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		e := &journal.Entry{
			ID:        fmt.Sprintf("entry-%d", i),
			RequestID: fmt.Sprintf("req-%d", i),
			Route:     "POST /voygen/extract/hotels",
			Upstream:  "data",
			Method:    "ingest_hotels",
			Status:    journal.StatusSuccess,
			Duration:  time.Duration(i) * time.Millisecond,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if i%2 == 1 {
			e.Upstream = "publish"
			e.Method = "publish_travel_document_with_dashboard_update"
			e.Status = journal.StatusError
			e.StatusCode = 502
			e.Error = "Remote MCP call failed: 502 Bad Gateway"
		}
		if err := s.Store(ctx, e); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}
}

func TestStorage_ListAndFilter(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s, base)
			ctx := context.Background()

			all, err := s.List(ctx, journal.Query{})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(all) != 6 {
				t.Fatalf("List() = %d entries, want 6", len(all))
			}
			if all[0].ID != "entry-5" {
				t.Errorf("first entry = %s, want newest entry-5", all[0].ID)
			}
			if !all[0].CreatedAt.Equal(base.Add(5 * time.Hour)) {
				t.Errorf("CreatedAt = %v", all[0].CreatedAt)
			}

			errs, err := s.List(ctx, journal.Query{Status: journal.StatusError})
			if err != nil {
				t.Fatal(err)
			}
			if len(errs) != 3 {
				t.Errorf("error entries = %d, want 3", len(errs))
			}
			if errs[0].StatusCode != 502 || errs[0].Error == "" {
				t.Errorf("error entry fields lost: %+v", errs[0])
			}

			recent, err := s.List(ctx, journal.Query{Since: base.Add(4 * time.Hour), Upstream: "data"})
			if err != nil {
				t.Fatal(err)
			}
			if len(recent) != 1 || recent[0].ID != "entry-4" {
				t.Errorf("recent data entries = %+v", recent)
			}

			limited, err := s.List(ctx, journal.Query{Limit: 2})
			if err != nil {
				t.Fatal(err)
			}
			if len(limited) != 2 {
				t.Errorf("limited = %d, want 2", len(limited))
			}
		})
	}
}

func TestStorage_Delete(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s, base)
			ctx := context.Background()

			deleted, err := s.DeleteBefore(ctx, base.Add(2*time.Hour))
			if err != nil {
				t.Fatal(err)
			}
			if deleted != 2 {
				t.Errorf("DeleteBefore() = %d, want 2", deleted)
			}

			deleted, err = s.DeleteOldest(ctx, 3)
			if err != nil {
				t.Fatal(err)
			}
			if deleted != 3 {
				t.Errorf("DeleteOldest() = %d, want 3", deleted)
			}

			n, err := s.Count(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if n != 1 {
				t.Errorf("Count() = %d, want 1", n)
			}

			left, _ := s.List(ctx, journal.Query{})
			if len(left) != 1 || left[0].ID != "entry-5" {
				t.Errorf("remaining = %+v", left)
			}
		})
	}
}

func TestStorage_Ping(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestMemoryStorage_Closed(t *testing.T) {
	s := NewMemoryStorage()
	s.Close()
	if err := s.Store(context.Background(), &journal.Entry{ID: "x"}); err != ErrClosed {
		t.Errorf("Store() after Close = %v, want ErrClosed", err)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(&config.JournalConfig{Backend: "memory"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStorage); !ok {
		t.Errorf("Open(memory) = %T", s)
	}

	if _, err := Open(&config.JournalConfig{Backend: "postgres"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	s, err = Open(&config.JournalConfig{
		Backend: "sqlite",
		SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "j.db")},
	})
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	s.Close()
}
