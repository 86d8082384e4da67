package storage

import (
	"fmt"

	"voygen/gateway/pkg/config"
	"voygen/gateway/pkg/journal"
)

// Open returns the backend selected by cfg.Backend.
func Open(cfg *config.JournalConfig) (journal.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "sqlite", "":
		return NewSQLiteStorage(SQLiteConfig{
			Path:        cfg.SQLite.Path,
			WALMode:     cfg.SQLite.WALMode,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown journal backend %q", cfg.Backend)
	}
}
