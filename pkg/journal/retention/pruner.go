package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"voygen/gateway/pkg/journal"
)

// Config contains retention settings.
type Config struct {
	// Days is how long entries are kept. 0 keeps entries forever.
	Days int

	// Schedule is a standard cron expression for pruning runs.
	Schedule string

	// MaxRecords caps the number of stored entries. 0 means unlimited.
	MaxRecords int64
}

// PruneCounter is notified of pruned entries. *metrics.Collector satisfies it.
type PruneCounter interface {
	RecordJournalPruned(n int64)
}

// Pruner enforces retention on a journal store.
type Pruner struct {
	storage journal.Storage
	config  Config
	counter PruneCounter
	logger  *slog.Logger
	now     func() time.Time
}

// NewPruner creates a pruner. counter may be nil.
func NewPruner(storage journal.Storage, cfg Config, counter PruneCounter) *Pruner {
	return &Pruner{
		storage: storage,
		config:  cfg,
		counter: counter,
		logger:  slog.Default().With("component", "journal.retention"),
		now:     time.Now,
	}
}

// Prune deletes entries older than the retention period, then the oldest
// entries beyond MaxRecords. It returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.Days > 0 {
		cutoff := p.now().AddDate(0, 0, -p.config.Days)
		deleted, err := p.storage.DeleteBefore(ctx, cutoff)
		if err != nil {
			return total, fmt.Errorf("prune by age failed: %w", err)
		}
		total += deleted
		p.logger.Debug("pruned journal by age", "deleted_count", deleted, "cutoff", cutoff)
	}

	if p.config.MaxRecords > 0 {
		count, err := p.storage.Count(ctx)
		if err != nil {
			return total, fmt.Errorf("failed to count entries: %w", err)
		}
		if excess := count - p.config.MaxRecords; excess > 0 {
			deleted, err := p.storage.DeleteOldest(ctx, excess)
			if err != nil {
				return total, fmt.Errorf("prune by count failed: %w", err)
			}
			total += deleted
			p.logger.Debug("pruned journal by count", "deleted_count", deleted, "max_records", p.config.MaxRecords)
		}
	}

	if total > 0 {
		p.logger.Info("journal pruning completed",
			"total_deleted", total,
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
		if p.counter != nil {
			p.counter.RecordJournalPruned(total)
		}
	}

	return total, nil
}
