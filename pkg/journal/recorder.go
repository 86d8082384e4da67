package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DropCounter is notified when an entry is dropped because the write queue
// is full. *metrics.Collector satisfies it.
type DropCounter interface {
	RecordJournalDropped()
}

// Recorder writes journal entries asynchronously so upstream calls never
// wait on storage. A nil *Recorder accepts and discards entries.
type Recorder struct {
	storage      Storage
	entries      chan *Entry
	drops        DropCounter
	writeTimeout time.Duration
	logger       *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewRecorder starts a recorder writing to storage through a queue of
// bufferSize entries.
func NewRecorder(storage Storage, bufferSize int, drops DropCounter) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	r := &Recorder{
		storage:      storage,
		entries:      make(chan *Entry, bufferSize),
		drops:        drops,
		writeTimeout: 5 * time.Second,
		logger:       slog.Default().With("component", "journal.recorder"),
		done:         make(chan struct{}),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// Record enqueues e, filling in ID and CreatedAt when unset. It never
// blocks: when the queue is full the entry is dropped and counted.
func (r *Recorder) Record(e *Entry) {
	if r == nil || e == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	select {
	case <-r.done:
		return
	default:
	}

	select {
	case r.entries <- e:
	default:
		if r.drops != nil {
			r.drops.RecordJournalDropped()
		}
		r.logger.Warn("journal queue full, dropping entry",
			"upstream", e.Upstream,
			"method", e.Method,
			"request_id", e.RequestID,
		)
	}
}

// Close stops accepting entries, drains the queue, and waits for pending
// writes. It does not close the storage.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case e := <-r.entries:
			r.write(e)
		case <-r.done:
			for {
				select {
				case e := <-r.entries:
					r.write(e)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(e *Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, e); err != nil {
		r.logger.Error("failed to store journal entry",
			"entry_id", e.ID,
			"request_id", e.RequestID,
			"error", err,
		)
	}
}
