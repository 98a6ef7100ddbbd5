package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"mango/internal/apperr"
	"mango/internal/events"
	"mango/internal/records"
)

const (
	defaultInterval  = 5 * time.Second
	defaultBatchSize = 1000
)

// Lock is an optional cross-process guard around one ingestion cycle.
// When several workers share the upstream table, only the lock holder
// runs a cycle; the others skip their tick.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// AccountDirectory answers whether an account name is registered.
// Satisfied by accounts.Service.
type AccountDirectory interface {
	Exists(ctx context.Context, account string) (bool, error)
}

// Config holds worker tuning.
type Config struct {
	Interval  time.Duration // How often a cycle runs.
	BatchSize int           // Rows fetched per cycle.
}

// Worker periodically drains unchecked upstream rows into the record
// store. Each cycle fetches a batch, normalizes and persists every row,
// then flags the imported rows so they are not fetched again.
type Worker struct {
	source   Source
	records  *records.Service
	events   *events.Service
	accounts AccountDirectory
	lock     Lock
	log      *slog.Logger

	interval  time.Duration
	batchSize int
	running   atomic.Bool
}

func NewWorker(source Source, rec *records.Service, ev *events.Service, dir AccountDirectory, lock Lock, log *slog.Logger, cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		source:    source,
		records:   rec,
		events:    ev,
		accounts:  dir,
		lock:      lock,
		log:       log,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
	}
}

// Run blocks, executing cycles on a ticker until ctx is canceled. A
// cycle that fails logs the error and waits for the next tick.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("ingest worker starting",
		"interval", w.interval.String(), "batch_size", w.batchSize)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("ingest worker stopping")
			return
		case <-ticker.C:
			if err := w.Cycle(ctx); err != nil {
				w.log.Error("ingest cycle failed", "error", err)
			}
		}
	}
}

// Cycle runs one fetch-normalize-persist-flag pass. Cycles are
// single-flight: a tick that arrives while the previous cycle is still
// running is skipped, in-process via an atomic guard and across
// processes via the optional Lock.
func (w *Worker) Cycle(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		w.log.Debug("ingest cycle still running, skipping tick")
		return nil
	}
	defer w.running.Store(false)

	if w.lock != nil {
		ok, err := w.lock.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("acquire ingest lock: %w", err)
		}
		if !ok {
			w.log.Debug("ingest lock held elsewhere, skipping cycle")
			return nil
		}
		defer func() {
			if err := w.lock.Release(ctx); err != nil {
				w.log.Warn("release ingest lock", "error", err)
			}
		}()
	}

	batch, err := w.source.FetchBatch(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("fetch batch: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}

	imported, duplicates, failed := 0, 0, 0
	for _, row := range batch {
		switch err := w.ingestOne(ctx, row); {
		case err == nil:
			imported++
		case errors.As(err, new(*apperr.DuplicateError)):
			// Already stored by an earlier run; flag it so it is not
			// fetched again.
			duplicates++
			w.log.Debug("duplicate upstream row", "uniqueid", row.UniqueID)
			w.markChecked(ctx, row.UniqueID)
		default:
			// Leave the row unchecked so the next cycle retries it.
			failed++
			w.log.Warn("upstream row rejected",
				"uniqueid", row.UniqueID, "error", err)
		}
	}

	w.log.Info("ingest cycle complete",
		"fetched", len(batch), "imported", imported,
		"duplicates", duplicates, "failed", failed)
	return nil
}

func (w *Worker) ingestOne(ctx context.Context, row Row) error {
	rec, err := w.records.Create(ctx, row.Fields)
	if err != nil {
		return err
	}
	w.assign(ctx, rec.Account, rec.AccountCode, rec.UUID)
	if w.events != nil {
		// Best-effort; the record is already stored.
		if _, err := w.events.AnnounceRecord(ctx, rec.Account, rec.UUID); err != nil {
			w.log.Warn("announce record", "uuid", rec.UUID, "error", err)
		}
	}
	w.markChecked(ctx, row.UniqueID)
	return nil
}

// assign attributes a freshly stored record to its account when that
// account is registered. Records for unknown accounts stay orphaned;
// they surface through the unassigned listing until claimed.
func (w *Worker) assign(ctx context.Context, account, accountcode, recordUUID string) {
	if w.accounts == nil || account == "" {
		return
	}
	known, err := w.accounts.Exists(ctx, account)
	if err != nil {
		w.log.Warn("account lookup", "account", account, "error", err)
		return
	}
	if !known {
		return
	}
	if err := w.records.SetAssigned(ctx, accountcode, recordUUID); err != nil {
		w.log.Warn("assign record", "uuid", recordUUID, "error", err)
	}
}

func (w *Worker) markChecked(ctx context.Context, uniqueid string) {
	if uniqueid == "" {
		return
	}
	if err := w.source.MarkChecked(ctx, uniqueid); err != nil {
		w.log.Warn("mark row checked", "uniqueid", uniqueid, "error", err)
	}
}
