// Package worker keeps the spreadsheet mirror in step with the store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/sheets"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Source is the read side the worker needs from the repository.
type Source interface {
	ListByOwner(ctx context.Context, ownerID string) ([]core.Transaction, error)
	ListOwners(ctx context.Context) ([]string, error)
}

// MirrorWorker rewrites an owner's mirror from the repository whenever that
// owner's set changes, and periodically for every owner as a backstop for
// lost messages.
type MirrorWorker struct {
	source      Source
	mirror      sheets.Mirror
	concurrency int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMirrorWorker creates a worker reading source and writing mirror. A
// non-positive concurrency uses the default.
func NewMirrorWorker(source Source, mirror sheets.Mirror, concurrency int) *MirrorWorker {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &MirrorWorker{
		source:      source,
		mirror:      mirror,
		concurrency: concurrency,
		locks:       make(map[string]*sync.Mutex),
	}
}

// HandleChange processes one change event from AMQP.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.TransactionsChangedMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		"owner_id", msg.OwnerID,
		"kind", msg.Kind,
		"transaction_id", msg.TransactionID)
	return w.SyncOwner(ctx, msg.OwnerID)
}

// SyncOwner reloads the owner's full set and replaces the mirror with it.
// Calls for the same owner are serialized so the last write carries the
// newest set.
func (w *MirrorWorker) SyncOwner(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return core.ErrMissingOwner
	}
	lock := w.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	txs, err := w.source.ListByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list owner %s: %w", ownerID, err)
	}
	if err := w.mirror.ReplaceOwner(ctx, ownerID, txs); err != nil {
		return fmt.Errorf("mirror owner %s: %w", ownerID, err)
	}
	return nil
}

// ResyncAll mirrors every owner known to the repository. Owners that fail do
// not stop the others; their errors are joined into the result.
func (w *MirrorWorker) ResyncAll(ctx context.Context) error {
	owners, err := w.source.ListOwners(ctx)
	if err != nil {
		return fmt.Errorf("list owners: %w", err)
	}
	if len(owners) == 0 {
		slog.InfoContext(ctx, "No owners to resync")
		return nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, owner := range owners {
		g.Go(func() error {
			if err := w.SyncOwner(gctx, owner); err != nil {
				slog.ErrorContext(gctx, "Failed to resync owner", "owner_id", owner, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.InfoContext(ctx, "Resync completed",
		"owners", len(owners),
		"errors", len(errs))
	return errors.Join(errs...)
}

// Run resyncs every owner immediately and then once per interval until ctx
// is done.
func (w *MirrorWorker) Run(ctx context.Context, interval time.Duration) {
	if err := w.ResyncAll(ctx); err != nil {
		slog.WarnContext(ctx, "Startup resync incomplete", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ResyncAll(ctx); err != nil {
				slog.WarnContext(ctx, "Periodic resync incomplete", "error", err)
			}
		}
	}
}

func (w *MirrorWorker) ownerLock(ownerID string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.locks[ownerID]
	if !ok {
		l = &sync.Mutex{}
		w.locks[ownerID] = l
	}
	return l
}
