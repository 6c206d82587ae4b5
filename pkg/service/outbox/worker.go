// Package outbox drains pending balance adjustments into the account store.
//
// The worker is the asynchronous half of the journal-first write path: the
// journal entry and its outbox record commit together in the transaction
// store, then this worker applies the recorded delta through the account
// store's idempotent adjustment primitive. Crashes between the two halves
// only ever leave an adjustment pending, never lost and never doubled.
package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/duitku/duitku/pkg/domain/events"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/duitku/duitku/pkg/eventbus"
	accountrepo "github.com/duitku/duitku/pkg/repository/account"
	ledgerrepo "github.com/duitku/duitku/pkg/repository/ledger"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Worker polls the outbox and applies pending adjustments.
type Worker struct {
	outbox       ledgerrepo.OutboxRepository
	accounts     accountrepo.Repository
	bus          eventbus.Bus
	logger       *slog.Logger
	group        singleflight.Group
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
}

// New creates an outbox Worker.
func New(
	outbox ledgerrepo.OutboxRepository,
	accounts accountrepo.Repository,
	bus eventbus.Bus,
	logger *slog.Logger,
	pollInterval time.Duration,
	batchSize int,
	maxAttempts int,
) *Worker {
	return &Worker{
		outbox:       outbox,
		accounts:     accounts,
		bus:          bus,
		logger:       logger.With("worker", "outbox"),
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxAttempts:  maxAttempts,
	}
}

// Start polls until ctx is cancelled. Implements jobs.Job.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("outbox worker started",
		"poll_interval", w.pollInterval, "batch_size", w.batchSize)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessOnce(ctx); err != nil {
				w.logger.Error("outbox batch failed", "error", err)
			}
		}
	}
}

// ProcessOnce drains one batch of pending adjustments and returns how many
// were applied. Records past the attempt cap are left pending and logged so
// an operator can intervene; the reconciler surfaces their balance impact.
func (w *Worker) ProcessOnce(ctx context.Context) (int, error) {
	pending, err := w.outbox.ListPending(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, rec := range pending {
		if ctx.Err() != nil {
			return applied, ctx.Err()
		}
		if rec.Attempts >= w.maxAttempts {
			w.logger.Warn("outbox record exhausted its attempts",
				"record_id", rec.ID,
				"idempotency_key", rec.IdempotencyKey,
				"attempts", rec.Attempts,
				"last_error", rec.LastError)
			continue
		}
		if w.apply(ctx, rec) {
			applied++
		}
	}
	return applied, nil
}

// apply pushes one record's delta into the account store. Concurrent workers
// racing on the same key are collapsed in-process; across processes the
// account store's idempotency table settles the race.
func (w *Worker) apply(ctx context.Context, rec dto.OutboxRecordRead) bool {
	v, err, _ := w.group.Do(rec.IdempotencyKey, func() (any, error) {
		return w.accounts.AdjustBalance(ctx, rec.AccountID, rec.Delta, rec.IdempotencyKey)
	})
	if err != nil {
		w.logger.Error("balance adjustment failed",
			"record_id", rec.ID,
			"account_id", rec.AccountID,
			"idempotency_key", rec.IdempotencyKey,
			"error", err)
		if markErr := w.outbox.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
			w.logger.Error("marking outbox record failed", "record_id", rec.ID, "error", markErr)
		}
		return false
	}
	result := v.(dto.AdjustmentResult)
	if err := w.outbox.MarkDone(ctx, rec.ID); err != nil {
		// The adjustment is applied; the next pass replays the key and the
		// account store reports it as already applied.
		w.logger.Error("marking outbox record done failed", "record_id", rec.ID, "error", err)
		return false
	}
	_ = w.bus.Emit(ctx, events.BalanceAdjusted{
		EventID:        uuid.New(),
		AccountID:      rec.AccountID,
		Delta:          rec.Delta,
		NewBalance:     result.NewBalance,
		IdempotencyKey: rec.IdempotencyKey,
		Replayed:       result.Replayed,
		Timestamp:      time.Now().UTC(),
	})
	w.logger.Debug("balance adjustment applied",
		"account_id", rec.AccountID,
		"delta", rec.Delta,
		"new_balance", result.NewBalance,
		"replayed", result.Replayed)
	return true
}
