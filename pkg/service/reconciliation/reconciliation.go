// Package reconciliation periodically verifies the balance invariant.
//
// For every account the reconciler recomputes the journal sum (opening
// entry plus all non-deleted signed effects) in the transaction store and
// compares it against the stored balance in the account store. A mismatch
// is reported, never auto-corrected: a pending outbox record makes a
// transient mismatch normal, so correction is an operator's call.
package reconciliation

import (
	"context"
	"log/slog"
	"time"

	"github.com/duitku/duitku/pkg/domain/events"
	"github.com/duitku/duitku/pkg/eventbus"
	accountrepo "github.com/duitku/duitku/pkg/repository/account"
	ledgerrepo "github.com/duitku/duitku/pkg/repository/ledger"
	"github.com/google/uuid"
)

// Divergence describes one account whose stored balance disagrees with the
// recomputed journal sum.
type Divergence struct {
	TenantID      uuid.UUID
	AccountID     uuid.UUID
	StoredBalance int64
	JournalSum    int64
}

// Reconciler sweeps all accounts on an interval.
type Reconciler struct {
	accounts accountrepo.Repository
	ledger   ledgerrepo.Repository
	bus      eventbus.Bus
	logger   *slog.Logger
	interval time.Duration
}

// New creates a Reconciler.
func New(
	accounts accountrepo.Repository,
	ledger ledgerrepo.Repository,
	bus eventbus.Bus,
	logger *slog.Logger,
	interval time.Duration,
) *Reconciler {
	return &Reconciler{
		accounts: accounts,
		ledger:   ledger,
		bus:      bus,
		logger:   logger.With("worker", "reconciler"),
		interval: interval,
	}
}

// Start sweeps on the configured interval until ctx is cancelled.
// Implements jobs.Job.
func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info("reconciler started", "interval", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			if _, err := r.Run(ctx); err != nil {
				r.logger.Error("reconciliation sweep failed", "error", err)
			}
		}
	}
}

// Run performs one full sweep and returns the divergences found. A failure
// to recompute one account is logged and skipped; one unreadable account
// must not blind the sweep to the rest.
func (r *Reconciler) Run(ctx context.Context) ([]Divergence, error) {
	accounts, err := r.accounts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var divergences []Divergence
	for _, acct := range accounts {
		if ctx.Err() != nil {
			return divergences, ctx.Err()
		}
		sum, err := r.ledger.SumEffects(ctx, acct.ID)
		if err != nil {
			r.logger.Error("journal sum failed", "account_id", acct.ID, "error", err)
			continue
		}
		if sum == acct.CurrentBalance {
			continue
		}
		d := Divergence{
			TenantID:      acct.TenantID,
			AccountID:     acct.ID,
			StoredBalance: acct.CurrentBalance,
			JournalSum:    sum,
		}
		divergences = append(divergences, d)
		r.logger.Warn("ledger divergence detected",
			"tenant_id", d.TenantID,
			"account_id", d.AccountID,
			"stored_balance", d.StoredBalance,
			"journal_sum", d.JournalSum,
			"difference", d.StoredBalance-d.JournalSum)
		_ = r.bus.Emit(ctx, events.LedgerDivergenceDetected{
			EventID:       uuid.New(),
			TenantID:      d.TenantID,
			AccountID:     d.AccountID,
			StoredBalance: d.StoredBalance,
			JournalSum:    d.JournalSum,
			Timestamp:     time.Now().UTC(),
		})
	}
	r.logger.Info("reconciliation sweep finished",
		"accounts", len(accounts), "divergences", len(divergences))
	return divergences, nil
}
