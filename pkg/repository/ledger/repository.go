// Package ledger defines the data access contract of the transaction store.
//
// Journal writes for one logical operation (entry + splits + transfer link +
// outbox record) commit in a single local transaction via the UnitOfWork;
// that local transaction is the unit of atomicity and never spans the
// account or goal stores.
package ledger

import (
	"context"

	"github.com/duitku/duitku/pkg/domain/ledger"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines journal entry data access operations.
type Repository interface {
	Create(ctx context.Context, create dto.TransactionCreate) error
	// Get returns a non-deleted entry with its splits, scoped to a tenant.
	Get(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error)
	// Save persists the mutated fields of an updated entry and replaces
	// its splits when they changed.
	Save(ctx context.Context, tx *ledger.Transaction, replaceSplits bool) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter dto.TransactionFilter) ([]*ledger.Transaction, error)
	// ListByIDs returns the non-deleted entries with the given IDs, scoped
	// to a tenant, in one read.
	ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*ledger.Transaction, error)

	CreateLink(ctx context.Context, link *ledger.TransferLink) error
	// LinkFor returns the transfer link containing the given entry on
	// either side, or nil when the entry is not a transfer leg.
	LinkFor(ctx context.Context, transactionID uuid.UUID) (*ledger.TransferLink, error)
	// LinksForOutgoing returns the transfer links whose outgoing side is in
	// ids, keyed by outgoing entry ID.
	LinksForOutgoing(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ledger.TransferLink, error)

	// SumEffects recomputes Σ signed effects of all non-deleted entries of
	// an account. Used by the reconciler.
	SumEffects(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// OutboxRepository persists pending balance adjustments. Rows are written in
// the same local transaction as the journal entry they compensate for, which
// is what makes the journal-first saga crash-safe.
type OutboxRepository interface {
	Enqueue(ctx context.Context, rec dto.OutboxRecordCreate) error
	ListPending(ctx context.Context, limit int) ([]dto.OutboxRecordRead, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
}

// UnitOfWork provides the transaction boundary of the transaction store and
// repository access bound to that boundary.
type UnitOfWork interface {
	// Do runs fn inside one local store transaction. Repositories obtained
	// from the UnitOfWork passed to fn share that transaction.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error
	Transactions() Repository
	Outbox() OutboxRepository
}
