// Package account defines the data access contract of the account store.
//
// The account store is independent of the transaction and goal stores: no
// transaction here ever spans another store.
package account

import (
	"context"

	"github.com/duitku/duitku/pkg/domain/account"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines account data access operations.
type Repository interface {
	Create(ctx context.Context, create dto.AccountCreate) error
	// Get returns a non-deleted account scoped to a tenant.
	Get(ctx context.Context, tenantID, id uuid.UUID) (*account.Account, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*account.Account, error)
	// ListAll returns all non-deleted accounts across tenants. Used by the
	// reconciler only.
	ListAll(ctx context.Context) ([]*account.Account, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, update dto.AccountUpdate) error
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error

	// AdjustBalance is the only sanctioned mutator of current_balance.
	// It applies the signed delta as a single atomic increment, never a
	// read-modify-write. The idempotency key makes retries safe: a key
	// already applied with the same delta returns the recorded outcome
	// with Replayed set; the same key with a different delta returns
	// domain.ErrConflict.
	AdjustBalance(
		ctx context.Context,
		accountID uuid.UUID,
		delta int64,
		idempotencyKey string,
	) (dto.AdjustmentResult, error)
}
