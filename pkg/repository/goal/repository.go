// Package goal defines the data access contract of the goal store.
package goal

import (
	"context"

	"github.com/duitku/duitku/pkg/domain/goal"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines savings goal data access operations.
type Repository interface {
	Create(ctx context.Context, create dto.GoalCreate) error
	Get(ctx context.Context, tenantID, id uuid.UUID) (*goal.Goal, error)
	// Exists is the cheap probe used by the transfer coordinator to
	// resolve a polymorphic destination before falling back to account
	// semantics.
	Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*goal.Goal, error)
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error

	// AddContribution inserts the contribution row and increments the
	// goal's accumulated_amount in one local transaction.
	AddContribution(ctx context.Context, create dto.ContributionCreate) error
	// RemoveContribution deletes the contribution row and decrements the
	// goal's accumulated_amount in one local transaction, returning the
	// removed row so the caller can reverse the journal side.
	RemoveContribution(ctx context.Context, id uuid.UUID) (*goal.Contribution, error)
	GetContribution(ctx context.Context, id uuid.UUID) (*goal.Contribution, error)
	// ContributionByTransaction resolves the contribution funded by a
	// journal entry, or nil when the entry funds no goal. Used to resolve
	// the paired side of goal transfers in listings.
	ContributionByTransaction(ctx context.Context, transactionID uuid.UUID) (*goal.Contribution, error)
	ListContributions(ctx context.Context, goalID uuid.UUID) ([]*goal.Contribution, error)
}
