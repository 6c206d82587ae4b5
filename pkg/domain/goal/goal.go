// Package goal defines the savings-goal aggregate of the goal store.
package goal

import (
	"fmt"
	"time"

	"github.com/duitku/duitku/pkg/domain"
	"github.com/google/uuid"
)

// DisplayPrefix distinguishes goal names from account names wherever the two
// appear in the same list (e.g., the destination column of a transfer view).
const DisplayPrefix = "[Goal] "

// Goal represents a savings goal. Amounts are in minor units.
// AccumulatedAmount is maintained in lockstep with contribution rows by the
// goal store; it is a derived sum, not an account balance.
type Goal struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	Name              string
	TargetAmount      int64
	AccumulatedAmount int64
	Deadline          *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// DisplayName returns the goal name with the goal prefix applied.
func (g *Goal) DisplayName() string { return DisplayPrefix + g.Name }

// Progress returns the accumulated fraction of the target, clamped to [0, 1].
func (g *Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := float64(g.AccumulatedAmount) / float64(g.TargetAmount)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// Validate checks construction invariants.
func (g *Goal) Validate() error {
	if g.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenant is required", domain.ErrValidation)
	}
	if g.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if g.TargetAmount <= 0 {
		return fmt.Errorf("%w: target amount must be positive", domain.ErrValidation)
	}
	return nil
}

// Contribution records money moved into a goal. It references the outgoing
// journal entry on the source account; a goal transfer creates no incoming
// transaction.
type Contribution struct {
	ID            uuid.UUID
	GoalID        uuid.UUID
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Amount        int64
	Date          time.Time
	CreatedAt     time.Time
}
