package dto

import (
	"time"

	"github.com/google/uuid"
)

// GoalCreate carries the fields persisted for a new savings goal.
type GoalCreate struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Name         string
	TargetAmount int64
	Deadline     *time.Time
}

// GoalRead is the read projection of a savings goal.
type GoalRead struct {
	ID                uuid.UUID  `json:"id"`
	TenantID          uuid.UUID  `json:"tenant_id"`
	Name              string     `json:"name"`
	TargetAmount      int64      `json:"target_amount"`
	AccumulatedAmount int64      `json:"accumulated_amount"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	Progress          float64    `json:"progress"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ContributionCreate carries the fields persisted for a goal contribution.
// The contribution row and the goal's accumulated_amount increment commit in
// one local transaction of the goal store.
type ContributionCreate struct {
	ID            uuid.UUID
	GoalID        uuid.UUID
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Amount        int64
	Date          time.Time
}

// ContributionRead is the read projection of a goal contribution.
type ContributionRead struct {
	ID            uuid.UUID `json:"id"`
	GoalID        uuid.UUID `json:"goal_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id"`
	Amount        int64     `json:"amount"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransferResult is returned by the transfer coordinator so callers can
// render a symmetric receipt. For goal transfers Incoming is a synthetic
// view pointing at the goal, not a persisted journal entry.
type TransferResult struct {
	Outgoing TransactionRead `json:"outgoing"`
	Incoming TransactionRead `json:"incoming"`
	LinkID   uuid.UUID       `json:"link_id,omitempty"`
	GoalID   uuid.UUID       `json:"goal_id,omitempty"`
}
