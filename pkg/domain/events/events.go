// Package events defines the domain events emitted by the ledger core.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every domain event.
type Event interface {
	Type() string
}

// TransactionPosted is emitted after a journal entry and its outbox record
// have committed in the transaction store.
type TransactionPosted struct {
	EventID       uuid.UUID
	TenantID      uuid.UUID
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Kind          string
	Amount        int64
	Currency      string
	Timestamp     time.Time
}

// Type returns the event type name.
func (e TransactionPosted) Type() string { return "TransactionPosted" }

// TransactionReversed is emitted when a journal entry is soft-deleted and a
// reversing adjustment has been enqueued.
type TransactionReversed struct {
	EventID       uuid.UUID
	TenantID      uuid.UUID
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Delta         int64
	Timestamp     time.Time
}

// Type returns the event type name.
func (e TransactionReversed) Type() string { return "TransactionReversed" }

// TransferCreated is emitted after both legs and the transfer link have
// committed, or after the single leg of a goal transfer has committed.
type TransferCreated struct {
	EventID       uuid.UUID
	TenantID      uuid.UUID
	OutgoingID    uuid.UUID
	IncomingID    uuid.UUID // uuid.Nil for goal transfers
	GoalID        uuid.UUID // uuid.Nil for account-to-account transfers
	SourceAccount uuid.UUID
	Amount        int64
	Currency      string
	Timestamp     time.Time
}

// Type returns the event type name.
func (e TransferCreated) Type() string { return "TransferCreated" }

// ContributionAdded is emitted after a goal contribution has committed in
// the goal store.
type ContributionAdded struct {
	EventID        uuid.UUID
	TenantID       uuid.UUID
	GoalID         uuid.UUID
	ContributionID uuid.UUID
	TransactionID  uuid.UUID
	Amount         int64
	Timestamp      time.Time
}

// Type returns the event type name.
func (e ContributionAdded) Type() string { return "ContributionAdded" }

// BalanceAdjusted is emitted by the outbox worker once an adjustment has
// been applied (or confirmed already applied) by the account store.
type BalanceAdjusted struct {
	EventID        uuid.UUID
	AccountID      uuid.UUID
	Delta          int64
	NewBalance     int64
	IdempotencyKey string
	Replayed       bool
	Timestamp      time.Time
}

// Type returns the event type name.
func (e BalanceAdjusted) Type() string { return "BalanceAdjusted" }

// LedgerDivergenceDetected is emitted by the reconciler when a stored
// balance disagrees with the recomputed journal sum. Operational alert,
// never silently auto-corrected.
type LedgerDivergenceDetected struct {
	EventID       uuid.UUID
	TenantID      uuid.UUID
	AccountID     uuid.UUID
	StoredBalance int64
	JournalSum    int64
	Timestamp     time.Time
}

// Type returns the event type name.
func (e LedgerDivergenceDetected) Type() string { return "LedgerDivergenceDetected" }
