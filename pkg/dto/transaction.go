package dto

import (
	"time"

	"github.com/google/uuid"
)

// SplitCreate carries one category split of a transaction.
type SplitCreate struct {
	CategoryID uuid.UUID
	Amount     int64
}

// TransactionCreate carries the fields persisted for a new journal entry.
type TransactionCreate struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Kind        string
	Role        string
	Amount      int64
	Currency    string
	ValueDate   time.Time
	Note        string
	ActorID     uuid.UUID
	RecurringID *uuid.UUID
	Splits      []SplitCreate
}

// TransactionUpdate carries partial journal entry updates; nil means
// unchanged. Splits, when non-nil, fully replace the prior splits.
type TransactionUpdate struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Amount     *int64
	ValueDate  *time.Time
	Note       *string
	Splits     *[]SplitCreate
}

// TransactionRead is the read projection of a journal entry.
type TransactionRead struct {
	ID           uuid.UUID   `json:"id"`
	TenantID     uuid.UUID   `json:"tenant_id"`
	AccountID    uuid.UUID   `json:"account_id"`
	CategoryID   *uuid.UUID  `json:"category_id,omitempty"`
	Kind         string      `json:"kind"`
	Role         string      `json:"role,omitempty"`
	Amount       int64       `json:"amount"`
	AmountMajor  float64     `json:"amount_major"`
	Currency     string      `json:"currency"`
	ValueDate    time.Time   `json:"value_date"`
	Note         string      `json:"note,omitempty"`
	ActorID      uuid.UUID   `json:"actor_id"`
	RecurringID  *uuid.UUID  `json:"recurring_id,omitempty"`
	Revision     int         `json:"revision"`
	Splits       []SplitRead `json:"splits,omitempty"`
	Counterparty string      `json:"counterparty,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// SplitRead is the read projection of a category split.
type SplitRead struct {
	CategoryID uuid.UUID `json:"category_id"`
	Amount     int64     `json:"amount"`
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
// Transfer pairs are de-duplicated to the outgoing leg unless
// IncludeIncomingLegs is set.
type TransactionFilter struct {
	AccountID           uuid.UUID
	CategoryID          uuid.UUID
	Kind                string
	From                time.Time
	To                  time.Time
	NoteContains        string
	IncludeIncomingLegs bool
	Limit               int
	Offset              int
}

// OutboxRecordCreate carries a pending balance adjustment persisted in the
// same local transaction as its journal entry.
type OutboxRecordCreate struct {
	ID             uuid.UUID
	TransactionID  uuid.UUID
	AccountID      uuid.UUID
	Delta          int64
	IdempotencyKey string
}

// OutboxRecordRead is the read projection of a pending adjustment.
type OutboxRecordRead struct {
	ID             uuid.UUID
	TransactionID  uuid.UUID
	AccountID      uuid.UUID
	Delta          int64
	IdempotencyKey string
	Attempts       int
	LastError      string
	CreatedAt      time.Time
}
