// Package model holds the GORM models of the three stores. The stores are
// independent databases; models are grouped here but each is migrated onto
// its own connection (see infra.Migrate).
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- account store ---

// Account represents an account record in the account store.
type Account struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID `gorm:"type:uuid;index;not null"`
	Name           string    `gorm:"size:100;not null"`
	Type           string    `gorm:"size:20;not null"`
	Currency       string    `gorm:"type:varchar(3);not null;default:'IDR'"`
	OpeningBalance int64
	CurrentBalance int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// BalanceAdjustment records one applied balance adjustment, keyed by its
// idempotency key. The insert and the balance increment commit together in
// the account store, so a key present here means its delta was applied
// exactly once.
type BalanceAdjustment struct {
	IdempotencyKey string    `gorm:"primary_key;size:120"`
	AccountID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Delta          int64
	NewBalance     int64
	CreatedAt      time.Time
}

// --- transaction store ---

// Transaction represents a persisted journal entry.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	AccountID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid"`
	Kind        string          `gorm:"size:10;not null"`
	Role        string          `gorm:"size:10"`
	Amount      int64           `gorm:"not null"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	ValueDate   time.Time       `gorm:"index;not null"`
	Note        string          `gorm:"size:500"`
	ActorID     uuid.UUID       `gorm:"type:uuid"`
	RecurringID *uuid.UUID      `gorm:"type:uuid"`
	Revision    int             `gorm:"not null;default:0"`
	Splits      []CategorySplit `gorm:"foreignKey:TransactionID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// CategorySplit divides a transaction amount across categories.
type CategorySplit struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID `gorm:"type:uuid;index;not null"`
	CategoryID    uuid.UUID `gorm:"type:uuid;not null"`
	Amount        int64     `gorm:"not null"`
}

// TransferLink binds the two legs of an account-to-account transfer.
type TransferLink struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	OutgoingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	IncomingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	CreatedAt  time.Time
}

// OutboxRecord is a pending balance adjustment, committed in the same local
// transaction as its journal entry and processed by the outbox worker.
type OutboxRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	TransactionID  uuid.UUID `gorm:"type:uuid;index;not null"`
	AccountID      uuid.UUID `gorm:"type:uuid;not null"`
	Delta          int64     `gorm:"not null"`
	IdempotencyKey string    `gorm:"uniqueIndex;size:120;not null"`
	Status         string    `gorm:"size:10;index;not null;default:'pending'"`
	Attempts       int       `gorm:"not null;default:0"`
	LastError      string    `gorm:"size:500"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// --- goal store ---

// Goal represents a savings goal record in the goal store.
type Goal struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID          uuid.UUID `gorm:"type:uuid;index;not null"`
	Name              string    `gorm:"size:100;not null"`
	TargetAmount      int64     `gorm:"not null"`
	AccumulatedAmount int64     `gorm:"not null;default:0"`
	Deadline          *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// GoalContribution records money moved into a goal from an account.
type GoalContribution struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	GoalID        uuid.UUID `gorm:"type:uuid;index;not null"`
	TransactionID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	AccountID     uuid.UUID `gorm:"type:uuid;not null"`
	Amount        int64     `gorm:"not null"`
	Date          time.Time `gorm:"not null"`
	CreatedAt     time.Time
}
