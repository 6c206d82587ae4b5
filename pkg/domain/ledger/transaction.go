// Package ledger defines the journal entities owned by the transaction store:
// transactions, category splits and transfer links.
//
// Stored amounts are always positive; direction is carried by the kind and,
// for transfers, by the role of the leg. The signed effect of an entry on its
// account balance is derived, never stored.
package ledger

import (
	"fmt"
	"time"

	"github.com/duitku/duitku/pkg/domain"
	"github.com/google/uuid"
)

// Kind classifies a journal entry.
type Kind string

// Transaction kinds.
const (
	KindIncome   Kind = "income"
	KindExpense  Kind = "expense"
	KindTransfer Kind = "transfer"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k == KindIncome || k == KindExpense || k == KindTransfer
}

// TransferRole distinguishes the two legs of a transfer pair. Empty for
// income and expense entries.
type TransferRole string

// Transfer roles.
const (
	RoleNone     TransferRole = ""
	RoleOutgoing TransferRole = "outgoing"
	RoleIncoming TransferRole = "incoming"
)

// Transaction represents a journal entry. Amount is in minor units and
// always positive.
type Transaction struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Kind        Kind
	Role        TransferRole
	Amount      int64
	Currency    string
	ValueDate   time.Time
	Note        string
	ActorID     uuid.UUID
	RecurringID *uuid.UUID
	Revision    int
	Splits      []CategorySplit
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// CategorySplit divides a transaction amount across categories.
// The split amounts of one transaction must sum to its amount.
type CategorySplit struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	CategoryID    uuid.UUID
	Amount        int64
}

// TransferLink binds the two legs of an account-to-account transfer.
// Created atomically with both legs inside the transaction store.
type TransferLink struct {
	ID         uuid.UUID
	OutgoingID uuid.UUID
	IncomingID uuid.UUID
	CreatedAt  time.Time
}

// SignedEffect returns the delta a journal entry applies to its account
// balance: positive for income and incoming transfer legs, negative for
// expense and outgoing legs. Expense on a debt account also subtracts,
// moving the negative balance further negative.
func SignedEffect(kind Kind, role TransferRole, amount int64) int64 {
	switch kind {
	case KindIncome:
		return amount
	case KindExpense:
		return -amount
	case KindTransfer:
		if role == RoleIncoming {
			return amount
		}
		return -amount
	}
	return 0
}

// Effect returns the signed delta t applies to its account balance.
func (t *Transaction) Effect() int64 {
	return SignedEffect(t.Kind, t.Role, t.Amount)
}

// ValidateSplits checks the split-sum law: when splits are present their
// amounts must be positive and sum exactly to the transaction amount.
func ValidateSplits(amount int64, splits []CategorySplit) error {
	if len(splits) == 0 {
		return nil
	}
	var sum int64
	for _, s := range splits {
		if s.Amount <= 0 {
			return fmt.Errorf("%w: split amount must be positive", domain.ErrValidation)
		}
		if s.CategoryID == uuid.Nil {
			return fmt.Errorf("%w: split category is required", domain.ErrValidation)
		}
		sum += s.Amount
	}
	if sum != amount {
		return fmt.Errorf("%w: splits sum to %d, transaction amount is %d",
			domain.ErrSplitSumMismatch, sum, amount)
	}
	return nil
}

// AdjustmentIntent names the purpose of a balance adjustment derived from a
// journal entry. Together with the entry id it forms the idempotency key, so
// a retried adjustment is a no-op on the second delivery.
type AdjustmentIntent string

// Adjustment intents.
const (
	IntentApply   AdjustmentIntent = "apply"
	IntentReverse AdjustmentIntent = "reverse"
)

// RevisionIntent returns the intent for the balance delta of the n-th
// update of an entry, optionally suffixed for the leg of an account move.
func RevisionIntent(revision int, leg string) AdjustmentIntent {
	if leg == "" {
		return AdjustmentIntent(fmt.Sprintf("rev-%d", revision))
	}
	return AdjustmentIntent(fmt.Sprintf("rev-%d-%s", revision, leg))
}

// AdjustmentKey derives the deterministic idempotency key for a balance
// adjustment from the journal entry id and intent.
func AdjustmentKey(transactionID uuid.UUID, intent AdjustmentIntent) string {
	return fmt.Sprintf("%s:%s", transactionID, intent)
}
