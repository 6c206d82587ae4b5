// Package dto defines the data transfer objects passed between the service
// and repository layers. Amounts are in minor currency units throughout.
package dto

import (
	"time"

	"github.com/google/uuid"
)

// AccountCreate carries the fields persisted for a new account.
type AccountCreate struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Name           string
	Type           string
	Currency       string
	OpeningBalance int64
}

// AccountUpdate carries the mutable account fields; nil means unchanged.
// CurrentBalance is deliberately absent: balances move only through
// AdjustBalance.
type AccountUpdate struct {
	Name *string
}

// AccountRead is the read projection of an account.
type AccountRead struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Currency       string    `json:"currency"`
	OpeningBalance int64     `json:"opening_balance"`
	CurrentBalance int64     `json:"current_balance"`
	// CurrentBalanceMajor is the balance converted to major units at the
	// read boundary; internal arithmetic never touches it.
	CurrentBalanceMajor float64 `json:"current_balance_major"`
	BalanceStatus       string  `json:"balance_status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AdjustmentResult is returned by the account store's AdjustBalance
// primitive. Replayed is true when the idempotency key had already been
// applied and the stored outcome was returned instead of re-applying.
type AdjustmentResult struct {
	NewBalance int64
	Replayed   bool
}
