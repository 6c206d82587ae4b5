package transaction

import (
	"time"

	"github.com/google/uuid"
)

// SplitRequest is one category split of a transaction body.
type SplitRequest struct {
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
	Amount     int64     `json:"amount" validate:"gt=0"`
}

// CreateRequest is the body of POST /transactions. Amount is in minor units
// and strictly positive; the kind decides the sign of the balance effect.
// Transfers are created through POST /transfers, not here.
type CreateRequest struct {
	AccountID   uuid.UUID      `json:"account_id" validate:"required"`
	CategoryID  *uuid.UUID     `json:"category_id"`
	Kind        string         `json:"kind" validate:"required,oneof=income expense"`
	Amount      int64          `json:"amount" validate:"gt=0"`
	Currency    string         `json:"currency" validate:"omitempty,len=3,alpha"`
	ValueDate   time.Time      `json:"value_date"`
	Note        string         `json:"note" validate:"max=500"`
	RecurringID *uuid.UUID     `json:"recurring_id"`
	Splits      []SplitRequest `json:"splits" validate:"omitempty,dive"`
}

// UpdateRequest is the body of PATCH /transactions/:id. Absent fields stay
// unchanged; splits, when present, replace the prior splits entirely.
type UpdateRequest struct {
	AccountID  *uuid.UUID      `json:"account_id"`
	CategoryID *uuid.UUID      `json:"category_id"`
	Amount     *int64          `json:"amount" validate:"omitempty,gt=0"`
	ValueDate  *time.Time      `json:"value_date"`
	Note       *string         `json:"note" validate:"omitempty,max=500"`
	Splits     *[]SplitRequest `json:"splits" validate:"omitempty,dive"`
}
