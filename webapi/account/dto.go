package account

// CreateRequest is the body of POST /accounts. OpeningBalance is in minor
// units; debt account types record it as money owed.
type CreateRequest struct {
	Name           string `json:"name" validate:"required,max=120"`
	Type           string `json:"type" validate:"required,oneof=cash bank e-wallet credit-card loan generic-asset"`
	Currency       string `json:"currency" validate:"omitempty,len=3,alpha"`
	OpeningBalance int64  `json:"opening_balance" validate:"gte=0"`
}

// UpdateRequest is the body of PATCH /accounts/:id.
type UpdateRequest struct {
	Name *string `json:"name" validate:"omitempty,max=120"`
}
