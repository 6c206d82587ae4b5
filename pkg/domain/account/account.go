// Package account defines the Account aggregate of the account store.
//
// An account's current balance is mutated exclusively through the account
// store's atomic AdjustBalance primitive; the entity here never mutates
// its own balance in response to a transaction.
package account

import (
	"fmt"
	"time"

	"github.com/duitku/duitku/pkg/domain"
	"github.com/duitku/duitku/pkg/money"
	"github.com/google/uuid"
)

// Type classifies an account. Asset types carry a conceptually non-negative
// balance; debt types (credit card, loan) carry a balance ≤ 0 where more
// negative means more debt owed.
type Type string

// Account types.
const (
	TypeCash       Type = "cash"
	TypeBank       Type = "bank"
	TypeEWallet    Type = "e-wallet"
	TypeCreditCard Type = "credit-card"
	TypeLoan       Type = "loan"
	TypeAsset      Type = "generic-asset"
)

// IsValid reports whether t is a known account type.
func (t Type) IsValid() bool {
	switch t {
	case TypeCash, TypeBank, TypeEWallet, TypeCreditCard, TypeLoan, TypeAsset:
		return true
	}
	return false
}

// IsDebt reports whether t is a liability account type.
func (t Type) IsDebt() bool {
	return t == TypeCreditCard || t == TypeLoan
}

// BalanceStatus is a purely presentational classification of a balance
// against a configured threshold.
type BalanceStatus string

// Balance statuses.
const (
	BalanceEmpty      BalanceStatus = "empty"
	BalanceLow        BalanceStatus = "low"
	BalanceSufficient BalanceStatus = "sufficient"
)

// StatusFor classifies a balance in minor units against a threshold.
func StatusFor(balance, threshold int64) BalanceStatus {
	switch {
	case balance <= 0:
		return BalanceEmpty
	case balance < threshold:
		return BalanceLow
	default:
		return BalanceSufficient
	}
}

// Account represents an account record owned by the account store.
// Balance fields are in minor currency units.
type Account struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Name           string
	Type           Type
	Currency       money.Code
	OpeningBalance int64
	CurrentBalance int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// Balance returns the current balance as Money.
func (a *Account) Balance() money.Money {
	return money.FromData(a.CurrentBalance, a.Currency.String())
}

// Builder assembles a new Account while enforcing construction invariants.
type Builder struct {
	account Account
	errs    []error
}

// New starts building an Account.
func New() *Builder {
	return &Builder{account: Account{
		ID:       uuid.New(),
		Currency: money.DefaultCode,
		Type:     TypeCash,
	}}
}

// WithTenantID sets the owning tenant.
func (b *Builder) WithTenantID(id uuid.UUID) *Builder {
	b.account.TenantID = id
	return b
}

// WithName sets the display name.
func (b *Builder) WithName(name string) *Builder {
	b.account.Name = name
	return b
}

// WithType sets the account type.
func (b *Builder) WithType(t Type) *Builder {
	if !t.IsValid() {
		b.errs = append(b.errs, fmt.Errorf("%w: unknown account type %q", domain.ErrValidation, t))
		return b
	}
	b.account.Type = t
	return b
}

// WithCurrency sets the account currency.
func (b *Builder) WithCurrency(code money.Code) *Builder {
	if !code.IsValid() {
		b.errs = append(b.errs, fmt.Errorf("%w: invalid currency %q", domain.ErrValidation, code))
		return b
	}
	b.account.Currency = code
	return b
}

// WithOpeningBalance sets the opening balance in minor units. The stored
// value is always non-negative; debt accounts flip the sign on the seeded
// journal entry, not here.
func (b *Builder) WithOpeningBalance(minor int64) *Builder {
	if minor < 0 {
		b.errs = append(b.errs, fmt.Errorf("%w: opening balance cannot be negative", domain.ErrValidation))
		return b
	}
	b.account.OpeningBalance = minor
	return b
}

// Build validates and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.account.TenantID == uuid.Nil {
		b.errs = append(b.errs, fmt.Errorf("%w: tenant is required", domain.ErrValidation))
	}
	if b.account.Name == "" {
		b.errs = append(b.errs, fmt.Errorf("%w: name is required", domain.ErrValidation))
	}
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	now := time.Now().UTC()
	b.account.CreatedAt = now
	b.account.UpdatedAt = now
	a := b.account
	return &a, nil
}
