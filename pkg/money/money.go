// Package money provides functionality for handling monetary values.
//
// It is a value object that represents a monetary value in a specific currency.
// Invariants:
//   - Amount is always stored in the smallest currency unit (e.g., cents).
//   - Currency code must be valid ISO 4217 (3 uppercase letters).
//   - All arithmetic operations require matching currencies.
//
// Conversion between major and minor units happens only at the system
// boundary; internal arithmetic is pure int64 and never touches floats.
package money

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
)

var (
	// ErrInvalidAmount is returned when an invalid amount is provided.
	ErrInvalidAmount = fmt.Errorf("invalid amount")

	// ErrAmountExceedsMaxSafeInt is returned when an amount exceeds the
	// maximum safe integer value.
	ErrAmountExceedsMaxSafeInt = fmt.Errorf("amount exceeds maximum safe integer value")

	// ErrInvalidCurrency is returned when an invalid currency code is provided
	// or when performing operations on money with different currencies.
	ErrInvalidCurrency = fmt.Errorf("invalid currency code")
)

// Amount represents a monetary amount as an integer in the
// smallest currency unit (e.g., cents for USD).
type Amount = int64

// Currency represents a monetary unit with its standard decimal places.
type Currency struct {
	Code     Code // 3-letter ISO 4217 code (e.g., "IDR")
	Decimals int  // Number of decimal places (0-8)
}

// IsValid checks if the currency is valid.
func (c Currency) IsValid() bool {
	if c.Decimals < 0 || c.Decimals > 8 {
		return false
	}
	return c.Code.IsValid()
}

// String returns the currency code as a string.
func (c Currency) String() string { return string(c.Code) }

// Money represents a monetary value in a specific currency.
// Invariants:
//   - Amount is always stored in the smallest currency unit.
//   - Currency must be valid (valid ISO 4217 code and valid decimal places).
//   - All arithmetic operations require matching currencies.
type Money struct {
	amount   Amount
	currency Currency
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"amount":   m.amount,
		"currency": m.currency.Code,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	var aux struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	currency := Code(aux.Currency).ToCurrency()
	if !currency.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidCurrency, aux.Currency)
	}
	m.amount = aux.Amount
	m.currency = currency
	return nil
}

// Zero creates a Money object with zero amount in the specified currency.
func Zero(c Currency) Money {
	return Money{amount: 0, currency: c}
}

// New creates a new Money value object from an amount expressed in major
// units (e.g., 12.50 for USD 12.50) and a currency. The amount is converted
// to the smallest currency unit using round-half-up.
//
// The currency parameter can be a Code, a Currency, or a string like "IDR".
func New(amount float64, currency any) (Money, error) {
	c, err := resolveCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	minor, err := toMinorUnits(amount, c)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: minor, currency: c}, nil
}

// Must creates a Money object from the given amount and currency and panics
// if any invariant is violated. Intended for tests and static initializers.
func Must(amount float64, currency any) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(fmt.Sprintf("money.Must(%v, %v): %v", amount, currency, err))
	}
	return m
}

// NewFromMinor creates a Money object directly from the smallest currency
// unit. This is the constructor used everywhere inside the core: amounts
// cross the boundary once and stay integral afterwards.
func NewFromMinor(amount int64, currency any) (Money, error) {
	c, err := resolveCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: c}, nil
}

// FromData creates a Money object from raw data (used for DB hydration).
// This bypasses currency validation and should only be used for repository
// hydration or test fixtures.
func FromData(amount int64, cc string) Money {
	return Money{amount: amount, currency: Code(cc).ToCurrency()}
}

// Amount returns the amount in the smallest currency unit.
func (m Money) Amount() Amount { return m.amount }

// AmountFloat returns the amount as a float64 in major units. Boundary use
// only (API responses, exports); never feed the result back into arithmetic.
func (m Money) AmountFloat() float64 {
	amount := new(big.Rat).SetInt64(m.amount)
	divisor := new(big.Rat).SetFloat64(math.Pow10(m.currency.Decimals))
	result := new(big.Rat).Quo(amount, divisor)
	f, _ := result.Float64()
	return f
}

// Currency returns the currency of the Money object.
func (m Money) Currency() Currency { return m.currency }

// CurrencyCode returns the currency code of the Money object.
func (m Money) CurrencyCode() Code { return m.currency.Code }

// Add returns a new Money object with the sum of amounts.
// Invariants enforced:
//   - Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf(
			"cannot add different currencies: %s and %s",
			m.currency.Code, other.currency.Code)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Subtract returns a new Money object with the difference of amounts.
// The result can be negative.
// Invariants enforced:
//   - Currencies must match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf(
			"cannot subtract different currencies: %s and %s",
			m.currency.Code, other.currency.Code)
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// Negate negates the current Money object.
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// Abs returns the absolute value of the Money amount.
func (m Money) Abs() Money {
	if m.amount < 0 {
		return m.Negate()
	}
	return m
}

// Equals checks if two Money objects carry the same amount and currency.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount == other.amount
}

// IsSameCurrency checks if both Money objects share a currency.
func (m Money) IsSameCurrency(other Money) bool {
	return m.currency == other.currency
}

// GreaterThan reports whether m > other.
// Invariants enforced:
//   - Currencies must match.
func (m Money) GreaterThan(other Money) (bool, error) {
	if !m.IsSameCurrency(other) {
		return false, ErrInvalidCurrency
	}
	return m.amount > other.amount, nil
}

// LessThan reports whether m < other.
// Invariants enforced:
//   - Currencies must match.
func (m Money) LessThan(other Money) (bool, error) {
	if !m.IsSameCurrency(other) {
		return false, ErrInvalidCurrency
	}
	return m.amount < other.amount, nil
}

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.amount < 0 }

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.amount == 0 }

// String returns a string representation of the Money object.
func (m Money) String() string {
	return fmt.Sprintf("%.*f %s", m.currency.Decimals, m.AmountFloat(), m.currency.Code)
}

func resolveCurrency(currency any) (Currency, error) {
	var c Currency
	switch v := currency.(type) {
	case string:
		code := Code(v)
		if !code.IsValid() {
			return Currency{}, fmt.Errorf("%w: %s", ErrInvalidCurrency, v)
		}
		c = code.ToCurrency()
	case Code:
		c = v.ToCurrency()
	case Currency:
		c = v
	default:
		return Currency{}, fmt.Errorf(
			"invalid currency type: %T, expected string, Code, or Currency", currency)
	}
	if !c.IsValid() {
		return Currency{}, fmt.Errorf("%w: %v", ErrInvalidCurrency, c)
	}
	return c, nil
}

// toMinorUnits converts a major-unit amount to the smallest currency unit
// using round-half-up, via big.Rat to avoid float drift on the scale step.
func toMinorUnits(amount float64, currency Currency) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	factor := new(big.Rat).SetFloat64(math.Pow10(currency.Decimals))
	amountRat := new(big.Rat).SetFloat64(amount)
	scaled := new(big.Rat).Mul(amountRat, factor)

	// Round half up: floor(x + 1/2).
	half := big.NewRat(1, 2)
	scaled.Add(scaled, half)
	floored := new(big.Int).Div(scaled.Num(), scaled.Denom())
	if !floored.IsInt64() {
		return 0, ErrAmountExceedsMaxSafeInt
	}
	return floored.Int64(), nil
}
