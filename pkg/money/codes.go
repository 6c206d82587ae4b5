package money

// Code represents a 3-letter ISO 4217 currency code (e.g., "IDR", "USD").
type Code string

// Common currency codes.
const (
	IDR Code = "IDR"
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
	SGD Code = "SGD"
)

// IsValid checks if the currency code is three uppercase ASCII letters.
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	return c[0] >= 'A' && c[0] <= 'Z' &&
		c[1] >= 'A' && c[1] <= 'Z' &&
		c[2] >= 'A' && c[2] <= 'Z'
}

// String returns the string representation of the currency code.
func (c Code) String() string { return string(c) }

// ToCurrency converts a Code to a Currency with its standard decimals.
func (c Code) ToCurrency() Currency {
	switch c {
	case JPY:
		return Currency{Code: c, Decimals: 0}
	default:
		return Currency{Code: c, Decimals: 2}
	}
}

// Common currency instances.
var (
	IDRCurrency = IDR.ToCurrency()
	USDCurrency = USD.ToCurrency()
	EURCurrency = EUR.ToCurrency()
	JPYCurrency = JPY.ToCurrency()
)

// DefaultCurrency is the currency assumed when a caller omits one.
var DefaultCurrency = IDRCurrency

// DefaultCode is the default currency code.
var DefaultCode = IDR
