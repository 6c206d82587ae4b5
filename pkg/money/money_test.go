package money_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duitku/duitku/pkg/money"
)

func TestNew_ConvertsMajorToMinorUnits(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     int64
	}{
		{"two decimals", 12.50, "USD", 1250},
		{"idr scales by two decimals", 15000, "IDR", 1500000},
		{"rounds half up", 0.005, "USD", 1},
		{"rounds down below half", 0.004, "USD", 0},
		{"negative amount", -12.50, "USD", -1250},
		{"yen has no minor unit", 120.4, "JPY", 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := money.New(tt.amount, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestNew_RejectsInvalidCurrency(t *testing.T) {
	t.Parallel()
	_, err := money.New(10, "XX")
	require.Error(t, err)
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)
}

func TestNewFromMinor_KeepsAmountIntegral(t *testing.T) {
	t.Parallel()
	m, err := money.NewFromMinor(1_000_000, money.IDR)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), m.Amount())
	assert.Equal(t, money.IDR, m.CurrencyCode())
}

func TestAdd_RequiresMatchingCurrencies(t *testing.T) {
	t.Parallel()
	a := money.Must(10, "USD")
	b := money.Must(5, "EUR")
	_, err := a.Add(b)
	require.Error(t, err)

	c := money.Must(5, "USD")
	sum, err := a.Add(c)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), sum.Amount())
}

func TestSubtract_CanGoNegative(t *testing.T) {
	t.Parallel()
	a := money.Must(10, "USD")
	b := money.Must(25, "USD")
	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(-1500), diff.Amount())
	assert.True(t, diff.IsNegative())
	assert.Equal(t, int64(1500), diff.Abs().Amount())
}

func TestComparisons(t *testing.T) {
	t.Parallel()
	a := money.Must(10, "IDR")
	b := money.Must(20, "IDR")

	gt, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, gt)

	lt, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, lt)

	_, err = a.GreaterThan(money.Must(1, "USD"))
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	m := money.FromData(250_000, "IDR")
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var got money.Money
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, m.Equals(got))
}

func TestZero(t *testing.T) {
	t.Parallel()
	z := money.Zero(money.IDR.ToCurrency())
	assert.True(t, z.IsZero())
	assert.False(t, z.IsPositive())
	assert.False(t, z.IsNegative())
}
