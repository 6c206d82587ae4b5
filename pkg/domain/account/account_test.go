package account_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duitku/duitku/pkg/domain"
	"github.com/duitku/duitku/pkg/domain/account"
	"github.com/duitku/duitku/pkg/money"
)

func TestBuilder_BuildsValidAccount(t *testing.T) {
	t.Parallel()
	tenantID := uuid.New()
	a, err := account.New().
		WithTenantID(tenantID).
		WithName("Daily wallet").
		WithType(account.TypeEWallet).
		WithCurrency(money.IDR).
		WithOpeningBalance(1_000_000).
		Build()
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, tenantID, a.TenantID)
	assert.Equal(t, account.TypeEWallet, a.Type)
	assert.Equal(t, int64(1_000_000), a.OpeningBalance)
	assert.Zero(t, a.CurrentBalance)
}

func TestBuilder_Defaults(t *testing.T) {
	t.Parallel()
	a, err := account.New().
		WithTenantID(uuid.New()).
		WithName("Cash").
		Build()
	require.NoError(t, err)
	assert.Equal(t, account.TypeCash, a.Type)
	assert.Equal(t, money.DefaultCode, a.Currency)
}

func TestBuilder_Rejections(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		build func() (*account.Account, error)
	}{
		{"missing tenant", func() (*account.Account, error) {
			return account.New().WithName("x").Build()
		}},
		{"missing name", func() (*account.Account, error) {
			return account.New().WithTenantID(uuid.New()).Build()
		}},
		{"unknown type", func() (*account.Account, error) {
			return account.New().WithTenantID(uuid.New()).WithName("x").
				WithType(account.Type("piggy-bank")).Build()
		}},
		{"invalid currency", func() (*account.Account, error) {
			return account.New().WithTenantID(uuid.New()).WithName("x").
				WithCurrency(money.Code("xx")).Build()
		}},
		{"negative opening balance", func() (*account.Account, error) {
			return account.New().WithTenantID(uuid.New()).WithName("x").
				WithOpeningBalance(-1).Build()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.build()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestType_IsDebt(t *testing.T) {
	t.Parallel()
	assert.True(t, account.TypeCreditCard.IsDebt())
	assert.True(t, account.TypeLoan.IsDebt())
	assert.False(t, account.TypeCash.IsDebt())
	assert.False(t, account.TypeBank.IsDebt())
	assert.False(t, account.TypeEWallet.IsDebt())
	assert.False(t, account.TypeAsset.IsDebt())
}

func TestStatusFor(t *testing.T) {
	t.Parallel()
	const threshold = 5_000_000
	assert.Equal(t, account.BalanceEmpty, account.StatusFor(0, threshold))
	assert.Equal(t, account.BalanceEmpty, account.StatusFor(-100, threshold))
	assert.Equal(t, account.BalanceLow, account.StatusFor(1, threshold))
	assert.Equal(t, account.BalanceLow, account.StatusFor(4_999_999, threshold))
	assert.Equal(t, account.BalanceSufficient, account.StatusFor(5_000_000, threshold))
}
