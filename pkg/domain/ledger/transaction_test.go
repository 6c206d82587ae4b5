package ledger_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duitku/duitku/pkg/domain"
	"github.com/duitku/duitku/pkg/domain/ledger"
)

func TestSignedEffect(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		kind ledger.Kind
		role ledger.TransferRole
		want int64
	}{
		{"income adds", ledger.KindIncome, ledger.RoleNone, 500},
		{"expense subtracts", ledger.KindExpense, ledger.RoleNone, -500},
		{"outgoing leg subtracts", ledger.KindTransfer, ledger.RoleOutgoing, -500},
		{"incoming leg adds", ledger.KindTransfer, ledger.RoleIncoming, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ledger.SignedEffect(tt.kind, tt.role, 500))
		})
	}
}

func TestEffect_MatchesSignedEffect(t *testing.T) {
	t.Parallel()
	tx := &ledger.Transaction{Kind: ledger.KindExpense, Amount: 200_000}
	assert.Equal(t, int64(-200_000), tx.Effect())
}

func TestValidateSplits(t *testing.T) {
	t.Parallel()
	catA := uuid.New()
	catB := uuid.New()

	t.Run("no splits is valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ledger.ValidateSplits(1000, nil))
	})

	t.Run("exact sum is valid", func(t *testing.T) {
		t.Parallel()
		err := ledger.ValidateSplits(1000, []ledger.CategorySplit{
			{CategoryID: catA, Amount: 400},
			{CategoryID: catB, Amount: 600},
		})
		assert.NoError(t, err)
	})

	t.Run("sum mismatch is rejected", func(t *testing.T) {
		t.Parallel()
		err := ledger.ValidateSplits(1000, []ledger.CategorySplit{
			{CategoryID: catA, Amount: 400},
			{CategoryID: catB, Amount: 500},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSplitSumMismatch)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("non-positive split is rejected", func(t *testing.T) {
		t.Parallel()
		err := ledger.ValidateSplits(1000, []ledger.CategorySplit{
			{CategoryID: catA, Amount: 0},
			{CategoryID: catB, Amount: 1000},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing category is rejected", func(t *testing.T) {
		t.Parallel()
		err := ledger.ValidateSplits(1000, []ledger.CategorySplit{
			{Amount: 1000},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAdjustmentKey_IsDeterministic(t *testing.T) {
	t.Parallel()
	id := uuid.MustParse("b3a9f5a0-0000-0000-0000-000000000001")

	assert.Equal(t,
		"b3a9f5a0-0000-0000-0000-000000000001:apply",
		ledger.AdjustmentKey(id, ledger.IntentApply))
	assert.Equal(t,
		"b3a9f5a0-0000-0000-0000-000000000001:reverse",
		ledger.AdjustmentKey(id, ledger.IntentReverse))
	assert.Equal(t,
		"b3a9f5a0-0000-0000-0000-000000000001:rev-2",
		ledger.AdjustmentKey(id, ledger.RevisionIntent(2, "")))
	assert.Equal(t,
		"b3a9f5a0-0000-0000-0000-000000000001:rev-3-apply",
		ledger.AdjustmentKey(id, ledger.RevisionIntent(3, "apply")))
}

func TestKindAndRoleValidity(t *testing.T) {
	t.Parallel()
	assert.True(t, ledger.KindIncome.IsValid())
	assert.True(t, ledger.KindExpense.IsValid())
	assert.True(t, ledger.KindTransfer.IsValid())
	assert.False(t, ledger.Kind("refund").IsValid())
}
