package ledger_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duitku/duitku/pkg/domain"
	domainledger "github.com/duitku/duitku/pkg/domain/ledger"
	"github.com/duitku/duitku/pkg/dto"
	ledgersvc "github.com/duitku/duitku/pkg/service/ledger"
)

func TestExportTransactions_CSV(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	accountID := f.seedAccount(t, "bank", 10_000_000)

	_, err := f.svc.CreateTransaction(ctx, f.createInput(accountID, domainledger.KindExpense, 200_000))
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(ctx, f.createInput(accountID, domainledger.KindIncome, 500_000))
	require.NoError(t, err)

	data, contentType, err := f.svc.ExportTransactions(ctx, f.tenantID, dto.TransactionFilter{}, ledgersvc.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,account_id,category_id,kind,role,amount_minor,amount_major,currency,value_date,note", lines[0])
	assert.Contains(t, string(data), "expense")
	assert.Contains(t, string(data), "200000")
}

func TestExportTransactions_DefaultsToCSV(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, contentType, err := f.svc.ExportTransactions(context.Background(), f.tenantID, dto.TransactionFilter{}, "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
}

func TestExportTransactions_JSON(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	accountID := f.seedAccount(t, "bank", 10_000_000)

	_, err := f.svc.CreateTransaction(ctx, f.createInput(accountID, domainledger.KindIncome, 750_000))
	require.NoError(t, err)

	data, contentType, err := f.svc.ExportTransactions(ctx, f.tenantID, dto.TransactionFilter{}, ledgersvc.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)

	var reads []dto.TransactionRead
	require.NoError(t, json.Unmarshal(data, &reads))
	require.Len(t, reads, 1)
	assert.Equal(t, int64(750_000), reads[0].Amount)
	assert.InDelta(t, 7500.0, reads[0].AmountMajor, 1e-9)
	assert.Equal(t, "income", reads[0].Kind)
}

func TestExportTransactions_UnsupportedFormat(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, _, err := f.svc.ExportTransactions(context.Background(), f.tenantID, dto.TransactionFilter{}, "xlsx")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExportTransactions_RespectsFilter(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	accountA := f.seedAccount(t, "bank", 10_000_000)
	accountB := f.seedAccount(t, "e-wallet", 10_000_000)

	_, err := f.svc.CreateTransaction(ctx, f.createInput(accountA, domainledger.KindExpense, 100_000))
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(ctx, f.createInput(accountB, domainledger.KindExpense, 999_000))
	require.NoError(t, err)

	data, _, err := f.svc.ExportTransactions(ctx, f.tenantID, dto.TransactionFilter{AccountID: accountA}, ledgersvc.FormatCSV)
	require.NoError(t, err)
	assert.Contains(t, string(data), "100000")
	assert.NotContains(t, string(data), "999000")
}
