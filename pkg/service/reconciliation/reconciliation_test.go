package reconciliation_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraeventbus "github.com/duitku/duitku/infra/eventbus"
	"github.com/duitku/duitku/internal/fakes"
	"github.com/duitku/duitku/pkg/domain/events"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/duitku/duitku/pkg/service/reconciliation"
)

type fixture struct {
	reconciler *reconciliation.Reconciler
	accounts   *fakes.AccountRepo
	ledger     *fakes.LedgerRepo
	bus        *infraeventbus.MemoryEventBus
	tenantID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := fakes.NewAccountRepo()
	ledger := fakes.NewLedgerRepo()
	bus := infraeventbus.NewWithMemory(logger)
	return &fixture{
		reconciler: reconciliation.New(accounts, ledger, bus, logger, time.Minute),
		accounts:   accounts,
		ledger:     ledger,
		bus:        bus,
		tenantID:   uuid.New(),
	}
}

func (f *fixture) seedAccount(t *testing.T, balance int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, f.accounts.Create(ctx, dto.AccountCreate{
		ID: id, TenantID: f.tenantID, Name: "Acct", Type: "bank", Currency: "IDR",
	}))
	if balance != 0 {
		_, err := f.accounts.AdjustBalance(ctx, id, balance, "seed:"+id.String())
		require.NoError(t, err)
	}
	return id
}

func (f *fixture) postEntry(t *testing.T, accountID uuid.UUID, kind string, amount int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, f.ledger.Create(context.Background(), dto.TransactionCreate{
		ID:        id,
		TenantID:  f.tenantID,
		AccountID: accountID,
		Kind:      kind,
		Amount:    amount,
		Currency:  "IDR",
		ValueDate: time.Now().UTC(),
		ActorID:   uuid.New(),
	}))
	return id
}

func TestRun_BalancedAccountsReportNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	accountID := f.seedAccount(t, 800_000)
	f.postEntry(t, accountID, "income", 1_000_000)
	f.postEntry(t, accountID, "expense", 200_000)

	divergences, err := f.reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, divergences)
	assert.Empty(t, f.bus.Published())
}

func TestRun_DriftIsReportedNotCorrected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	accountID := f.seedAccount(t, 1_000_000)
	f.postEntry(t, accountID, "income", 700_000)

	divergences, err := f.reconciler.Run(ctx)
	require.NoError(t, err)
	require.Len(t, divergences, 1)
	assert.Equal(t, f.tenantID, divergences[0].TenantID)
	assert.Equal(t, accountID, divergences[0].AccountID)
	assert.Equal(t, int64(1_000_000), divergences[0].StoredBalance)
	assert.Equal(t, int64(700_000), divergences[0].JournalSum)

	published := f.bus.Published()
	require.Len(t, published, 1)
	detected, ok := published[0].(events.LedgerDivergenceDetected)
	require.True(t, ok)
	assert.Equal(t, accountID, detected.AccountID)
	assert.Equal(t, int64(1_000_000), detected.StoredBalance)
	assert.Equal(t, int64(700_000), detected.JournalSum)

	// The stored balance is untouched.
	assert.Equal(t, int64(1_000_000), f.accounts.Balance(accountID))
}

func TestRun_DeletedEntriesLeaveTheSum(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	accountID := f.seedAccount(t, 1_000_000)
	f.postEntry(t, accountID, "income", 1_000_000)
	reversed := f.postEntry(t, accountID, "expense", 300_000)
	require.NoError(t, f.ledger.SoftDelete(ctx, reversed))

	divergences, err := f.reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, divergences)
}

func TestRun_PendingOutboxLooksLikeDrift(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	// A freshly posted entry whose adjustment has not been applied yet: the
	// journal leads the stored balance until the outbox worker catches up.
	accountID := f.seedAccount(t, 0)
	f.postEntry(t, accountID, "income", 500_000)

	divergences, err := f.reconciler.Run(ctx)
	require.NoError(t, err)
	require.Len(t, divergences, 1)
	assert.Equal(t, int64(0), divergences[0].StoredBalance)
	assert.Equal(t, int64(500_000), divergences[0].JournalSum)

	// Once the adjustment lands the next sweep is clean.
	_, err = f.accounts.AdjustBalance(ctx, accountID, 500_000, "tx:apply")
	require.NoError(t, err)
	divergences, err = f.reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, divergences)
}

func TestRun_SweepsEveryAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	cleanID := f.seedAccount(t, 100_000)
	f.postEntry(t, cleanID, "income", 100_000)
	driftedA := f.seedAccount(t, 999)
	driftedB := f.seedAccount(t, -50)

	divergences, err := f.reconciler.Run(ctx)
	require.NoError(t, err)
	require.Len(t, divergences, 2)

	byAccount := map[uuid.UUID]reconciliation.Divergence{}
	for _, d := range divergences {
		byAccount[d.AccountID] = d
	}
	assert.Equal(t, int64(999), byAccount[driftedA].StoredBalance)
	assert.Equal(t, int64(-50), byAccount[driftedB].StoredBalance)
	assert.Len(t, f.bus.Published(), 2)
}
