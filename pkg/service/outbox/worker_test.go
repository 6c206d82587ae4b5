package outbox_test

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
	"github.com/duitku/duitku/pkg/service/outbox"
)

type fixture struct {
	worker   *outbox.Worker
	outbox   *fakes.OutboxRepo
	accounts *fakes.AccountRepo
	bus      *infraeventbus.MemoryEventBus
}

func newFixture(t *testing.T, maxAttempts int) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rows := fakes.NewOutboxRepo()
	accounts := fakes.NewAccountRepo()
	bus := infraeventbus.NewWithMemory(logger)
	return &fixture{
		worker:   outbox.New(rows, accounts, bus, logger, time.Second, 50, maxAttempts),
		outbox:   rows,
		accounts: accounts,
		bus:      bus,
	}
}

func (f *fixture) seedAccount(t *testing.T, balance int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, f.accounts.Create(ctx, dto.AccountCreate{
		ID: id, TenantID: uuid.New(), Name: "Acct", Type: "bank", Currency: "IDR",
	}))
	if balance != 0 {
		_, err := f.accounts.AdjustBalance(ctx, id, balance, "seed:"+id.String())
		require.NoError(t, err)
	}
	return id
}

func enqueue(t *testing.T, rows *fakes.OutboxRepo, accountID uuid.UUID, delta int64, key string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, rows.Enqueue(context.Background(), dto.OutboxRecordCreate{
		ID:             id,
		TransactionID:  uuid.New(),
		AccountID:      accountID,
		Delta:          delta,
		IdempotencyKey: key,
	}))
	return id
}

func TestProcessOnce_AppliesPendingAdjustments(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 10)
	ctx := context.Background()
	accountID := f.seedAccount(t, 1_000_000)

	enqueue(t, f.outbox, accountID, -200_000, "tx1:apply")
	enqueue(t, f.outbox, accountID, 50_000, "tx2:apply")

	applied, err := f.worker.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, int64(850_000), f.accounts.Balance(accountID))
	assert.Empty(t, f.outbox.Pending())

	published := f.bus.Published()
	require.Len(t, published, 2)
	adjusted, ok := published[0].(events.BalanceAdjusted)
	require.True(t, ok)
	assert.Equal(t, int64(-200_000), adjusted.Delta)
	assert.Equal(t, int64(800_000), adjusted.NewBalance)
	assert.False(t, adjusted.Replayed)

	// A second pass has nothing to do.
	applied, err = f.worker.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Equal(t, int64(850_000), f.accounts.Balance(accountID))
}

func TestProcessOnce_ReplaySettlesWithoutDoubleApply(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 10)
	ctx := context.Background()
	accountID := f.seedAccount(t, 0)

	// Simulate a crash after apply but before MarkDone: the key is already
	// recorded in the account store while the row stays pending.
	_, err := f.accounts.AdjustBalance(ctx, accountID, 300_000, "tx1:apply")
	require.NoError(t, err)
	enqueue(t, f.outbox, accountID, 300_000, "tx1:apply")

	applied, err := f.worker.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, int64(300_000), f.accounts.Balance(accountID))

	published := f.bus.Published()
	require.Len(t, published, 1)
	adjusted := published[0].(events.BalanceAdjusted)
	assert.True(t, adjusted.Replayed)
}

func TestProcessOnce_FailureMarksAndRetries(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 10)
	ctx := context.Background()

	// Unknown account: the adjustment fails and the row stays pending with
	// the error recorded.
	missing := uuid.New()
	enqueue(t, f.outbox, missing, 1000, "tx1:apply")

	applied, err := f.worker.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)

	pending := f.outbox.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.NotEmpty(t, pending[0].LastError)
	assert.Empty(t, f.bus.Published())
}

func TestProcessOnce_SkipsExhaustedRecords(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 2)
	ctx := context.Background()
	missing := uuid.New()
	enqueue(t, f.outbox, missing, 1000, "tx1:apply")

	for range [3]int{} {
		_, err := f.worker.ProcessOnce(ctx)
		require.NoError(t, err)
	}

	// Two attempts were made, then the record was skipped.
	pending := f.outbox.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Attempts)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.worker.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
}
