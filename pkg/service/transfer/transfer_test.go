package transfer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraeventbus "github.com/duitku/duitku/infra/eventbus"
	"github.com/duitku/duitku/internal/fakes"
	"github.com/duitku/duitku/pkg/domain"
	domainaccount "github.com/duitku/duitku/pkg/domain/account"
	"github.com/duitku/duitku/pkg/dto"
	transfersvc "github.com/duitku/duitku/pkg/service/transfer"
)

const maxAmount = 100_000_000_000

type fixture struct {
	svc      *transfersvc.Service
	uow      *fakes.LedgerUoW
	accounts *fakes.AccountRepo
	goals    *fakes.GoalRepo
	bus      *infraeventbus.MemoryEventBus
	tenantID uuid.UUID
	actorID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := fakes.NewLedgerUoW()
	accounts := fakes.NewAccountRepo()
	goals := fakes.NewGoalRepo()
	bus := infraeventbus.NewWithMemory(logger)
	return &fixture{
		svc:      transfersvc.New(uow, accounts, goals, bus, logger, maxAmount),
		uow:      uow,
		accounts: accounts,
		goals:    goals,
		bus:      bus,
		tenantID: uuid.New(),
		actorID:  uuid.New(),
	}
}

func (f *fixture) seedAccount(t *testing.T, name, accountType, currency string, balance int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, f.accounts.Create(ctx, dto.AccountCreate{
		ID:       id,
		TenantID: f.tenantID,
		Name:     name,
		Type:     accountType,
		Currency: currency,
	}))
	if balance != 0 {
		_, err := f.accounts.AdjustBalance(ctx, id, balance, "seed:"+id.String())
		require.NoError(t, err)
	}
	return id
}

func (f *fixture) seedGoal(t *testing.T, name string, target int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, f.goals.Create(context.Background(), dto.GoalCreate{
		ID:           id,
		TenantID:     f.tenantID,
		Name:         name,
		TargetAmount: target,
	}))
	return id
}

func (f *fixture) input(source, dest uuid.UUID, amount int64) transfersvc.CreateTransferInput {
	return transfersvc.CreateTransferInput{
		TenantID:        f.tenantID,
		ActorID:         f.actorID,
		SourceAccountID: source,
		DestinationID:   dest,
		Amount:          amount,
		ValueDate:       time.Now().UTC(),
	}
}

func TestCreateTransfer_AccountToAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	fromID := f.seedAccount(t, "Main bank", "bank", "IDR", 1_000_000)
	toID := f.seedAccount(t, "Wallet", "e-wallet", "IDR", 0)

	result, err := f.svc.CreateTransfer(ctx, f.input(fromID, toID, 300_000))
	require.NoError(t, err)

	assert.Equal(t, "transfer", result.Outgoing.Kind)
	assert.Equal(t, "outgoing", result.Outgoing.Role)
	assert.Equal(t, fromID, result.Outgoing.AccountID)
	assert.Equal(t, "Wallet", result.Outgoing.Counterparty)
	assert.Equal(t, "incoming", result.Incoming.Role)
	assert.Equal(t, toID, result.Incoming.AccountID)
	assert.NotEqual(t, uuid.Nil, result.LinkID)
	assert.Equal(t, uuid.Nil, result.GoalID)

	// Both legs carry the same positive amount; direction lives in the role.
	assert.Equal(t, int64(300_000), result.Outgoing.Amount)
	assert.Equal(t, int64(300_000), result.Incoming.Amount)

	link, err := f.uow.Ledger.LinkFor(ctx, result.Outgoing.ID)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, result.Incoming.ID, link.IncomingID)

	pending := f.uow.OutboxRow.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, int64(-300_000), pending[0].Delta)
	assert.Equal(t, int64(300_000), pending[1].Delta)

	events := f.bus.Published()
	require.Len(t, events, 1)
	assert.Equal(t, "TransferCreated", events[0].Type())
}

func TestCreateTransfer_Rejections(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	fromID := f.seedAccount(t, "Main bank", "bank", "IDR", 1_000_000)
	toID := f.seedAccount(t, "Wallet", "e-wallet", "IDR", 0)

	t.Run("self transfer", func(t *testing.T) {
		_, err := f.svc.CreateTransfer(ctx, f.input(fromID, fromID, 1000))
		assert.ErrorIs(t, err, domain.ErrSelfTransfer)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := f.svc.CreateTransfer(ctx, f.input(fromID, toID, 0))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		_, err := f.svc.CreateTransfer(ctx, f.input(fromID, toID, 1_000_001))
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})

	t.Run("unknown destination", func(t *testing.T) {
		_, err := f.svc.CreateTransfer(ctx, f.input(fromID, uuid.New(), 1000))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("currency mismatch between accounts", func(t *testing.T) {
		usdID := f.seedAccount(t, "USD savings", "bank", "USD", 0)
		_, err := f.svc.CreateTransfer(ctx, f.input(fromID, usdID, 1000))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCreateTransfer_DebtSourceSkipsFundsCheck(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	cardID := f.seedAccount(t, "Card", "credit-card", "IDR", 0)
	toID := f.seedAccount(t, "Wallet", "e-wallet", "IDR", 0)

	_, err := f.svc.CreateTransfer(ctx, f.input(cardID, toID, 500_000))
	assert.NoError(t, err)
}

func TestCreateTransfer_ToGoal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	fromID := f.seedAccount(t, "Main bank", "bank", "IDR", 1_000_000)
	goalID := f.seedGoal(t, "Vacation", 5_000_000)

	result, err := f.svc.CreateTransfer(ctx, f.input(fromID, goalID, 100_000))
	require.NoError(t, err)

	assert.Equal(t, goalID, result.GoalID)
	assert.Equal(t, uuid.Nil, result.LinkID)
	assert.Equal(t, "[Goal] Vacation", result.Outgoing.Counterparty)
	assert.Equal(t, "[Goal] Vacation", result.Incoming.Counterparty)
	// The incoming side is synthetic: it names no account.
	assert.Equal(t, uuid.Nil, result.Incoming.AccountID)

	// Exactly one journal entry exists, and no link.
	link, err := f.uow.Ledger.LinkFor(ctx, result.Outgoing.ID)
	require.NoError(t, err)
	assert.Nil(t, link)

	g, err := f.goals.Get(ctx, f.tenantID, goalID)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), g.AccumulatedAmount)

	pending := f.uow.OutboxRow.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, int64(-100_000), pending[0].Delta)

	events := f.bus.Published()
	require.Len(t, events, 2)
	assert.Equal(t, "TransferCreated", events[0].Type())
	assert.Equal(t, "ContributionAdded", events[1].Type())
}

func TestCreateTransfer_GoalStoreFailureCompensatesLeg(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	fromID := f.seedAccount(t, "Main bank", "bank", "IDR", 1_000_000)
	goalID := f.seedGoal(t, "Vacation", 5_000_000)
	f.goals.FailAddContribution = errors.New("goal store down")

	_, err := f.svc.CreateTransfer(ctx, f.input(fromID, goalID, 100_000))
	require.Error(t, err)

	// The orphaned leg is reversed: a deduction and its exact compensation
	// are both pending, so the net balance effect is zero.
	pending := f.uow.OutboxRow.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, int64(-100_000), pending[0].Delta)
	assert.Equal(t, int64(100_000), pending[1].Delta)

	g, err := f.goals.Get(ctx, f.tenantID, goalID)
	require.NoError(t, err)
	assert.Zero(t, g.AccumulatedAmount)
}

func TestCreateTransfer_GoalProbedBeforeAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	fromID := f.seedAccount(t, "Main bank", "bank", "IDR", 1_000_000)
	goalID := f.seedGoal(t, "Emergency", 10_000_000)

	result, err := f.svc.CreateTransfer(ctx, f.input(fromID, goalID, 50_000))
	require.NoError(t, err)
	assert.Equal(t, goalID, result.GoalID)
}

// countingAccounts counts Get calls on top of the in-memory account store.
type countingAccounts struct {
	*fakes.AccountRepo
	gets atomic.Int32
}

func (c *countingAccounts) Get(ctx context.Context, tenantID, id uuid.UUID) (*domainaccount.Account, error) {
	c.gets.Add(1)
	return c.AccountRepo.Get(ctx, tenantID, id)
}

func TestCreateTransfer_FetchesEachAccountOnce(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := fakes.NewLedgerUoW()
	accounts := &countingAccounts{AccountRepo: fakes.NewAccountRepo()}
	goals := fakes.NewGoalRepo()
	bus := infraeventbus.NewWithMemory(logger)
	svc := transfersvc.New(uow, accounts, goals, bus, logger, maxAmount)

	ctx := context.Background()
	tenantID := uuid.New()
	fromID, toID := uuid.New(), uuid.New()
	require.NoError(t, accounts.Create(ctx, dto.AccountCreate{
		ID: fromID, TenantID: tenantID, Name: "Main bank", Type: "bank", Currency: "IDR",
	}))
	require.NoError(t, accounts.Create(ctx, dto.AccountCreate{
		ID: toID, TenantID: tenantID, Name: "Wallet", Type: "e-wallet", Currency: "IDR",
	}))
	_, err := accounts.AdjustBalance(ctx, fromID, 1_000_000, "seed:"+fromID.String())
	require.NoError(t, err)

	_, err = svc.CreateTransfer(ctx, transfersvc.CreateTransferInput{
		TenantID:        tenantID,
		ActorID:         uuid.New(),
		SourceAccountID: fromID,
		DestinationID:   toID,
		Amount:          300_000,
		ValueDate:       time.Now().UTC(),
	})
	require.NoError(t, err)

	// One fetch for the source, one for the destination.
	assert.Equal(t, int32(2), accounts.gets.Load())
}

func TestListTransfers_BatchesCounterpartyReads(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := fakes.NewLedgerUoW()
	accounts := &countingAccounts{AccountRepo: fakes.NewAccountRepo()}
	goals := fakes.NewGoalRepo()
	bus := infraeventbus.NewWithMemory(logger)
	svc := transfersvc.New(uow, accounts, goals, bus, logger, maxAmount)

	ctx := context.Background()
	tenantID := uuid.New()
	fromID, toID := uuid.New(), uuid.New()
	require.NoError(t, accounts.Create(ctx, dto.AccountCreate{
		ID: fromID, TenantID: tenantID, Name: "Main bank", Type: "bank", Currency: "IDR",
	}))
	require.NoError(t, accounts.Create(ctx, dto.AccountCreate{
		ID: toID, TenantID: tenantID, Name: "Wallet", Type: "e-wallet", Currency: "IDR",
	}))
	_, err := accounts.AdjustBalance(ctx, fromID, 1_000_000, "seed:"+fromID.String())
	require.NoError(t, err)

	for range [3]int{} {
		_, err := svc.CreateTransfer(ctx, transfersvc.CreateTransferInput{
			TenantID:        tenantID,
			ActorID:         uuid.New(),
			SourceAccountID: fromID,
			DestinationID:   toID,
			Amount:          100_000,
			ValueDate:       time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	// Counterparties come from one tenant-wide listing, not one account
	// fetch per leg.
	accounts.gets.Store(0)
	transfers, err := svc.ListTransfers(ctx, tenantID, dto.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, transfers, 3)
	for _, tr := range transfers {
		assert.Equal(t, "Wallet", tr.Counterparty)
	}
	assert.Zero(t, accounts.gets.Load())
}

func TestListTransfers_ResolvesCounterparties(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	fromID := f.seedAccount(t, "Main bank", "bank", "IDR", 1_000_000)
	toID := f.seedAccount(t, "Wallet", "e-wallet", "IDR", 0)
	goalID := f.seedGoal(t, "Vacation", 5_000_000)

	_, err := f.svc.CreateTransfer(ctx, f.input(fromID, toID, 300_000))
	require.NoError(t, err)
	_, err = f.svc.CreateTransfer(ctx, f.input(fromID, goalID, 100_000))
	require.NoError(t, err)

	transfers, err := f.svc.ListTransfers(ctx, f.tenantID, dto.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, transfers, 2)

	counterparties := map[string]bool{}
	for _, tr := range transfers {
		assert.Equal(t, "outgoing", tr.Role)
		counterparties[tr.Counterparty] = true
	}
	assert.True(t, counterparties["Wallet"])
	assert.True(t, counterparties["[Goal] Vacation"])
}
