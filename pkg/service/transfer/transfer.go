// Package transfer provides the transfer coordinator: it creates matched
// journal entry pairs for account-to-account transfers, or a single entry
// plus a goal contribution for transfers into a savings goal.
//
// The destination is polymorphic and not declared by the caller: it is
// resolved once, goal store probed first, into a tagged target before any
// write happens.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/duitku/duitku/pkg/domain"
	domainaccount "github.com/duitku/duitku/pkg/domain/account"
	"github.com/duitku/duitku/pkg/domain/events"
	domainledger "github.com/duitku/duitku/pkg/domain/ledger"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/duitku/duitku/pkg/eventbus"
	"github.com/duitku/duitku/pkg/money"
	accountrepo "github.com/duitku/duitku/pkg/repository/account"
	goalrepo "github.com/duitku/duitku/pkg/repository/goal"
	ledgerrepo "github.com/duitku/duitku/pkg/repository/ledger"
	"github.com/google/uuid"
)

// targetKind tags the resolved destination of a transfer.
type targetKind int

const (
	targetAccount targetKind = iota
	targetGoal
)

// target is the resolved transfer destination. For account destinations the
// fetched account rides along so the transfer never fetches it twice.
type target struct {
	kind targetKind
	acct *domainaccount.Account
}

// Service coordinates transfers across the transaction, account and goal
// stores.
type Service struct {
	uow       ledgerrepo.UnitOfWork
	accounts  accountrepo.Repository
	goals     goalrepo.Repository
	bus       eventbus.Bus
	logger    *slog.Logger
	maxAmount int64
}

// New creates a transfer Service.
func New(
	uow ledgerrepo.UnitOfWork,
	accounts accountrepo.Repository,
	goals goalrepo.Repository,
	bus eventbus.Bus,
	logger *slog.Logger,
	maxAmount int64,
) *Service {
	return &Service{
		uow:       uow,
		accounts:  accounts,
		goals:     goals,
		bus:       bus,
		logger:    logger.With("service", "transfer"),
		maxAmount: maxAmount,
	}
}

// CreateTransferInput carries a transfer intent. DestinationID names either
// an account or a savings goal; the coordinator resolves which.
type CreateTransferInput struct {
	TenantID        uuid.UUID
	ActorID         uuid.UUID
	SourceAccountID uuid.UUID
	DestinationID   uuid.UUID
	Amount          int64
	ValueDate       time.Time
	Note            string
}

// CreateTransfer validates the intent, resolves the destination, and
// executes one of the two transfer shapes. Journal writes commit first in
// one local transaction of the transaction store; balance adjustments
// follow through the outbox.
func (s *Service) CreateTransfer(ctx context.Context, in CreateTransferInput) (*dto.TransferResult, error) {
	logger := s.logger.With(
		"tenant_id", in.TenantID,
		"source_account_id", in.SourceAccountID,
		"destination_id", in.DestinationID,
	)

	if in.TenantID == uuid.Nil || in.ActorID == uuid.Nil ||
		in.SourceAccountID == uuid.Nil || in.DestinationID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenant, actor, source and destination are required", domain.ErrValidation)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if in.Amount > s.maxAmount {
		return nil, fmt.Errorf("%w: amount %d is above the maximum %d",
			domain.ErrAmountExceedsMax, in.Amount, s.maxAmount)
	}
	if in.SourceAccountID == in.DestinationID {
		return nil, domain.ErrSelfTransfer
	}
	if in.ValueDate.IsZero() {
		in.ValueDate = time.Now().UTC()
	}

	source, err := s.accounts.Get(ctx, in.TenantID, in.SourceAccountID)
	if err != nil {
		return nil, err
	}
	if !source.Type.IsDebt() {
		short, err := source.Balance().LessThan(money.FromData(in.Amount, source.Currency.String()))
		if err != nil {
			return nil, err
		}
		if short {
			return nil, fmt.Errorf("%w: balance %d, requested %d",
				domain.ErrInsufficientFunds, source.CurrentBalance, in.Amount)
		}
	}

	dest, err := s.resolveTarget(ctx, in.TenantID, in.DestinationID)
	if err != nil {
		return nil, err
	}

	switch dest.kind {
	case targetGoal:
		result, err := s.transferToGoal(ctx, in, source.Currency.String())
		if err != nil {
			logger.Error("goal transfer failed", "error", err)
		}
		return result, err
	default:
		result, err := s.transferToAccount(ctx, in, source.Currency.String(), dest.acct)
		if err != nil {
			logger.Error("account transfer failed", "error", err)
		}
		return result, err
	}
}

// resolveTarget probes the goal store first (cheap existence check), then
// falls back to account semantics.
func (s *Service) resolveTarget(ctx context.Context, tenantID, destinationID uuid.UUID) (target, error) {
	isGoal, err := s.goals.Exists(ctx, tenantID, destinationID)
	if err != nil {
		return target{}, err
	}
	if isGoal {
		return target{kind: targetGoal}, nil
	}
	acct, err := s.accounts.Get(ctx, tenantID, destinationID)
	if err != nil {
		return target{}, fmt.Errorf("transfer destination: %w", err)
	}
	return target{kind: targetAccount, acct: acct}, nil
}

// transferToAccount creates both legs and the transfer link atomically in
// the transaction store, then enqueues one adjustment per leg.
func (s *Service) transferToAccount(ctx context.Context, in CreateTransferInput, currency string, destAcct *domainaccount.Account) (*dto.TransferResult, error) {
	if destAcct.Currency.String() != currency {
		return nil, fmt.Errorf("%w: cannot transfer %s into a %s account",
			domain.ErrValidation, currency, destAcct.Currency)
	}

	outgoingID, incomingID, linkID := uuid.New(), uuid.New(), uuid.New()
	err := s.uow.Do(ctx, func(uow ledgerrepo.UnitOfWork) error {
		legs := []dto.TransactionCreate{
			s.legCreate(in, outgoingID, in.SourceAccountID, domainledger.RoleOutgoing, currency),
			s.legCreate(in, incomingID, in.DestinationID, domainledger.RoleIncoming, currency),
		}
		for _, leg := range legs {
			if err := uow.Transactions().Create(ctx, leg); err != nil {
				return err
			}
		}
		if err := uow.Transactions().CreateLink(ctx, &domainledger.TransferLink{
			ID:         linkID,
			OutgoingID: outgoingID,
			IncomingID: incomingID,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return err
		}
		for _, rec := range []dto.OutboxRecordCreate{
			{
				ID:             uuid.New(),
				TransactionID:  outgoingID,
				AccountID:      in.SourceAccountID,
				Delta:          -in.Amount,
				IdempotencyKey: domainledger.AdjustmentKey(outgoingID, domainledger.IntentApply),
			},
			{
				ID:             uuid.New(),
				TransactionID:  incomingID,
				AccountID:      in.DestinationID,
				Delta:          in.Amount,
				IdempotencyKey: domainledger.AdjustmentKey(incomingID, domainledger.IntentApply),
			},
		} {
			if err := uow.Outbox().Enqueue(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.bus.Emit(ctx, events.TransferCreated{
		EventID:       uuid.New(),
		TenantID:      in.TenantID,
		OutgoingID:    outgoingID,
		IncomingID:    incomingID,
		SourceAccount: in.SourceAccountID,
		Amount:        in.Amount,
		Currency:      currency,
		Timestamp:     time.Now().UTC(),
	})
	s.logger.Info("transfer created",
		"outgoing_id", outgoingID, "incoming_id", incomingID, "amount", in.Amount)

	outgoing, err := s.uow.Transactions().Get(ctx, in.TenantID, outgoingID)
	if err != nil {
		return nil, err
	}
	incoming, err := s.uow.Transactions().Get(ctx, in.TenantID, incomingID)
	if err != nil {
		return nil, err
	}
	outRead := mapLegToRead(outgoing, destAcct.Name)
	inRead := mapLegToRead(incoming, "")
	return &dto.TransferResult{Outgoing: outRead, Incoming: inRead, LinkID: linkID}, nil
}

// transferToGoal creates only the outgoing leg in the transaction store,
// then the contribution in the goal store. A goal store failure after the
// journal commit is compensated by reversing the leg.
func (s *Service) transferToGoal(ctx context.Context, in CreateTransferInput, currency string) (*dto.TransferResult, error) {
	g, err := s.goals.Get(ctx, in.TenantID, in.DestinationID)
	if err != nil {
		return nil, err
	}

	outgoingID := uuid.New()
	err = s.uow.Do(ctx, func(uow ledgerrepo.UnitOfWork) error {
		if err := uow.Transactions().Create(ctx,
			s.legCreate(in, outgoingID, in.SourceAccountID, domainledger.RoleOutgoing, currency)); err != nil {
			return err
		}
		return uow.Outbox().Enqueue(ctx, dto.OutboxRecordCreate{
			ID:             uuid.New(),
			TransactionID:  outgoingID,
			AccountID:      in.SourceAccountID,
			Delta:          -in.Amount,
			IdempotencyKey: domainledger.AdjustmentKey(outgoingID, domainledger.IntentApply),
		})
	})
	if err != nil {
		return nil, err
	}

	contributionID := uuid.New()
	if err := s.goals.AddContribution(ctx, dto.ContributionCreate{
		ID:            contributionID,
		GoalID:        g.ID,
		TransactionID: outgoingID,
		AccountID:     in.SourceAccountID,
		Amount:        in.Amount,
		Date:          in.ValueDate,
	}); err != nil {
		// The journal entry committed but the contribution did not: reverse
		// the leg so no money is deducted for a contribution that never
		// happened.
		s.compensateGoalLeg(ctx, outgoingID, in.SourceAccountID, in.Amount)
		return nil, err
	}

	now := time.Now().UTC()
	_ = s.bus.Emit(ctx, events.TransferCreated{
		EventID:       uuid.New(),
		TenantID:      in.TenantID,
		OutgoingID:    outgoingID,
		GoalID:        g.ID,
		SourceAccount: in.SourceAccountID,
		Amount:        in.Amount,
		Currency:      currency,
		Timestamp:     now,
	})
	_ = s.bus.Emit(ctx, events.ContributionAdded{
		EventID:        uuid.New(),
		TenantID:       in.TenantID,
		GoalID:         g.ID,
		ContributionID: contributionID,
		TransactionID:  outgoingID,
		Amount:         in.Amount,
		Timestamp:      now,
	})
	s.logger.Info("goal transfer created",
		"outgoing_id", outgoingID, "goal_id", g.ID, "amount", in.Amount)

	outgoing, err := s.uow.Transactions().Get(ctx, in.TenantID, outgoingID)
	if err != nil {
		return nil, err
	}
	outRead := mapLegToRead(outgoing, g.DisplayName())

	// The incoming side is a synthetic view pointing at the goal; no
	// journal entry exists for it.
	inRead := dto.TransactionRead{
		ID:           contributionID,
		TenantID:     in.TenantID,
		Kind:         string(domainledger.KindTransfer),
		Role:         string(domainledger.RoleIncoming),
		Amount:       in.Amount,
		AmountMajor:  money.FromData(in.Amount, currency).AmountFloat(),
		Currency:     currency,
		ValueDate:    in.ValueDate,
		Note:         in.Note,
		ActorID:      in.ActorID,
		Counterparty: g.DisplayName(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return &dto.TransferResult{Outgoing: outRead, Incoming: inRead, GoalID: g.ID}, nil
}

// compensateGoalLeg soft-deletes the orphaned outgoing leg and enqueues its
// reversal. Best effort: if this also fails the reconciler surfaces the
// divergence rather than losing it.
func (s *Service) compensateGoalLeg(ctx context.Context, outgoingID, sourceAccountID uuid.UUID, amount int64) {
	err := s.uow.Do(ctx, func(uow ledgerrepo.UnitOfWork) error {
		if err := uow.Transactions().SoftDelete(ctx, outgoingID); err != nil {
			return err
		}
		return uow.Outbox().Enqueue(ctx, dto.OutboxRecordCreate{
			ID:             uuid.New(),
			TransactionID:  outgoingID,
			AccountID:      sourceAccountID,
			Delta:          amount,
			IdempotencyKey: domainledger.AdjustmentKey(outgoingID, domainledger.IntentReverse),
		})
	})
	if err != nil {
		s.logger.Error("goal leg compensation failed, reconciler will flag the divergence",
			"outgoing_id", outgoingID, "error", err)
	}
}

func (s *Service) legCreate(
	in CreateTransferInput,
	id, accountID uuid.UUID,
	role domainledger.TransferRole,
	currency string,
) dto.TransactionCreate {
	return dto.TransactionCreate{
		ID:        id,
		TenantID:  in.TenantID,
		AccountID: accountID,
		Kind:      string(domainledger.KindTransfer),
		Role:      string(role),
		Amount:    in.Amount,
		Currency:  currency,
		ValueDate: in.ValueDate,
		Note:      in.Note,
		ActorID:   in.ActorID,
	}
}

// ListTransfers returns the outgoing legs of a tenant's transfers with the
// paired side resolved to a display name: the destination account's name,
// or the goal's name carrying the goal prefix. Counterparties resolve from
// a handful of batch reads, never one lookup chain per leg.
func (s *Service) ListTransfers(ctx context.Context, tenantID uuid.UUID, filter dto.TransactionFilter) ([]dto.TransactionRead, error) {
	filter.Kind = string(domainledger.KindTransfer)
	filter.IncludeIncomingLegs = false
	legs, err := s.uow.Transactions().List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return []dto.TransactionRead{}, nil
	}

	outgoingIDs := make([]uuid.UUID, 0, len(legs))
	for _, leg := range legs {
		outgoingIDs = append(outgoingIDs, leg.ID)
	}
	links, err := s.uow.Transactions().LinksForOutgoing(ctx, outgoingIDs)
	if err != nil {
		return nil, err
	}
	incomingIDs := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		incomingIDs = append(incomingIDs, link.IncomingID)
	}
	incoming, err := s.uow.Transactions().ListByIDs(ctx, tenantID, incomingIDs)
	if err != nil {
		return nil, err
	}
	incomingByID := make(map[uuid.UUID]*domainledger.Transaction, len(incoming))
	for _, e := range incoming {
		incomingByID[e.ID] = e
	}

	accountNames, err := s.accountNames(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var goalNames map[uuid.UUID]string
	if len(links) < len(legs) {
		// Some legs have no link, so they fund goals.
		goalNames, err = s.goalNamesByLeg(ctx, tenantID)
		if err != nil {
			return nil, err
		}
	}

	out := make([]dto.TransactionRead, 0, len(legs))
	for _, leg := range legs {
		var counterparty string
		if link, ok := links[leg.ID]; ok {
			if e, ok := incomingByID[link.IncomingID]; ok {
				counterparty = accountNames[e.AccountID]
			}
		} else {
			counterparty = goalNames[leg.ID]
		}
		out = append(out, mapLegToRead(leg, counterparty))
	}
	return out, nil
}

func (s *Service) accountNames(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]string, error) {
	accts, err := s.accounts.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(accts))
	for _, a := range accts {
		names[a.ID] = a.Name
	}
	return names, nil
}

// goalNamesByLeg maps the outgoing leg IDs of goal transfers to each goal's
// display name.
func (s *Service) goalNamesByLeg(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]string, error) {
	goals, err := s.goals.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string)
	for _, g := range goals {
		contributions, err := s.goals.ListContributions(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range contributions {
			names[c.TransactionID] = g.DisplayName()
		}
	}
	return names, nil
}

func mapLegToRead(t *domainledger.Transaction, counterparty string) dto.TransactionRead {
	return dto.TransactionRead{
		ID:           t.ID,
		TenantID:     t.TenantID,
		AccountID:    t.AccountID,
		CategoryID:   t.CategoryID,
		Kind:         string(t.Kind),
		Role:         string(t.Role),
		Amount:       t.Amount,
		AmountMajor:  money.FromData(t.Amount, t.Currency).AmountFloat(),
		Currency:     t.Currency,
		ValueDate:    t.ValueDate,
		Note:         t.Note,
		ActorID:      t.ActorID,
		Revision:     t.Revision,
		Counterparty: counterparty,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
