// Package ledger provides the transaction log service: validation and
// persistence of journal entries, update/delete with exact balance-delta
// compensation, listing and export.
//
// Writes are journal-first: the entry and its outbox record commit in one
// local transaction of the transaction store, and the balance adjustment is
// applied afterwards by the outbox worker. A crash between the two steps
// leaves an orphaned journal entry plus its pending outbox row, never a
// balance without an entry.
package ledger

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
	ledgerrepo "github.com/duitku/duitku/pkg/repository/ledger"
	"github.com/google/uuid"
)

// Service provides business logic for journal entries.
type Service struct {
	uow       ledgerrepo.UnitOfWork
	accounts  accountrepo.Repository
	bus       eventbus.Bus
	logger    *slog.Logger
	maxAmount int64
}

// New creates a ledger Service.
func New(
	uow ledgerrepo.UnitOfWork,
	accounts accountrepo.Repository,
	bus eventbus.Bus,
	logger *slog.Logger,
	maxAmount int64,
) *Service {
	return &Service{
		uow:       uow,
		accounts:  accounts,
		bus:       bus,
		logger:    logger.With("service", "ledger"),
		maxAmount: maxAmount,
	}
}

// CreateTransactionInput carries a transaction intent. Amount is in minor
// units; Currency defaults to the account currency when empty.
type CreateTransactionInput struct {
	TenantID    uuid.UUID
	ActorID     uuid.UUID
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Kind        domainledger.Kind
	Amount      int64
	Currency    string
	ValueDate   time.Time
	Note        string
	RecurringID *uuid.UUID
	Splits      []dto.SplitCreate
}

// CreateTransaction validates and persists a journal entry, then enqueues
// the balance adjustment. Transfer entries are created by the transfer
// coordinator, not here.
//
// Validation order: required fields, amount bounds, kind/account-type
// compatibility, insufficient funds, split sum. All checks run before any
// write; a rejected request has no partial effect.
func (s *Service) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*dto.TransactionRead, error) {
	logger := s.logger.With("tenant_id", in.TenantID, "account_id", in.AccountID, "kind", in.Kind)

	if in.TenantID == uuid.Nil || in.AccountID == uuid.Nil || in.ActorID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenant, account and actor are required", domain.ErrValidation)
	}
	if in.Kind != domainledger.KindIncome && in.Kind != domainledger.KindExpense {
		return nil, fmt.Errorf("%w: kind must be income or expense, transfers go through the transfer endpoint", domain.ErrValidation)
	}
	if in.ValueDate.IsZero() {
		return nil, fmt.Errorf("%w: value date is required", domain.ErrValidation)
	}
	if err := s.validateAmount(in.Amount); err != nil {
		return nil, err
	}

	acct, err := s.accounts.Get(ctx, in.TenantID, in.AccountID)
	if err != nil {
		return nil, err
	}
	if in.Currency == "" {
		in.Currency = acct.Currency.String()
	} else if in.Currency != acct.Currency.String() {
		return nil, fmt.Errorf("%w: transaction currency %s does not match account currency %s",
			domain.ErrValidation, in.Currency, acct.Currency)
	}
	if err := validateKindForAccount(in.Kind, acct); err != nil {
		return nil, err
	}
	if err := checkSufficientFunds(acct, domainledger.SignedEffect(in.Kind, domainledger.RoleNone, in.Amount)); err != nil {
		return nil, err
	}

	splits := make([]domainledger.CategorySplit, 0, len(in.Splits))
	for _, sp := range in.Splits {
		splits = append(splits, domainledger.CategorySplit{CategoryID: sp.CategoryID, Amount: sp.Amount})
	}
	if err := domainledger.ValidateSplits(in.Amount, splits); err != nil {
		return nil, err
	}

	txID := uuid.New()
	effect := domainledger.SignedEffect(in.Kind, domainledger.RoleNone, in.Amount)
	err = s.uow.Do(ctx, func(uow ledgerrepo.UnitOfWork) error {
		if err := uow.Transactions().Create(ctx, dto.TransactionCreate{
			ID:          txID,
			TenantID:    in.TenantID,
			AccountID:   in.AccountID,
			CategoryID:  in.CategoryID,
			Kind:        string(in.Kind),
			Amount:      in.Amount,
			Currency:    in.Currency,
			ValueDate:   in.ValueDate,
			Note:        in.Note,
			ActorID:     in.ActorID,
			RecurringID: in.RecurringID,
			Splits:      in.Splits,
		}); err != nil {
			return err
		}
		return uow.Outbox().Enqueue(ctx, dto.OutboxRecordCreate{
			ID:             uuid.New(),
			TransactionID:  txID,
			AccountID:      in.AccountID,
			Delta:          effect,
			IdempotencyKey: domainledger.AdjustmentKey(txID, domainledger.IntentApply),
		})
	})
	if err != nil {
		logger.Error("journal write failed", "error", err)
		return nil, err
	}

	_ = s.bus.Emit(ctx, events.TransactionPosted{
		EventID:       uuid.New(),
		TenantID:      in.TenantID,
		TransactionID: txID,
		AccountID:     in.AccountID,
		Kind:          string(in.Kind),
		Amount:        in.Amount,
		Currency:      in.Currency,
		Timestamp:     time.Now().UTC(),
	})
	logger.Info("transaction posted", "transaction_id", txID, "amount", in.Amount)

	return s.GetTransaction(ctx, in.TenantID, txID)
}

// UpdateTransaction applies a partial update and compensates the account
// balance by exactly the delta between the old and new signed effect. When
// the account changes, the old effect is reversed on the old account and
// the new effect applied on the new one.
func (s *Service) UpdateTransaction(ctx context.Context, tenantID, id uuid.UUID, update dto.TransactionUpdate) (*dto.TransactionRead, error) {
	old, err := s.getEntry(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if old.Kind == domainledger.KindTransfer &&
		(update.Amount != nil || update.AccountID != nil) {
		return nil, domain.ErrTransferImmutable
	}

	updated := *old
	replaceSplits := false
	if update.Amount != nil {
		if err := s.validateAmount(*update.Amount); err != nil {
			return nil, err
		}
		updated.Amount = *update.Amount
	}
	if update.AccountID != nil {
		updated.AccountID = *update.AccountID
	}
	if update.CategoryID != nil {
		updated.CategoryID = update.CategoryID
	}
	if update.ValueDate != nil {
		updated.ValueDate = *update.ValueDate
	}
	if update.Note != nil {
		updated.Note = *update.Note
	}
	if update.Splits != nil {
		replaceSplits = true
		updated.Splits = updated.Splits[:0]
		for _, sp := range *update.Splits {
			updated.Splits = append(updated.Splits, domainledger.CategorySplit{
				TransactionID: id, CategoryID: sp.CategoryID, Amount: sp.Amount,
			})
		}
	}
	if err := domainledger.ValidateSplits(updated.Amount, updated.Splits); err != nil {
		return nil, err
	}

	oldEffect := old.Effect()
	newEffect := updated.Effect()
	accountMoved := updated.AccountID != old.AccountID
	updated.Revision = old.Revision + 1

	var records []dto.OutboxRecordCreate
	if accountMoved {
		newAcct, err := s.accounts.Get(ctx, tenantID, updated.AccountID)
		if err != nil {
			return nil, err
		}
		if updated.Currency != newAcct.Currency.String() {
			return nil, fmt.Errorf("%w: transaction currency %s does not match account currency %s",
				domain.ErrValidation, updated.Currency, newAcct.Currency)
		}
		if err := validateKindForAccount(updated.Kind, newAcct); err != nil {
			return nil, err
		}
		if err := checkSufficientFunds(newAcct, newEffect); err != nil {
			return nil, err
		}
		records = append(records,
			dto.OutboxRecordCreate{
				ID:            uuid.New(),
				TransactionID: id,
				AccountID:     old.AccountID,
				Delta:         -oldEffect,
				IdempotencyKey: domainledger.AdjustmentKey(id,
					domainledger.RevisionIntent(updated.Revision, "reverse")),
			},
			dto.OutboxRecordCreate{
				ID:            uuid.New(),
				TransactionID: id,
				AccountID:     updated.AccountID,
				Delta:         newEffect,
				IdempotencyKey: domainledger.AdjustmentKey(id,
					domainledger.RevisionIntent(updated.Revision, "apply")),
			},
		)
	} else if delta := newEffect - oldEffect; delta != 0 {
		acct, err := s.accounts.Get(ctx, tenantID, old.AccountID)
		if err != nil {
			return nil, err
		}
		if err := checkSufficientFunds(acct, delta); err != nil {
			return nil, err
		}
		records = append(records, dto.OutboxRecordCreate{
			ID:            uuid.New(),
			TransactionID: id,
			AccountID:     old.AccountID,
			Delta:         delta,
			IdempotencyKey: domainledger.AdjustmentKey(id,
				domainledger.RevisionIntent(updated.Revision, "")),
		})
	}

	err = s.uow.Do(ctx, func(uow ledgerrepo.UnitOfWork) error {
		if err := uow.Transactions().Save(ctx, &updated, replaceSplits); err != nil {
			return err
		}
		for _, rec := range records {
			if err := uow.Outbox().Enqueue(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("journal update failed", "transaction_id", id, "error", err)
		return nil, err
	}
	return s.GetTransaction(ctx, tenantID, id)
}

// DeleteTransaction soft-deletes a journal entry and reverses its balance
// effect exactly; an entry is never deleted without a compensating
// adjustment. Deleting a linked transfer leg deletes both legs. Goal
// transfer legs are deleted through the goal contribution instead, so the
// goal's accumulated amount is reversed in lockstep.
func (s *Service) DeleteTransaction(ctx context.Context, tenantID, id uuid.UUID) error {
	entry, err := s.getEntry(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if entry.Kind != domainledger.KindTransfer {
		return s.reverseAndDelete(ctx, entry)
	}

	link, err := s.uow.Transactions().LinkFor(ctx, id)
	if err != nil {
		return err
	}
	if link == nil {
		return fmt.Errorf("%w: this entry funds a savings goal, delete the goal contribution instead",
			domain.ErrDomainRule)
	}

	outgoing, err := s.getEntry(ctx, tenantID, link.OutgoingID)
	if err != nil {
		return err
	}
	incoming, err := s.getEntry(ctx, tenantID, link.IncomingID)
	if err != nil {
		return err
	}
	return s.reverseAndDelete(ctx, outgoing, incoming)
}

// DeleteGoalTransferLeg soft-deletes the outgoing leg of a goal transfer
// and reverses its balance effect. Called by the goal service while it
// removes the contribution row.
func (s *Service) DeleteGoalTransferLeg(ctx context.Context, tenantID, transactionID uuid.UUID) error {
	entry, err := s.getEntry(ctx, tenantID, transactionID)
	if err != nil {
		return err
	}
	return s.reverseAndDelete(ctx, entry)
}

func (s *Service) reverseAndDelete(ctx context.Context, entries ...*domainledger.Transaction) error {
	err := s.uow.Do(ctx, func(uow ledgerrepo.UnitOfWork) error {
		for _, entry := range entries {
			if err := uow.Transactions().SoftDelete(ctx, entry.ID); err != nil {
				return err
			}
			if err := uow.Outbox().Enqueue(ctx, dto.OutboxRecordCreate{
				ID:             uuid.New(),
				TransactionID:  entry.ID,
				AccountID:      entry.AccountID,
				Delta:          -entry.Effect(),
				IdempotencyKey: domainledger.AdjustmentKey(entry.ID, domainledger.IntentReverse),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("journal delete failed", "error", err)
		return err
	}
	for _, entry := range entries {
		_ = s.bus.Emit(ctx, events.TransactionReversed{
			EventID:       uuid.New(),
			TenantID:      entry.TenantID,
			TransactionID: entry.ID,
			AccountID:     entry.AccountID,
			Delta:         -entry.Effect(),
			Timestamp:     time.Now().UTC(),
		})
	}
	return nil
}

// GetTransaction returns a single journal entry.
func (s *Service) GetTransaction(ctx context.Context, tenantID, id uuid.UUID) (*dto.TransactionRead, error) {
	entry, err := s.getEntry(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	read := mapToRead(entry)
	return &read, nil
}

// ListTransactions returns journal entries matching the filter. Transfer
// pairs appear once, via the outgoing leg, unless the filter asks for
// incoming legs too.
func (s *Service) ListTransactions(ctx context.Context, tenantID uuid.UUID, filter dto.TransactionFilter) ([]dto.TransactionRead, error) {
	entries, err := s.uow.Transactions().List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionRead, 0, len(entries))
	for _, e := range entries {
		out = append(out, mapToRead(e))
	}
	return out, nil
}

func (s *Service) getEntry(ctx context.Context, tenantID, id uuid.UUID) (*domainledger.Transaction, error) {
	return s.uow.Transactions().Get(ctx, tenantID, id)
}

func (s *Service) validateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if amount > s.maxAmount {
		return fmt.Errorf("%w: amount %d is above the maximum %d",
			domain.ErrAmountExceedsMax, amount, s.maxAmount)
	}
	return nil
}

// validateKindForAccount enforces kind/account-type compatibility: a debt
// account rejects direct income, money reaches it through a transfer.
func validateKindForAccount(kind domainledger.Kind, acct *domainaccount.Account) error {
	if kind == domainledger.KindIncome && acct.Type.IsDebt() {
		return domain.ErrIncomeOnDebtAccount
	}
	return nil
}

// checkSufficientFunds rejects an outflow that exceeds the current balance
// of a non-debt account. Debt accounts are exempt: expense is exactly how
// debt grows. This is a pre-write check; the atomic increment keeps
// concurrent adjustments sound regardless.
func checkSufficientFunds(acct *domainaccount.Account, delta int64) error {
	if delta >= 0 || acct.Type.IsDebt() {
		return nil
	}
	after, err := acct.Balance().Add(money.FromData(delta, acct.Currency.String()))
	if err != nil {
		return err
	}
	if after.IsNegative() {
		return fmt.Errorf("%w: balance %d, requested %d",
			domain.ErrInsufficientFunds, acct.CurrentBalance, -delta)
	}
	return nil
}

func mapToRead(t *domainledger.Transaction) dto.TransactionRead {
	read := dto.TransactionRead{
		ID:          t.ID,
		TenantID:    t.TenantID,
		AccountID:   t.AccountID,
		CategoryID:  t.CategoryID,
		Kind:        string(t.Kind),
		Role:        string(t.Role),
		Amount:      t.Amount,
		AmountMajor: money.FromData(t.Amount, t.Currency).AmountFloat(),
		Currency:    t.Currency,
		ValueDate:   t.ValueDate,
		Note:        t.Note,
		ActorID:     t.ActorID,
		RecurringID: t.RecurringID,
		Revision:    t.Revision,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	for _, sp := range t.Splits {
		read.Splits = append(read.Splits, dto.SplitRead{CategoryID: sp.CategoryID, Amount: sp.Amount})
	}
	return read
}
