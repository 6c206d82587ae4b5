// Package account provides business logic for account operations: creation
// with opening-balance seeding, the idempotent balance adjustment pass-through,
// and reads.
package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/duitku/duitku/pkg/domain"
	domainaccount "github.com/duitku/duitku/pkg/domain/account"
	domainledger "github.com/duitku/duitku/pkg/domain/ledger"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/duitku/duitku/pkg/money"
	accountrepo "github.com/duitku/duitku/pkg/repository/account"
	ledgersvc "github.com/duitku/duitku/pkg/service/ledger"
	"github.com/google/uuid"
)

// Journal is the slice of the ledger service the account service needs to
// seed opening balances.
type Journal interface {
	CreateTransaction(ctx context.Context, in ledgersvc.CreateTransactionInput) (*dto.TransactionRead, error)
}

// Service provides business logic for account operations.
type Service struct {
	accounts     accountrepo.Repository
	journal      Journal
	logger       *slog.Logger
	lowThreshold int64
}

// New creates an account Service.
func New(
	accounts accountrepo.Repository,
	journal Journal,
	logger *slog.Logger,
	lowThreshold int64,
) *Service {
	return &Service{
		accounts:     accounts,
		journal:      journal,
		logger:       logger.With("service", "account"),
		lowThreshold: lowThreshold,
	}
}

// CreateAccountInput carries an account creation intent. OpeningBalance is
// in minor units and non-negative; debt accounts flip the sign on the
// seeded journal entry.
type CreateAccountInput struct {
	TenantID       uuid.UUID
	ActorID        uuid.UUID
	Name           string
	Type           domainaccount.Type
	Currency       string
	OpeningBalance int64
}

// CreateAccount persists the account and, when the opening balance is
// non-zero, seeds one initial-balance journal entry through the transaction
// log so the balance invariant holds from creation onward. The account row
// starts at zero; the seeded entry's adjustment brings the balance up.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (*dto.AccountRead, error) {
	logger := s.logger.With("tenant_id", in.TenantID, "name", in.Name)

	builder := domainaccount.New().
		WithTenantID(in.TenantID).
		WithName(in.Name).
		WithType(in.Type).
		WithOpeningBalance(in.OpeningBalance)
	if in.Currency != "" {
		builder = builder.WithCurrency(money.Code(in.Currency))
	}
	acct, err := builder.Build()
	if err != nil {
		return nil, err
	}
	if in.ActorID == uuid.Nil {
		return nil, fmt.Errorf("%w: actor is required", domain.ErrValidation)
	}

	if err := s.accounts.Create(ctx, dto.AccountCreate{
		ID:             acct.ID,
		TenantID:       acct.TenantID,
		Name:           acct.Name,
		Type:           string(acct.Type),
		Currency:       acct.Currency.String(),
		OpeningBalance: acct.OpeningBalance,
	}); err != nil {
		logger.Error("account create failed", "error", err)
		return nil, err
	}

	if acct.OpeningBalance != 0 {
		kind := domainledger.KindIncome
		if acct.Type.IsDebt() {
			// Debt opens as owed money: an expense moving the balance negative.
			kind = domainledger.KindExpense
		}
		if _, err := s.journal.CreateTransaction(ctx, ledgersvc.CreateTransactionInput{
			TenantID:  acct.TenantID,
			ActorID:   in.ActorID,
			AccountID: acct.ID,
			Kind:      kind,
			Amount:    acct.OpeningBalance,
			Currency:  acct.Currency.String(),
			ValueDate: time.Now().UTC(),
			Note:      "Opening balance",
		}); err != nil {
			logger.Error("opening balance seed failed", "account_id", acct.ID, "error", err)
			return nil, err
		}
	}

	logger.Info("account created", "account_id", acct.ID, "type", acct.Type)
	return s.GetAccount(ctx, acct.TenantID, acct.ID)
}

// AdjustBalance is the sanctioned balance mutator, passed through to the
// account store's atomic primitive. Safe to retry with the same key.
func (s *Service) AdjustBalance(
	ctx context.Context,
	accountID uuid.UUID,
	delta int64,
	idempotencyKey string,
) (dto.AdjustmentResult, error) {
	if idempotencyKey == "" {
		return dto.AdjustmentResult{}, fmt.Errorf("%w: idempotency key is required", domain.ErrValidation)
	}
	return s.accounts.AdjustBalance(ctx, accountID, delta, idempotencyKey)
}

// GetAccount returns one account with its presentational balance status.
func (s *Service) GetAccount(ctx context.Context, tenantID, id uuid.UUID) (*dto.AccountRead, error) {
	acct, err := s.accounts.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	read := s.mapToRead(acct)
	return &read, nil
}

// ListAccounts returns all of a tenant's accounts.
func (s *Service) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]dto.AccountRead, error) {
	accts, err := s.accounts.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AccountRead, 0, len(accts))
	for _, a := range accts {
		out = append(out, s.mapToRead(a))
	}
	return out, nil
}

// UpdateAccount renames an account.
func (s *Service) UpdateAccount(ctx context.Context, tenantID, id uuid.UUID, update dto.AccountUpdate) (*dto.AccountRead, error) {
	if err := s.accounts.Update(ctx, tenantID, id, update); err != nil {
		return nil, err
	}
	return s.GetAccount(ctx, tenantID, id)
}

// DeleteAccount soft-deletes an account. Its journal entries survive for
// history and reporting.
func (s *Service) DeleteAccount(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.accounts.SoftDelete(ctx, tenantID, id)
}

func (s *Service) mapToRead(a *domainaccount.Account) dto.AccountRead {
	return dto.AccountRead{
		ID:                  a.ID,
		TenantID:            a.TenantID,
		Name:                a.Name,
		Type:                string(a.Type),
		Currency:            a.Currency.String(),
		OpeningBalance:      a.OpeningBalance,
		CurrentBalance:      a.CurrentBalance,
		CurrentBalanceMajor: a.Balance().AmountFloat(),
		BalanceStatus:       string(domainaccount.StatusFor(a.CurrentBalance, s.lowThreshold)),
		CreatedAt:           a.CreatedAt,
	}
}
