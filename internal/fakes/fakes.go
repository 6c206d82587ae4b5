// Package fakes provides in-memory repository implementations for service
// tests. Behavior mirrors the Postgres implementations closely enough to
// exercise the services' control flow: idempotent balance adjustments,
// soft deletes and unique outbox keys all behave as they do in the stores.
package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/duitku/duitku/pkg/domain"
	domainaccount "github.com/duitku/duitku/pkg/domain/account"
	domaingoal "github.com/duitku/duitku/pkg/domain/goal"
	domainledger "github.com/duitku/duitku/pkg/domain/ledger"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/duitku/duitku/pkg/money"
	accountrepo "github.com/duitku/duitku/pkg/repository/account"
	goalrepo "github.com/duitku/duitku/pkg/repository/goal"
	ledgerrepo "github.com/duitku/duitku/pkg/repository/ledger"
)

// AccountRepo is an in-memory account store.
type AccountRepo struct {
	mu          sync.Mutex
	accounts    map[uuid.UUID]*domainaccount.Account
	adjustments map[string]adjustment
}

type adjustment struct {
	delta      int64
	newBalance int64
}

// NewAccountRepo creates an empty in-memory account store.
func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		accounts:    make(map[uuid.UUID]*domainaccount.Account),
		adjustments: make(map[string]adjustment),
	}
}

var _ accountrepo.Repository = (*AccountRepo)(nil)

// Create implements account.Repository.
func (r *AccountRepo) Create(_ context.Context, create dto.AccountCreate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[create.ID]; ok {
		return fmt.Errorf("%w: account %s", domain.ErrConflict, create.ID)
	}
	now := time.Now().UTC()
	currency := money.DefaultCode
	if create.Currency != "" {
		currency = money.Code(create.Currency)
	}
	r.accounts[create.ID] = &domainaccount.Account{
		ID:             create.ID,
		TenantID:       create.TenantID,
		Name:           create.Name,
		Type:           domainaccount.Type(create.Type),
		Currency:       currency,
		OpeningBalance: create.OpeningBalance,
		CurrentBalance: 0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return nil
}

// Get implements account.Repository.
func (r *AccountRepo) Get(_ context.Context, tenantID, id uuid.UUID) (*domainaccount.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.TenantID != tenantID || a.DeletedAt != nil {
		return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
	}
	cp := *a
	return &cp, nil
}

// ListByTenant implements account.Repository.
func (r *AccountRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*domainaccount.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domainaccount.Account
	for _, a := range r.accounts {
		if a.TenantID == tenantID && a.DeletedAt == nil {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListAll implements account.Repository.
func (r *AccountRepo) ListAll(_ context.Context) ([]*domainaccount.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domainaccount.Account
	for _, a := range r.accounts {
		if a.DeletedAt == nil {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Update implements account.Repository.
func (r *AccountRepo) Update(_ context.Context, tenantID, id uuid.UUID, update dto.AccountUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.TenantID != tenantID || a.DeletedAt != nil {
		return fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
	}
	if update.Name != nil {
		a.Name = *update.Name
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// SoftDelete implements account.Repository.
func (r *AccountRepo) SoftDelete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.TenantID != tenantID || a.DeletedAt != nil {
		return fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
	}
	now := time.Now().UTC()
	a.DeletedAt = &now
	return nil
}

// AdjustBalance implements account.Repository with the same idempotency
// semantics as the Postgres store.
func (r *AccountRepo) AdjustBalance(
	_ context.Context,
	accountID uuid.UUID,
	delta int64,
	idempotencyKey string,
) (dto.AdjustmentResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prior, ok := r.adjustments[idempotencyKey]; ok {
		if prior.delta != delta {
			return dto.AdjustmentResult{}, fmt.Errorf(
				"%w: key %s already applied with delta %d", domain.ErrConflict, idempotencyKey, prior.delta)
		}
		return dto.AdjustmentResult{NewBalance: prior.newBalance, Replayed: true}, nil
	}
	a, ok := r.accounts[accountID]
	if !ok {
		return dto.AdjustmentResult{}, fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
	}
	a.CurrentBalance += delta
	a.UpdatedAt = time.Now().UTC()
	r.adjustments[idempotencyKey] = adjustment{delta: delta, newBalance: a.CurrentBalance}
	return dto.AdjustmentResult{NewBalance: a.CurrentBalance}, nil
}

// Balance returns the stored balance, for assertions.
func (r *AccountRepo) Balance(id uuid.UUID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		return a.CurrentBalance
	}
	return 0
}

// LedgerUoW is an in-memory unit of work over the ledger and outbox fakes.
// Do is not transactional; tests that need rollback behavior inject failures
// into the repos instead.
type LedgerUoW struct {
	Ledger    *LedgerRepo
	OutboxRow *OutboxRepo
}

// NewLedgerUoW creates the ledger unit of work with fresh fakes.
func NewLedgerUoW() *LedgerUoW {
	return &LedgerUoW{Ledger: NewLedgerRepo(), OutboxRow: NewOutboxRepo()}
}

var _ ledgerrepo.UnitOfWork = (*LedgerUoW)(nil)

// Do implements ledger.UnitOfWork.
func (u *LedgerUoW) Do(_ context.Context, fn func(uow ledgerrepo.UnitOfWork) error) error {
	return fn(u)
}

// Transactions implements ledger.UnitOfWork.
func (u *LedgerUoW) Transactions() ledgerrepo.Repository { return u.Ledger }

// Outbox implements ledger.UnitOfWork.
func (u *LedgerUoW) Outbox() ledgerrepo.OutboxRepository { return u.OutboxRow }

// LedgerRepo is an in-memory transaction store.
type LedgerRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*domainledger.Transaction
	links   []*domainledger.TransferLink

	// FailCreateLink makes CreateLink return an error, for saga tests.
	FailCreateLink error
}

// NewLedgerRepo creates an empty in-memory transaction store.
func NewLedgerRepo() *LedgerRepo {
	return &LedgerRepo{entries: make(map[uuid.UUID]*domainledger.Transaction)}
}

var _ ledgerrepo.Repository = (*LedgerRepo)(nil)

// Create implements ledger.Repository.
func (r *LedgerRepo) Create(_ context.Context, create dto.TransactionCreate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[create.ID]; ok {
		return fmt.Errorf("%w: transaction %s", domain.ErrConflict, create.ID)
	}
	now := time.Now().UTC()
	t := &domainledger.Transaction{
		ID:          create.ID,
		TenantID:    create.TenantID,
		AccountID:   create.AccountID,
		CategoryID:  create.CategoryID,
		Kind:        domainledger.Kind(create.Kind),
		Role:        domainledger.TransferRole(create.Role),
		Amount:      create.Amount,
		Currency:    create.Currency,
		ValueDate:   create.ValueDate,
		Note:        create.Note,
		ActorID:     create.ActorID,
		RecurringID: create.RecurringID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, s := range create.Splits {
		t.Splits = append(t.Splits, domainledger.CategorySplit{
			ID:            uuid.New(),
			TransactionID: create.ID,
			CategoryID:    s.CategoryID,
			Amount:        s.Amount,
		})
	}
	r.entries[create.ID] = t
	return nil
}

// Get implements ledger.Repository.
func (r *LedgerRepo) Get(_ context.Context, tenantID, id uuid.UUID) (*domainledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.entries[id]
	if !ok || t.TenantID != tenantID || t.DeletedAt != nil {
		return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, id)
	}
	cp := *t
	return &cp, nil
}

// Save implements ledger.Repository.
func (r *LedgerRepo) Save(_ context.Context, tx *domainledger.Transaction, replaceSplits bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.entries[tx.ID]
	if !ok {
		return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, tx.ID)
	}
	cp := *tx
	if !replaceSplits {
		cp.Splits = stored.Splits
	}
	cp.UpdatedAt = time.Now().UTC()
	r.entries[tx.ID] = &cp
	return nil
}

// SoftDelete implements ledger.Repository.
func (r *LedgerRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.entries[id]
	if !ok || t.DeletedAt != nil {
		return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, id)
	}
	now := time.Now().UTC()
	t.DeletedAt = &now
	return nil
}

// List implements ledger.Repository with the filter subset the services use.
func (r *LedgerRepo) List(_ context.Context, tenantID uuid.UUID, filter dto.TransactionFilter) ([]*domainledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domainledger.Transaction
	for _, t := range r.entries {
		if t.TenantID != tenantID || t.DeletedAt != nil {
			continue
		}
		if filter.AccountID != uuid.Nil && t.AccountID != filter.AccountID {
			continue
		}
		if filter.Kind != "" && string(t.Kind) != filter.Kind {
			continue
		}
		if !filter.IncludeIncomingLegs && t.Role == domainledger.RoleIncoming {
			continue
		}
		if !filter.From.IsZero() && t.ValueDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && t.ValueDate.After(filter.To) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ValueDate.After(out[j].ValueDate) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// ListByIDs implements ledger.Repository.
func (r *LedgerRepo) ListByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*domainledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domainledger.Transaction
	for _, id := range ids {
		t, ok := r.entries[id]
		if !ok || t.TenantID != tenantID || t.DeletedAt != nil {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// CreateLink implements ledger.Repository.
func (r *LedgerRepo) CreateLink(_ context.Context, link *domainledger.TransferLink) error {
	if r.FailCreateLink != nil {
		return r.FailCreateLink
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *link
	r.links = append(r.links, &cp)
	return nil
}

// LinkFor implements ledger.Repository.
func (r *LedgerRepo) LinkFor(_ context.Context, transactionID uuid.UUID) (*domainledger.TransferLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.OutgoingID == transactionID || l.IncomingID == transactionID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

// LinksForOutgoing implements ledger.Repository.
func (r *LedgerRepo) LinksForOutgoing(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domainledger.TransferLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uuid.UUID]*domainledger.TransferLink, len(ids))
	for _, l := range r.links {
		for _, id := range ids {
			if l.OutgoingID == id {
				cp := *l
				out[id] = &cp
			}
		}
	}
	return out, nil
}

// SumEffects implements ledger.Repository.
func (r *LedgerRepo) SumEffects(_ context.Context, accountID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, t := range r.entries {
		if t.AccountID == accountID && t.DeletedAt == nil {
			sum += t.Effect()
		}
	}
	return sum, nil
}

// Entry returns a stored entry including deleted ones, for assertions.
func (r *LedgerRepo) Entry(id uuid.UUID) *domainledger.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.entries[id]; ok {
		cp := *t
		return &cp
	}
	return nil
}

// OutboxRepo is an in-memory outbox.
type OutboxRepo struct {
	mu      sync.Mutex
	records []dto.OutboxRecordRead
	done    map[uuid.UUID]bool
}

// NewOutboxRepo creates an empty in-memory outbox.
func NewOutboxRepo() *OutboxRepo {
	return &OutboxRepo{done: make(map[uuid.UUID]bool)}
}

var _ ledgerrepo.OutboxRepository = (*OutboxRepo)(nil)

// Enqueue implements ledger.OutboxRepository.
func (r *OutboxRepo) Enqueue(_ context.Context, rec dto.OutboxRecordCreate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.IdempotencyKey == rec.IdempotencyKey {
			return fmt.Errorf("%w: outbox key %s", domain.ErrConflict, rec.IdempotencyKey)
		}
	}
	r.records = append(r.records, dto.OutboxRecordRead{
		ID:             rec.ID,
		TransactionID:  rec.TransactionID,
		AccountID:      rec.AccountID,
		Delta:          rec.Delta,
		IdempotencyKey: rec.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	})
	return nil
}

// ListPending implements ledger.OutboxRepository.
func (r *OutboxRepo) ListPending(_ context.Context, limit int) ([]dto.OutboxRecordRead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []dto.OutboxRecordRead
	for _, rec := range r.records {
		if r.done[rec.ID] {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkDone implements ledger.OutboxRepository.
func (r *OutboxRepo) MarkDone(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done[id] = true
	return nil
}

// MarkFailed implements ledger.OutboxRepository.
func (r *OutboxRepo) MarkFailed(_ context.Context, id uuid.UUID, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			r.records[i].Attempts++
			r.records[i].LastError = lastError
			return nil
		}
	}
	return fmt.Errorf("%w: outbox record %s", domain.ErrNotFound, id)
}

// Pending returns the pending records, for assertions.
func (r *OutboxRepo) Pending() []dto.OutboxRecordRead {
	out, _ := r.ListPending(context.Background(), 0)
	return out
}

// GoalRepo is an in-memory goal store.
type GoalRepo struct {
	mu            sync.Mutex
	goals         map[uuid.UUID]*domaingoal.Goal
	contributions map[uuid.UUID]*domaingoal.Contribution

	// FailAddContribution makes AddContribution return an error, for saga
	// compensation tests.
	FailAddContribution error

	// FailRemoveContribution makes RemoveContribution return an error, for
	// retry tests.
	FailRemoveContribution error
}

// NewGoalRepo creates an empty in-memory goal store.
func NewGoalRepo() *GoalRepo {
	return &GoalRepo{
		goals:         make(map[uuid.UUID]*domaingoal.Goal),
		contributions: make(map[uuid.UUID]*domaingoal.Contribution),
	}
}

var _ goalrepo.Repository = (*GoalRepo)(nil)

// Create implements goal.Repository.
func (r *GoalRepo) Create(_ context.Context, create dto.GoalCreate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	r.goals[create.ID] = &domaingoal.Goal{
		ID:           create.ID,
		TenantID:     create.TenantID,
		Name:         create.Name,
		TargetAmount: create.TargetAmount,
		Deadline:     create.Deadline,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return nil
}

// Get implements goal.Repository.
func (r *GoalRepo) Get(_ context.Context, tenantID, id uuid.UUID) (*domaingoal.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok || g.TenantID != tenantID || g.DeletedAt != nil {
		return nil, fmt.Errorf("%w: goal %s", domain.ErrNotFound, id)
	}
	cp := *g
	return &cp, nil
}

// Exists implements goal.Repository.
func (r *GoalRepo) Exists(_ context.Context, tenantID, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	return ok && g.TenantID == tenantID && g.DeletedAt == nil, nil
}

// ListByTenant implements goal.Repository.
func (r *GoalRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*domaingoal.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domaingoal.Goal
	for _, g := range r.goals {
		if g.TenantID == tenantID && g.DeletedAt == nil {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SoftDelete implements goal.Repository.
func (r *GoalRepo) SoftDelete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok || g.TenantID != tenantID || g.DeletedAt != nil {
		return fmt.Errorf("%w: goal %s", domain.ErrNotFound, id)
	}
	now := time.Now().UTC()
	g.DeletedAt = &now
	return nil
}

// AddContribution implements goal.Repository.
func (r *GoalRepo) AddContribution(_ context.Context, create dto.ContributionCreate) error {
	if r.FailAddContribution != nil {
		return r.FailAddContribution
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[create.GoalID]
	if !ok || g.DeletedAt != nil {
		return fmt.Errorf("%w: goal %s", domain.ErrNotFound, create.GoalID)
	}
	r.contributions[create.ID] = &domaingoal.Contribution{
		ID:            create.ID,
		GoalID:        create.GoalID,
		TransactionID: create.TransactionID,
		AccountID:     create.AccountID,
		Amount:        create.Amount,
		Date:          create.Date,
		CreatedAt:     time.Now().UTC(),
	}
	g.AccumulatedAmount += create.Amount
	return nil
}

// RemoveContribution implements goal.Repository.
func (r *GoalRepo) RemoveContribution(_ context.Context, id uuid.UUID) (*domaingoal.Contribution, error) {
	if r.FailRemoveContribution != nil {
		return nil, r.FailRemoveContribution
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contributions[id]
	if !ok {
		return nil, fmt.Errorf("%w: contribution %s", domain.ErrNotFound, id)
	}
	delete(r.contributions, id)
	if g, ok := r.goals[c.GoalID]; ok {
		g.AccumulatedAmount -= c.Amount
	}
	cp := *c
	return &cp, nil
}

// GetContribution implements goal.Repository.
func (r *GoalRepo) GetContribution(_ context.Context, id uuid.UUID) (*domaingoal.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contributions[id]
	if !ok {
		return nil, fmt.Errorf("%w: contribution %s", domain.ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

// ContributionByTransaction implements goal.Repository.
func (r *GoalRepo) ContributionByTransaction(_ context.Context, transactionID uuid.UUID) (*domaingoal.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contributions {
		if c.TransactionID == transactionID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

// ListContributions implements goal.Repository.
func (r *GoalRepo) ListContributions(_ context.Context, goalID uuid.UUID) ([]*domaingoal.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domaingoal.Contribution
	for _, c := range r.contributions {
		if c.GoalID == goalID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
