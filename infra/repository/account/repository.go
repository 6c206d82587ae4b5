// Package account implements the account store on GORM/Postgres.
package account

import (
	"context"
	"fmt"
	"time"

	infra "github.com/duitku/duitku/infra/repository"
	"github.com/duitku/duitku/infra/repository/model"
	"github.com/duitku/duitku/pkg/domain"
	domainaccount "github.com/duitku/duitku/pkg/domain/account"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/duitku/duitku/pkg/money"
	repo "github.com/duitku/duitku/pkg/repository/account"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates an account repository on the given account store connection.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements account.Repository.
func (r *repository) Create(ctx context.Context, create dto.AccountCreate) error {
	acct := model.Account{
		ID:             create.ID,
		TenantID:       create.TenantID,
		Name:           create.Name,
		Type:           create.Type,
		Currency:       create.Currency,
		OpeningBalance: create.OpeningBalance,
		CurrentBalance: 0,
	}
	return infra.TranslateError(r.db.WithContext(ctx).Create(&acct).Error)
}

// Get implements account.Repository.
func (r *repository) Get(ctx context.Context, tenantID, id uuid.UUID) (*domainaccount.Account, error) {
	var acct model.Account
	err := r.db.WithContext(ctx).
		First(&acct, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, infra.TranslateError(err)
	}
	return mapModelToDomain(&acct), nil
}

// ListByTenant implements account.Repository.
func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domainaccount.Account, error) {
	var accts []model.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at").
		Find(&accts).Error
	if err != nil {
		return nil, infra.TranslateError(err)
	}
	return mapModels(accts), nil
}

// ListAll implements account.Repository.
func (r *repository) ListAll(ctx context.Context) ([]*domainaccount.Account, error) {
	var accts []model.Account
	if err := r.db.WithContext(ctx).Find(&accts).Error; err != nil {
		return nil, infra.TranslateError(err)
	}
	return mapModels(accts), nil
}

// Update implements account.Repository. Balance fields are not updatable
// here; AdjustBalance is the only balance mutator.
func (r *repository) Update(ctx context.Context, tenantID, id uuid.UUID, update dto.AccountUpdate) error {
	updates := make(map[string]any)
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates)
	if res.Error != nil {
		return infra.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
	}
	return nil
}

// SoftDelete implements account.Repository.
func (r *repository) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&model.Account{})
	if res.Error != nil {
		return infra.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
	}
	return nil
}

// AdjustBalance implements account.Repository.
//
// The idempotency record and the balance increment commit in one local
// transaction of the account store. The increment is a single
// `current_balance = current_balance + delta` statement, so concurrent
// adjustments to the same account never lose an update.
func (r *repository) AdjustBalance(
	ctx context.Context,
	accountID uuid.UUID,
	delta int64,
	idempotencyKey string,
) (dto.AdjustmentResult, error) {
	var result dto.AdjustmentResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		adj := model.BalanceAdjustment{
			IdempotencyKey: idempotencyKey,
			AccountID:      accountID,
			Delta:          delta,
			CreatedAt:      time.Now().UTC(),
		}
		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&adj)
		if ins.Error != nil {
			return ins.Error
		}
		if ins.RowsAffected == 0 {
			// Key seen before: this is a retry. Verify the payload matches
			// and hand back the recorded outcome without touching the
			// balance again.
			var prior model.BalanceAdjustment
			if err := tx.First(&prior, "idempotency_key = ?", idempotencyKey).Error; err != nil {
				return err
			}
			if prior.Delta != delta || prior.AccountID != accountID {
				return fmt.Errorf(
					"%w: idempotency key %q replayed with a different payload",
					domain.ErrConflict, idempotencyKey)
			}
			result = dto.AdjustmentResult{NewBalance: prior.NewBalance, Replayed: true}
			return nil
		}

		var newBalance int64
		row := tx.Raw(`UPDATE accounts
			SET current_balance = current_balance + ?, updated_at = ?
			WHERE id = ? AND deleted_at IS NULL
			RETURNING current_balance`,
			delta, time.Now().UTC(), accountID).Scan(&newBalance)
		if row.Error != nil {
			return row.Error
		}
		if row.RowsAffected == 0 {
			return fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
		}

		// Record the outcome so a replay can return it.
		if err := tx.Model(&model.BalanceAdjustment{}).
			Where("idempotency_key = ?", idempotencyKey).
			Update("new_balance", newBalance).Error; err != nil {
			return err
		}
		result = dto.AdjustmentResult{NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return dto.AdjustmentResult{}, infra.TranslateError(err)
	}
	return result, nil
}

func mapModels(accts []model.Account) []*domainaccount.Account {
	out := make([]*domainaccount.Account, 0, len(accts))
	for i := range accts {
		out = append(out, mapModelToDomain(&accts[i]))
	}
	return out
}

func mapModelToDomain(m *model.Account) *domainaccount.Account {
	a := &domainaccount.Account{
		ID:             m.ID,
		TenantID:       m.TenantID,
		Name:           m.Name,
		Type:           domainaccount.Type(m.Type),
		Currency:       money.Code(m.Currency),
		OpeningBalance: m.OpeningBalance,
		CurrentBalance: m.CurrentBalance,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		a.DeletedAt = &t
	}
	return a
}
