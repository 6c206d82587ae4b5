// Package goal implements the goal store on GORM/Postgres.
package goal

import (
	"context"
	"errors"
	"fmt"

	infra "github.com/duitku/duitku/infra/repository"
	"github.com/duitku/duitku/infra/repository/model"
	"github.com/duitku/duitku/pkg/domain"
	domaingoal "github.com/duitku/duitku/pkg/domain/goal"
	"github.com/duitku/duitku/pkg/dto"
	repo "github.com/duitku/duitku/pkg/repository/goal"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a goal repository on the given goal store connection.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements goal.Repository.
func (r *repository) Create(ctx context.Context, create dto.GoalCreate) error {
	g := model.Goal{
		ID:           create.ID,
		TenantID:     create.TenantID,
		Name:         create.Name,
		TargetAmount: create.TargetAmount,
		Deadline:     create.Deadline,
	}
	return infra.TranslateError(r.db.WithContext(ctx).Create(&g).Error)
}

// Get implements goal.Repository.
func (r *repository) Get(ctx context.Context, tenantID, id uuid.UUID) (*domaingoal.Goal, error) {
	var g model.Goal
	err := r.db.WithContext(ctx).
		First(&g, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, infra.TranslateError(err)
	}
	return mapModelToDomain(&g), nil
}

// Exists implements goal.Repository.
func (r *repository) Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Goal{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Count(&count).Error
	if err != nil {
		return false, infra.TranslateError(err)
	}
	return count > 0, nil
}

// ListByTenant implements goal.Repository.
func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domaingoal.Goal, error) {
	var goals []model.Goal
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at").
		Find(&goals).Error
	if err != nil {
		return nil, infra.TranslateError(err)
	}
	out := make([]*domaingoal.Goal, 0, len(goals))
	for i := range goals {
		out = append(out, mapModelToDomain(&goals[i]))
	}
	return out, nil
}

// SoftDelete implements goal.Repository.
func (r *repository) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&model.Goal{})
	if res.Error != nil {
		return infra.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: goal %s", domain.ErrNotFound, id)
	}
	return nil
}

// AddContribution implements goal.Repository. The contribution row and the
// accumulated_amount increment commit in one local transaction, so the
// derived sum never drifts from its rows.
func (r *repository) AddContribution(ctx context.Context, create dto.ContributionCreate) error {
	return infra.TranslateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c := model.GoalContribution{
			ID:            create.ID,
			GoalID:        create.GoalID,
			TransactionID: create.TransactionID,
			AccountID:     create.AccountID,
			Amount:        create.Amount,
			Date:          create.Date,
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Goal{}).
			Where("id = ? AND deleted_at IS NULL", create.GoalID).
			Update("accumulated_amount", gorm.Expr("accumulated_amount + ?", create.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: goal %s", domain.ErrNotFound, create.GoalID)
		}
		return nil
	}))
}

// RemoveContribution implements goal.Repository. Decrements in lockstep
// with the row removal; the caller reverses the journal side.
func (r *repository) RemoveContribution(ctx context.Context, id uuid.UUID) (*domaingoal.Contribution, error) {
	var removed *domaingoal.Contribution
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.GoalContribution
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.GoalContribution{}, "id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Goal{}).
			Where("id = ?", c.GoalID).
			Update("accumulated_amount", gorm.Expr("accumulated_amount - ?", c.Amount))
		if res.Error != nil {
			return res.Error
		}
		removed = mapContribution(&c)
		return nil
	})
	if err != nil {
		return nil, infra.TranslateError(err)
	}
	return removed, nil
}

// GetContribution implements goal.Repository.
func (r *repository) GetContribution(ctx context.Context, id uuid.UUID) (*domaingoal.Contribution, error) {
	var c model.GoalContribution
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, infra.TranslateError(err)
	}
	return mapContribution(&c), nil
}

// ContributionByTransaction implements goal.Repository.
func (r *repository) ContributionByTransaction(ctx context.Context, transactionID uuid.UUID) (*domaingoal.Contribution, error) {
	var c model.GoalContribution
	err := r.db.WithContext(ctx).First(&c, "transaction_id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, infra.TranslateError(err)
	}
	return mapContribution(&c), nil
}

// ListContributions implements goal.Repository.
func (r *repository) ListContributions(ctx context.Context, goalID uuid.UUID) ([]*domaingoal.Contribution, error) {
	var rows []model.GoalContribution
	err := r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("date DESC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, infra.TranslateError(err)
	}
	out := make([]*domaingoal.Contribution, 0, len(rows))
	for i := range rows {
		out = append(out, mapContribution(&rows[i]))
	}
	return out, nil
}

func mapModelToDomain(m *model.Goal) *domaingoal.Goal {
	g := &domaingoal.Goal{
		ID:                m.ID,
		TenantID:          m.TenantID,
		Name:              m.Name,
		TargetAmount:      m.TargetAmount,
		AccumulatedAmount: m.AccumulatedAmount,
		Deadline:          m.Deadline,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		g.DeletedAt = &t
	}
	return g
}

func mapContribution(m *model.GoalContribution) *domaingoal.Contribution {
	return &domaingoal.Contribution{
		ID:            m.ID,
		GoalID:        m.GoalID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Amount:        m.Amount,
		Date:          m.Date,
		CreatedAt:     m.CreatedAt,
	}
}
