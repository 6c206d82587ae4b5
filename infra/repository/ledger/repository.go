// Package ledger implements the transaction store on GORM/Postgres.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	infra "github.com/duitku/duitku/infra/repository"
	"github.com/duitku/duitku/infra/repository/model"
	"github.com/duitku/duitku/pkg/domain"
	domainledger "github.com/duitku/duitku/pkg/domain/ledger"
	"github.com/duitku/duitku/pkg/dto"
	repo "github.com/duitku/duitku/pkg/repository/ledger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a journal repository on the given transaction store session.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements ledger.Repository.
func (r *repository) Create(ctx context.Context, create dto.TransactionCreate) error {
	tx := model.Transaction{
		ID:          create.ID,
		TenantID:    create.TenantID,
		AccountID:   create.AccountID,
		CategoryID:  create.CategoryID,
		Kind:        create.Kind,
		Role:        create.Role,
		Amount:      create.Amount,
		Currency:    create.Currency,
		ValueDate:   create.ValueDate,
		Note:        create.Note,
		ActorID:     create.ActorID,
		RecurringID: create.RecurringID,
	}
	for _, s := range create.Splits {
		tx.Splits = append(tx.Splits, model.CategorySplit{
			ID:            uuid.New(),
			TransactionID: create.ID,
			CategoryID:    s.CategoryID,
			Amount:        s.Amount,
		})
	}
	return infra.TranslateError(r.db.WithContext(ctx).Create(&tx).Error)
}

// Get implements ledger.Repository.
func (r *repository) Get(ctx context.Context, tenantID, id uuid.UUID) (*domainledger.Transaction, error) {
	var tx model.Transaction
	err := r.db.WithContext(ctx).Preload("Splits").
		First(&tx, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, infra.TranslateError(err)
	}
	return mapModelToDomain(&tx), nil
}

// Save implements ledger.Repository.
func (r *repository) Save(ctx context.Context, t *domainledger.Transaction, replaceSplits bool) error {
	updates := map[string]any{
		"account_id":  t.AccountID,
		"category_id": t.CategoryID,
		"amount":      t.Amount,
		"value_date":  t.ValueDate,
		"note":        t.Note,
		"revision":    t.Revision,
		"updated_at":  time.Now().UTC(),
	}
	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", t.ID).
		Updates(updates)
	if res.Error != nil {
		return infra.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, t.ID)
	}
	if !replaceSplits {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", t.ID).
		Delete(&model.CategorySplit{}).Error; err != nil {
		return infra.TranslateError(err)
	}
	if len(t.Splits) == 0 {
		return nil
	}
	splits := make([]model.CategorySplit, 0, len(t.Splits))
	for _, s := range t.Splits {
		id := s.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		splits = append(splits, model.CategorySplit{
			ID:            id,
			TransactionID: t.ID,
			CategoryID:    s.CategoryID,
			Amount:        s.Amount,
		})
	}
	return infra.TranslateError(r.db.WithContext(ctx).Create(&splits).Error)
}

// SoftDelete implements ledger.Repository.
func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Transaction{})
	if res.Error != nil {
		return infra.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, id)
	}
	return nil
}

// List implements ledger.Repository.
func (r *repository) List(ctx context.Context, tenantID uuid.UUID, filter dto.TransactionFilter) ([]*domainledger.Transaction, error) {
	q := r.db.WithContext(ctx).Preload("Splits").
		Where("tenant_id = ?", tenantID)
	if filter.AccountID != uuid.Nil {
		q = q.Where("account_id = ?", filter.AccountID)
	}
	if filter.CategoryID != uuid.Nil {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if !filter.From.IsZero() {
		q = q.Where("value_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("value_date <= ?", filter.To)
	}
	if filter.NoteContains != "" {
		q = q.Where("note ILIKE ?", "%"+filter.NoteContains+"%")
	}
	if !filter.IncludeIncomingLegs {
		// Transfer pairs are shown once, via the outgoing leg.
		q = q.Where("role <> ?", string(domainledger.RoleIncoming))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var txs []model.Transaction
	if err := q.Order("value_date DESC, created_at DESC").Find(&txs).Error; err != nil {
		return nil, infra.TranslateError(err)
	}
	out := make([]*domainledger.Transaction, 0, len(txs))
	for i := range txs {
		out = append(out, mapModelToDomain(&txs[i]))
	}
	return out, nil
}

// ListByIDs implements ledger.Repository.
func (r *repository) ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*domainledger.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var txs []model.Transaction
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&txs).Error
	if err != nil {
		return nil, infra.TranslateError(err)
	}
	out := make([]*domainledger.Transaction, 0, len(txs))
	for i := range txs {
		out = append(out, mapModelToDomain(&txs[i]))
	}
	return out, nil
}

// CreateLink implements ledger.Repository.
func (r *repository) CreateLink(ctx context.Context, link *domainledger.TransferLink) error {
	m := model.TransferLink{
		ID:         link.ID,
		OutgoingID: link.OutgoingID,
		IncomingID: link.IncomingID,
		CreatedAt:  link.CreatedAt,
	}
	return infra.TranslateError(r.db.WithContext(ctx).Create(&m).Error)
}

// LinkFor implements ledger.Repository.
func (r *repository) LinkFor(ctx context.Context, transactionID uuid.UUID) (*domainledger.TransferLink, error) {
	var m model.TransferLink
	err := r.db.WithContext(ctx).
		First(&m, "outgoing_id = ? OR incoming_id = ?", transactionID, transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, infra.TranslateError(err)
	}
	return &domainledger.TransferLink{
		ID:         m.ID,
		OutgoingID: m.OutgoingID,
		IncomingID: m.IncomingID,
		CreatedAt:  m.CreatedAt,
	}, nil
}

// LinksForOutgoing implements ledger.Repository.
func (r *repository) LinksForOutgoing(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domainledger.TransferLink, error) {
	out := make(map[uuid.UUID]*domainledger.TransferLink, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ms []model.TransferLink
	if err := r.db.WithContext(ctx).
		Where("outgoing_id IN ?", ids).
		Find(&ms).Error; err != nil {
		return nil, infra.TranslateError(err)
	}
	for i := range ms {
		out[ms[i].OutgoingID] = &domainledger.TransferLink{
			ID:         ms[i].ID,
			OutgoingID: ms[i].OutgoingID,
			IncomingID: ms[i].IncomingID,
			CreatedAt:  ms[i].CreatedAt,
		}
	}
	return out, nil
}

// SumEffects implements ledger.Repository. The signed effect is derived in
// SQL exactly as domain/ledger.SignedEffect derives it in Go.
func (r *repository) SumEffects(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Raw(`SELECT COALESCE(SUM(
			CASE
				WHEN kind = 'income' THEN amount
				WHEN kind = 'transfer' AND role = 'incoming' THEN amount
				ELSE -amount
			END), 0)
		FROM transactions
		WHERE account_id = ? AND deleted_at IS NULL`, accountID).Scan(&sum).Error
	if err != nil {
		return 0, infra.TranslateError(err)
	}
	return sum, nil
}

func mapModelToDomain(m *model.Transaction) *domainledger.Transaction {
	t := &domainledger.Transaction{
		ID:          m.ID,
		TenantID:    m.TenantID,
		AccountID:   m.AccountID,
		CategoryID:  m.CategoryID,
		Kind:        domainledger.Kind(m.Kind),
		Role:        domainledger.TransferRole(m.Role),
		Amount:      m.Amount,
		Currency:    m.Currency,
		ValueDate:   m.ValueDate,
		Note:        m.Note,
		ActorID:     m.ActorID,
		RecurringID: m.RecurringID,
		Revision:    m.Revision,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for _, s := range m.Splits {
		t.Splits = append(t.Splits, domainledger.CategorySplit{
			ID:            s.ID,
			TransactionID: s.TransactionID,
			CategoryID:    s.CategoryID,
			Amount:        s.Amount,
		})
	}
	if m.DeletedAt.Valid {
		dt := m.DeletedAt.Time
		t.DeletedAt = &dt
	}
	return t
}
