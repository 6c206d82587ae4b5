package ledger

import (
	"context"
	"fmt"
	"time"

	infra "github.com/duitku/duitku/infra/repository"
	"github.com/duitku/duitku/infra/repository/model"
	"github.com/duitku/duitku/pkg/domain"
	"github.com/duitku/duitku/pkg/dto"
	repo "github.com/duitku/duitku/pkg/repository/ledger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outbox statuses.
const (
	statusPending = "pending"
	statusDone    = "done"
)

type outboxRepository struct {
	db *gorm.DB
}

// NewOutbox creates an outbox repository on the given transaction store
// session.
func NewOutbox(db *gorm.DB) repo.OutboxRepository {
	return &outboxRepository{db: db}
}

// Enqueue implements ledger.OutboxRepository. Called inside the same local
// transaction that persists the journal entry.
func (r *outboxRepository) Enqueue(ctx context.Context, rec dto.OutboxRecordCreate) error {
	m := model.OutboxRecord{
		ID:             rec.ID,
		TransactionID:  rec.TransactionID,
		AccountID:      rec.AccountID,
		Delta:          rec.Delta,
		IdempotencyKey: rec.IdempotencyKey,
		Status:         statusPending,
	}
	return infra.TranslateError(r.db.WithContext(ctx).Create(&m).Error)
}

// ListPending implements ledger.OutboxRepository. Oldest first, so a stuck
// row cannot starve newer ones forever but ordering stays roughly FIFO.
func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]dto.OutboxRecordRead, error) {
	var rows []model.OutboxRecord
	q := r.db.WithContext(ctx).
		Where("status = ?", statusPending).
		Order("created_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, infra.TranslateError(err)
	}
	out := make([]dto.OutboxRecordRead, 0, len(rows))
	for _, m := range rows {
		out = append(out, dto.OutboxRecordRead{
			ID:             m.ID,
			TransactionID:  m.TransactionID,
			AccountID:      m.AccountID,
			Delta:          m.Delta,
			IdempotencyKey: m.IdempotencyKey,
			Attempts:       m.Attempts,
			LastError:      m.LastError,
			CreatedAt:      m.CreatedAt,
		})
	}
	return out, nil
}

// MarkDone implements ledger.OutboxRepository.
func (r *outboxRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.OutboxRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     statusDone,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return infra.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: outbox record %s", domain.ErrNotFound, id)
	}
	return nil
}

// MarkFailed implements ledger.OutboxRepository. The row stays pending; the
// worker retries it on a later pass.
func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	if len(lastError) > 500 {
		lastError = lastError[:500]
	}
	res := r.db.WithContext(ctx).Model(&model.OutboxRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return infra.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: outbox record %s", domain.ErrNotFound, id)
	}
	return nil
}
