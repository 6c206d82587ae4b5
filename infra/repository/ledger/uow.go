package ledger

import (
	"context"

	repo "github.com/duitku/duitku/pkg/repository/ledger"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary of the transaction store and
// repository access bound to that boundary. Keeping repository construction
// inside the UoW guarantees every repository in one Do call shares the same
// DB session, which is what makes the journal write atomic.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a UnitOfWork for the transaction store connection.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db, tx: db}
}

// Do runs fn in a transaction boundary, providing a UoW whose repositories
// use the transaction session.
func (u *UoW) Do(ctx context.Context, fn func(uow repo.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// Transactions returns the journal repository bound to the current session.
func (u *UoW) Transactions() repo.Repository {
	return New(u.tx)
}

// Outbox returns the outbox repository bound to the current session.
func (u *UoW) Outbox() repo.OutboxRepository {
	return NewOutbox(u.tx)
}

var _ repo.UnitOfWork = (*UoW)(nil)
