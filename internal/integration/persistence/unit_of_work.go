package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
)

type txKey struct{}

// conn returns the transaction bound to ctx, or db when there is none.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// unitOfWork implements the adapter.UnitOfWork interface.
type unitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new unit of work over the given connection.
func NewUnitOfWork(db *gorm.DB) adapter.UnitOfWork {
	return &unitOfWork{db: db}
}

// WithinTransaction runs fn in a database transaction. A call nested inside
// another WithinTransaction joins the outer transaction.
func (u *unitOfWork) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
