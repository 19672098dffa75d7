// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

// TransactionFilter defines filter options for listing transactions.
type TransactionFilter struct {
	UserID    uuid.UUID
	WalletID  *uuid.UUID
	StartDate *time.Time // Inclusive
	EndDate   *time.Time // Inclusive
	Search    string     // Case-insensitive match on category, type or description
	Limit     int        // 0 means no limit
}

// TransactionFields holds the fields of a transaction update. Nil fields are left untouched.
type TransactionFields struct {
	WalletID    *uuid.UUID
	Type        *entity.TransactionType
	Amount      *decimal.Decimal
	Category    *string
	Description *string
	Date        *time.Time
	Receipt     *string
}

// TransactionRepository defines the interface for transaction persistence operations.
type TransactionRepository interface {
	// Create creates a new transaction in the database.
	Create(ctx context.Context, transaction *entity.Transaction) error

	// FindByID retrieves a transaction by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)

	// FindByFilter retrieves transactions matching the filter, newest date first.
	FindByFilter(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, error)

	// FindByWallet retrieves every transaction of a wallet.
	FindByWallet(ctx context.Context, walletID uuid.UUID) ([]*entity.Transaction, error)

	// FindEarliestDate returns the date of the user's oldest transaction, or nil when there is none.
	FindEarliestDate(ctx context.Context, userID uuid.UUID) (*time.Time, error)

	// FindIDsByWallet returns up to limit transaction IDs belonging to a wallet.
	FindIDsByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]uuid.UUID, error)

	// Update merges the supplied fields into an existing transaction.
	Update(ctx context.Context, id uuid.UUID, fields TransactionFields) (*entity.Transaction, error)

	// Delete removes a transaction from the database.
	Delete(ctx context.Context, id uuid.UUID) error

	// BatchDelete removes the given transactions atomically.
	// Returns the count of deleted transactions.
	BatchDelete(ctx context.Context, ids []uuid.UUID) (int64, error)
}
