package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

// WalletFields holds the descriptive fields of a wallet update. Nil fields are left untouched.
type WalletFields struct {
	Name *string
	Icon *string
}

// WalletRepository defines the interface for wallet persistence operations.
type WalletRepository interface {
	// Create creates a new wallet in the database.
	Create(ctx context.Context, wallet *entity.Wallet) error

	// FindByID retrieves a wallet by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Wallet, error)

	// FindByUser retrieves all wallets of a user, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Wallet, error)

	// FindAll retrieves every wallet in the system.
	FindAll(ctx context.Context) ([]*entity.Wallet, error)

	// Update merges name and icon into an existing wallet and returns the merged record.
	Update(ctx context.Context, id uuid.UUID, fields WalletFields) (*entity.Wallet, error)

	// UpdateBalance writes the amount and the total matching the transaction type.
	UpdateBalance(ctx context.Context, id uuid.UUID, balance entity.Balance, transactionType entity.TransactionType) error

	// ResetBalance overwrites all three balance fields.
	ResetBalance(ctx context.Context, id uuid.UUID, balance entity.Balance) error

	// Delete removes a wallet from the database.
	Delete(ctx context.Context, id uuid.UUID) error
}
