package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

// ListWalletsInput represents the input for listing wallets.
type ListWalletsInput struct {
	UserID uuid.UUID
}

// ListWalletsOutput represents the output of listing wallets.
type ListWalletsOutput struct {
	Wallets []*entity.Wallet
}

// ListWalletsUseCase lists a user's wallets, newest first.
type ListWalletsUseCase struct {
	walletRepo adapter.WalletRepository
}

// NewListWalletsUseCase creates a new ListWalletsUseCase instance.
func NewListWalletsUseCase(walletRepo adapter.WalletRepository) *ListWalletsUseCase {
	return &ListWalletsUseCase{
		walletRepo: walletRepo,
	}
}

// Execute returns the wallets owned by the user.
func (uc *ListWalletsUseCase) Execute(ctx context.Context, input ListWalletsInput) (*ListWalletsOutput, error) {
	wallets, err := uc.walletRepo.FindByUser(ctx, input.UserID)
	if err != nil {
		return nil, persistenceError("failed to list wallets", err)
	}

	return &ListWalletsOutput{Wallets: wallets}, nil
}
