package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
)

// GetWalletInput represents the input for fetching a wallet.
type GetWalletInput struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

// GetWalletOutput represents the output of fetching a wallet.
type GetWalletOutput struct {
	Wallet *entity.Wallet
}

// GetWalletUseCase fetches a single wallet.
type GetWalletUseCase struct {
	walletRepo adapter.WalletRepository
}

// NewGetWalletUseCase creates a new GetWalletUseCase instance.
func NewGetWalletUseCase(walletRepo adapter.WalletRepository) *GetWalletUseCase {
	return &GetWalletUseCase{
		walletRepo: walletRepo,
	}
}

// Execute returns the wallet. Wallets of other users are reported as not found.
func (uc *GetWalletUseCase) Execute(ctx context.Context, input GetWalletInput) (*GetWalletOutput, error) {
	wallet, err := uc.walletRepo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, walletLookupError("failed to load wallet", err)
	}

	if wallet.UserID != input.UserID {
		return nil, domainerror.NewWalletError(
			domainerror.ErrCodeWalletNotFound,
			"wallet not found",
			domainerror.ErrWalletNotFound,
		)
	}

	return &GetWalletOutput{Wallet: wallet}, nil
}
