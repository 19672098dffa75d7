package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

// WalletSummaryInput represents the input for the wallet summary.
type WalletSummaryInput struct {
	UserID uuid.UUID
}

// WalletSummaryUseCase sums the balances of all wallets of a user.
type WalletSummaryUseCase struct {
	walletRepo adapter.WalletRepository
}

// NewWalletSummaryUseCase creates a new WalletSummaryUseCase instance.
func NewWalletSummaryUseCase(walletRepo adapter.WalletRepository) *WalletSummaryUseCase {
	return &WalletSummaryUseCase{
		walletRepo: walletRepo,
	}
}

// Execute returns total balance, income and expenses across the user's wallets.
func (uc *WalletSummaryUseCase) Execute(ctx context.Context, input WalletSummaryInput) (*entity.WalletSummary, error) {
	wallets, err := uc.walletRepo.FindByUser(ctx, input.UserID)
	if err != nil {
		return nil, persistenceError("failed to load wallets", err)
	}

	summary := &entity.WalletSummary{
		WalletCount: len(wallets),
		Balance:     entity.ZeroBalance(),
	}
	for _, w := range wallets {
		summary.Amount = summary.Amount.Add(w.Amount)
		summary.TotalIncome = summary.TotalIncome.Add(w.TotalIncome)
		summary.TotalExpenses = summary.TotalExpenses.Add(w.TotalExpenses)
	}

	return summary, nil
}
