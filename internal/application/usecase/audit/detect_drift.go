// Package audit contains ledger consistency checks.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

// DetectDriftInput represents the input of a drift check.
// A nil UserID checks every wallet in the system.
type DetectDriftInput struct {
	UserID *uuid.UUID
	Fix    bool
}

// WalletDrift describes a wallet whose stored balance disagrees with its history.
type WalletDrift struct {
	WalletID uuid.UUID
	UserID   uuid.UUID
	Name     string
	Stored   entity.Balance
	Expected entity.Balance
	Fixed    bool
}

// DetectDriftOutput represents the result of a drift check.
type DetectDriftOutput struct {
	Checked int
	Drifts  []WalletDrift
}

// DetectDriftUseCase recomputes wallet balances from their transactions and
// reports the wallets whose stored fields differ.
type DetectDriftUseCase struct {
	walletRepo      adapter.WalletRepository
	transactionRepo adapter.TransactionRepository
	locker          adapter.WalletLocker
}

// NewDetectDriftUseCase creates a new DetectDriftUseCase instance.
func NewDetectDriftUseCase(
	walletRepo adapter.WalletRepository,
	transactionRepo adapter.TransactionRepository,
	locker adapter.WalletLocker,
) *DetectDriftUseCase {
	return &DetectDriftUseCase{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		locker:          locker,
	}
}

// Execute checks the wallets. Stored balances are only rewritten when input.Fix is set.
func (uc *DetectDriftUseCase) Execute(ctx context.Context, input DetectDriftInput) (*DetectDriftOutput, error) {
	var (
		wallets []*entity.Wallet
		err     error
	)
	if input.UserID != nil {
		wallets, err = uc.walletRepo.FindByUser(ctx, *input.UserID)
	} else {
		wallets, err = uc.walletRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallets: %w", err)
	}

	output := &DetectDriftOutput{Checked: len(wallets)}

	for _, wallet := range wallets {
		drift, err := uc.check(ctx, wallet.ID, input.Fix)
		if err != nil {
			return output, err
		}
		if drift != nil {
			output.Drifts = append(output.Drifts, *drift)
		}
	}

	return output, nil
}

// check compares one wallet under its lock so the fold and the stored
// balance describe the same moment.
func (uc *DetectDriftUseCase) check(ctx context.Context, walletID uuid.UUID, fix bool) (*WalletDrift, error) {
	unlock, err := uc.locker.Lock(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet %s: %w", walletID, err)
	}
	defer unlock()

	wallet, err := uc.walletRepo.FindByID(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload wallet %s: %w", walletID, err)
	}

	transactions, err := uc.transactionRepo.FindByWallet(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions of wallet %s: %w", walletID, err)
	}

	expected := Fold(transactions)
	if wallet.Balance.Equal(expected) {
		return nil, nil
	}

	drift := &WalletDrift{
		WalletID: wallet.ID,
		UserID:   wallet.UserID,
		Name:     wallet.Name,
		Stored:   wallet.Balance,
		Expected: expected,
	}

	slog.Warn("Wallet balance drift detected",
		"wallet_id", wallet.ID,
		"stored_amount", wallet.Amount.String(),
		"expected_amount", expected.Amount.String(),
	)

	if fix {
		if err := uc.walletRepo.ResetBalance(ctx, wallet.ID, expected); err != nil {
			return nil, fmt.Errorf("failed to fix wallet %s: %w", walletID, err)
		}
		drift.Fixed = true
		slog.Info("Wallet balance drift fixed", "wallet_id", wallet.ID)
	}

	return drift, nil
}

// Fold recomputes a balance from scratch by applying every transaction to zero.
func Fold(transactions []*entity.Transaction) entity.Balance {
	balance := entity.ZeroBalance()
	for _, t := range transactions {
		balance = balance.Apply(t.Type, t.Amount)
	}
	return balance
}
