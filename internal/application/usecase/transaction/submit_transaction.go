package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/image"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
)

const (
	// MaxDescriptionLength is the maximum allowed length for transaction descriptions.
	MaxDescriptionLength = 255
	// MaxCategoryLength is the maximum allowed length for transaction categories.
	MaxCategoryLength = 50
	// AmountScale is the number of decimal places money is stored with.
	AmountScale = 2
)

// SubmitTransactionInput represents a transaction draft. A nil ID creates a
// new transaction; otherwise the transaction with that ID is edited.
type SubmitTransactionInput struct {
	ID          *uuid.UUID
	UserID      uuid.UUID
	WalletID    uuid.UUID
	Type        entity.TransactionType
	Amount      decimal.Decimal
	Category    string
	Description *string
	Date        *time.Time
	Receipt     *entity.ImageInput // Nil keeps the stored receipt on edit
}

// SubmitTransactionOutput represents the output of a transaction submit.
type SubmitTransactionOutput struct {
	Transaction *entity.Transaction
	Created     bool
}

// SubmitTransactionUseCase records a transaction and keeps wallet balances in step with it.
type SubmitTransactionUseCase struct {
	transactionRepo adapter.TransactionRepository
	walletRepo      adapter.WalletRepository
	uow             adapter.UnitOfWork
	locker          adapter.WalletLocker
	imageResolver   *image.ResolveImageUseCase
	now             func() time.Time
}

// NewSubmitTransactionUseCase creates a new SubmitTransactionUseCase instance.
func NewSubmitTransactionUseCase(
	transactionRepo adapter.TransactionRepository,
	walletRepo adapter.WalletRepository,
	uow adapter.UnitOfWork,
	locker adapter.WalletLocker,
	imageResolver *image.ResolveImageUseCase,
) *SubmitTransactionUseCase {
	return &SubmitTransactionUseCase{
		transactionRepo: transactionRepo,
		walletRepo:      walletRepo,
		uow:             uow,
		locker:          locker,
		imageResolver:   imageResolver,
		now:             time.Now,
	}
}

// Execute validates the draft, reconciles the affected wallets, resolves the
// receipt and persists the transaction, in that order.
func (uc *SubmitTransactionUseCase) Execute(ctx context.Context, input SubmitTransactionInput) (*SubmitTransactionOutput, error) {
	if err := validateDraft(input); err != nil {
		return nil, err
	}

	if input.ID == nil {
		return uc.create(ctx, input)
	}
	return uc.edit(ctx, input)
}

func (uc *SubmitTransactionUseCase) create(ctx context.Context, input SubmitTransactionInput) (*SubmitTransactionOutput, error) {
	unlock, err := lockWallets(ctx, uc.locker, input.WalletID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = uc.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		wallet, err := loadWallet(ctx, uc.walletRepo, input.WalletID, input.UserID)
		if err != nil {
			return err
		}

		balance, err := applyDelta(wallet.Balance, input.Type, input.Amount)
		if err != nil {
			return err
		}

		if err := uc.walletRepo.UpdateBalance(ctx, wallet.ID, balance, input.Type); err != nil {
			return persistenceError("failed to update wallet balance", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	receipt, err := uc.resolveReceipt(ctx, input.Receipt)
	if err != nil {
		return nil, err
	}

	date := uc.now().UTC()
	if input.Date != nil {
		date = *input.Date
	}
	var description string
	if input.Description != nil {
		description = *input.Description
	}

	transaction := entity.NewTransaction(
		input.UserID,
		input.WalletID,
		input.Type,
		input.Amount,
		input.Category,
		description,
		date,
		receipt,
	)

	if err := uc.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, persistenceError("failed to create transaction", err)
	}

	return &SubmitTransactionOutput{Transaction: transaction, Created: true}, nil
}

func (uc *SubmitTransactionUseCase) edit(ctx context.Context, input SubmitTransactionInput) (*SubmitTransactionOutput, error) {
	prior, unlock, err := lockTransaction(ctx, uc.locker, uc.transactionRepo, *input.ID, input.UserID, input.WalletID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if prior.AffectsBalance(input.Type, input.Amount, input.WalletID) {
		err = uc.uow.WithinTransaction(ctx, func(ctx context.Context) error {
			return uc.revertAndReapply(ctx, prior, input)
		})
		if err != nil {
			return nil, err
		}
	} else {
		slog.Debug("Transaction edit leaves balances unchanged",
			"transaction_id", prior.ID,
			"wallet_id", prior.WalletID,
		)
	}

	receipt, err := uc.resolveReceipt(ctx, input.Receipt)
	if err != nil {
		return nil, err
	}

	amount := input.Amount
	category := input.Category
	transaction, err := uc.transactionRepo.Update(ctx, prior.ID, adapter.TransactionFields{
		WalletID:    &input.WalletID,
		Type:        &input.Type,
		Amount:      &amount,
		Category:    &category,
		Description: input.Description,
		Date:        input.Date,
		Receipt:     receipt,
	})
	if err != nil {
		return nil, persistenceError("failed to update transaction", err)
	}

	return &SubmitTransactionOutput{Transaction: transaction}, nil
}

// revertAndReapply removes the prior transaction's effect from its wallet and
// applies the draft to the destination wallet, which may be the same one.
func (uc *SubmitTransactionUseCase) revertAndReapply(
	ctx context.Context,
	prior *entity.Transaction,
	input SubmitTransactionInput,
) error {
	original, err := loadWallet(ctx, uc.walletRepo, prior.WalletID, input.UserID)
	if err != nil {
		return err
	}

	reverted := original.Balance.Revert(prior.Type, prior.Amount)
	sameWallet := prior.WalletID == input.WalletID

	if input.Type == entity.TransactionTypeExpense {
		if sameWallet && reverted.Amount.LessThan(input.Amount) {
			return insufficientBalanceError()
		}
		if !sameWallet {
			destination, err := loadWallet(ctx, uc.walletRepo, input.WalletID, input.UserID)
			if err != nil {
				return err
			}
			if destination.Amount.LessThan(input.Amount) {
				return insufficientBalanceError()
			}
		}
	}

	if err := uc.walletRepo.UpdateBalance(ctx, original.ID, reverted, prior.Type); err != nil {
		return persistenceError("failed to revert wallet balance", err)
	}

	destination, err := loadWallet(ctx, uc.walletRepo, input.WalletID, input.UserID)
	if err != nil {
		return err
	}

	balance, err := applyDelta(destination.Balance, input.Type, input.Amount)
	if err != nil {
		return err
	}

	if err := uc.walletRepo.UpdateBalance(ctx, destination.ID, balance, input.Type); err != nil {
		return persistenceError("failed to update wallet balance", err)
	}

	slog.Debug("Transaction reconciled",
		"transaction_id", prior.ID,
		"from_wallet_id", prior.WalletID,
		"to_wallet_id", input.WalletID,
	)

	return nil
}

func (uc *SubmitTransactionUseCase) resolveReceipt(ctx context.Context, input *entity.ImageInput) (*string, error) {
	receipt, err := uc.imageResolver.Execute(ctx, input, entity.ImageFolderTransactions)
	if err != nil {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeReceiptUploadFailed,
			"failed to upload receipt",
			fmt.Errorf("%w: %w", domainerror.ErrReceiptUploadFailed, err),
		)
	}
	return receipt, nil
}

// validateDraft checks the draft before anything is read or written.
func validateDraft(input SubmitTransactionInput) error {
	if !input.Type.IsValid() {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionType,
			"transaction type must be 'expense' or 'income'",
			domainerror.ErrInvalidTransactionType,
		)
	}

	if !input.Amount.IsPositive() {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionAmount,
			"amount must be greater than zero",
			domainerror.ErrInvalidTransactionAmount,
		)
	}

	if !input.Amount.Equal(input.Amount.Truncate(AmountScale)) {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidAmountScale,
			fmt.Sprintf("amount must not have more than %d decimal places", AmountScale),
			domainerror.ErrInvalidAmountScale,
		)
	}

	if input.WalletID == uuid.Nil {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeMissingTransactionWallet,
			"wallet is required",
			domainerror.ErrMissingTransactionWallet,
		)
	}

	if input.Type == entity.TransactionTypeExpense && strings.TrimSpace(input.Category) == "" {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeMissingExpenseCategory,
			"category is required for expenses",
			domainerror.ErrMissingExpenseCategory,
		)
	}

	if utf8.RuneCountInString(input.Category) > MaxCategoryLength {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeCategoryTooLong,
			fmt.Sprintf("category must not exceed %d characters", MaxCategoryLength),
			domainerror.ErrCategoryTooLong,
		)
	}

	if input.Description != nil && utf8.RuneCountInString(*input.Description) > MaxDescriptionLength {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeDescriptionTooLong,
			fmt.Sprintf("description must not exceed %d characters", MaxDescriptionLength),
			domainerror.ErrDescriptionTooLong,
		)
	}

	return nil
}
