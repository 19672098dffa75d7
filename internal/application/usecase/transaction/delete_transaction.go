package transaction

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
)

// DeleteTransactionInput represents the input for transaction deletion.
type DeleteTransactionInput struct {
	TransactionID uuid.UUID
	WalletID      *uuid.UUID // Optional; must match the transaction's wallet when given
	UserID        uuid.UUID
}

// DeleteTransactionOutput represents the output of transaction deletion.
type DeleteTransactionOutput struct {
	TransactionID uuid.UUID
	WalletID      uuid.UUID
	Balance       entity.Balance
}

// DeleteTransactionUseCase removes a transaction and reverses its effect on the wallet.
type DeleteTransactionUseCase struct {
	transactionRepo adapter.TransactionRepository
	walletRepo      adapter.WalletRepository
	uow             adapter.UnitOfWork
	locker          adapter.WalletLocker
}

// NewDeleteTransactionUseCase creates a new DeleteTransactionUseCase instance.
func NewDeleteTransactionUseCase(
	transactionRepo adapter.TransactionRepository,
	walletRepo adapter.WalletRepository,
	uow adapter.UnitOfWork,
	locker adapter.WalletLocker,
) *DeleteTransactionUseCase {
	return &DeleteTransactionUseCase{
		transactionRepo: transactionRepo,
		walletRepo:      walletRepo,
		uow:             uow,
		locker:          locker,
	}
}

// Execute performs the transaction deletion. The delete is refused when the
// reversal would leave the wallet with a negative amount.
func (uc *DeleteTransactionUseCase) Execute(ctx context.Context, input DeleteTransactionInput) (*DeleteTransactionOutput, error) {
	transaction, unlock, err := lockTransaction(ctx, uc.locker, uc.transactionRepo, input.TransactionID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if input.WalletID != nil && *input.WalletID != transaction.WalletID {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeTransactionWalletMismatch,
			"transaction does not belong to the given wallet",
			domainerror.ErrTransactionWalletMismatch,
		)
	}

	output := &DeleteTransactionOutput{
		TransactionID: transaction.ID,
		WalletID:      transaction.WalletID,
	}

	err = uc.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		wallet, err := loadWallet(ctx, uc.walletRepo, transaction.WalletID, input.UserID)
		if err != nil {
			return err
		}

		reverted := wallet.Balance.Revert(transaction.Type, transaction.Amount)
		if reverted.Amount.IsNegative() {
			return domainerror.NewTransactionError(
				domainerror.ErrCodeIrreversibleDelete,
				"you can not delete this transaction",
				domainerror.ErrTransactionIrreversible,
			)
		}

		if err := uc.walletRepo.UpdateBalance(ctx, wallet.ID, reverted, transaction.Type); err != nil {
			return persistenceError("failed to revert wallet balance", err)
		}

		if err := uc.transactionRepo.Delete(ctx, transaction.ID); err != nil {
			return persistenceError("failed to delete transaction", err)
		}

		output.WalletID = wallet.ID
		output.Balance = reverted
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}
