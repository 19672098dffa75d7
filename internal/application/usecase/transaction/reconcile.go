// Package transaction contains transaction-related use cases.
package transaction

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
)

// applyDelta returns the balance after adding a transaction. Expenses that
// would drive the amount below zero are rejected.
func applyDelta(balance entity.Balance, transactionType entity.TransactionType, amount decimal.Decimal) (entity.Balance, error) {
	if transactionType == entity.TransactionTypeExpense && balance.Amount.Sub(amount).IsNegative() {
		return balance, insufficientBalanceError()
	}
	return balance.Apply(transactionType, amount), nil
}

func insufficientBalanceError() error {
	return domainerror.NewTransactionError(
		domainerror.ErrCodeInsufficientBalance,
		"the selected wallet does not have enough balance",
		domainerror.ErrTransactionInsufficientBalance,
	)
}

// loadWallet loads a wallet the user is about to change.
func loadWallet(ctx context.Context, repo adapter.WalletRepository, id, userID uuid.UUID) (*entity.Wallet, error) {
	wallet, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerror.ErrWalletNotFound) {
			return nil, domainerror.NewTransactionError(
				domainerror.ErrCodeTxnWalletNotFound,
				"wallet not found",
				err,
			)
		}
		return nil, persistenceError("failed to load wallet", err)
	}

	if wallet.UserID != userID {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeNotAuthorizedTransaction,
			"not authorized to modify this wallet",
			domainerror.ErrNotAuthorizedToModifyWallet,
		)
	}

	return wallet, nil
}

// loadTransaction loads a transaction the user is about to change.
func loadTransaction(ctx context.Context, repo adapter.TransactionRepository, id, userID uuid.UUID) (*entity.Transaction, error) {
	transaction, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerror.ErrTransactionNotFound) {
			return nil, domainerror.NewTransactionError(
				domainerror.ErrCodeTransactionNotFound,
				"transaction not found",
				err,
			)
		}
		return nil, persistenceError("failed to load transaction", err)
	}

	if transaction.UserID != userID {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeNotAuthorizedTransaction,
			"not authorized to modify this transaction",
			domainerror.ErrNotAuthorizedToModifyTransaction,
		)
	}

	return transaction, nil
}

// lockWallets acquires the wallet locks and maps a timeout to a coded error.
func lockWallets(ctx context.Context, locker adapter.WalletLocker, ids ...uuid.UUID) (func(), error) {
	unlock, err := locker.Lock(ctx, ids...)
	if err != nil {
		if errors.Is(err, domainerror.ErrWalletBusy) {
			return nil, domainerror.NewTransactionError(
				domainerror.ErrCodeTxnWalletBusy,
				"wallet is being updated, try again",
				err,
			)
		}
		return nil, persistenceError("failed to lock wallet", err)
	}
	return unlock, nil
}

// maxLockAttempts bounds how often lockTransaction chases a transaction that
// keeps moving between wallets.
const maxLockAttempts = 3

// lockTransaction loads a transaction and locks its wallet together with the
// extra wallets. The transaction is re-read under the lock; if it moved to
// another wallet meanwhile, the locks are released and taken again.
func lockTransaction(
	ctx context.Context,
	locker adapter.WalletLocker,
	repo adapter.TransactionRepository,
	id, userID uuid.UUID,
	extra ...uuid.UUID,
) (*entity.Transaction, func(), error) {
	transaction, err := loadTransaction(ctx, repo, id, userID)
	if err != nil {
		return nil, nil, err
	}

	for attempt := 1; attempt <= maxLockAttempts; attempt++ {
		unlock, err := lockWallets(ctx, locker, append([]uuid.UUID{transaction.WalletID}, extra...)...)
		if err != nil {
			return nil, nil, err
		}

		current, err := loadTransaction(ctx, repo, id, userID)
		if err != nil {
			unlock()
			return nil, nil, err
		}
		if current.WalletID == transaction.WalletID {
			return current, unlock, nil
		}

		unlock()
		transaction = current
	}

	return nil, nil, domainerror.NewTransactionError(
		domainerror.ErrCodeTxnWalletBusy,
		"wallet is being updated, try again",
		domainerror.ErrWalletBusy,
	)
}

// persistenceError wraps a store failure, passing coded errors through untouched.
func persistenceError(message string, err error) error {
	var txnErr *domainerror.TransactionError
	if errors.As(err, &txnErr) {
		return err
	}
	return domainerror.NewTransactionError(domainerror.ErrCodeTxnPersistence, message, err)
}
