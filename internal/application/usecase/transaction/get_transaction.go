package transaction

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
)

// GetTransactionInput represents the input for fetching a transaction.
type GetTransactionInput struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

// GetTransactionUseCase fetches a single transaction.
type GetTransactionUseCase struct {
	transactionRepo adapter.TransactionRepository
}

// NewGetTransactionUseCase creates a new GetTransactionUseCase instance.
func NewGetTransactionUseCase(transactionRepo adapter.TransactionRepository) *GetTransactionUseCase {
	return &GetTransactionUseCase{
		transactionRepo: transactionRepo,
	}
}

// Execute returns the transaction. Transactions of other users are reported as not found.
func (uc *GetTransactionUseCase) Execute(ctx context.Context, input GetTransactionInput) (*entity.Transaction, error) {
	transaction, err := loadTransaction(ctx, uc.transactionRepo, input.ID, input.UserID)
	if err != nil {
		if errors.Is(err, domainerror.ErrNotAuthorized) {
			return nil, domainerror.NewTransactionError(
				domainerror.ErrCodeTransactionNotFound,
				"transaction not found",
				domainerror.ErrTransactionNotFound,
			)
		}
		return nil, err
	}
	return transaction, nil
}
