package transaction

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

const (
	// MinSearchLength is the shortest search term that filters the list.
	MinSearchLength = 2
	// MaxListLimit caps the number of transactions returned at once.
	MaxListLimit = 500
)

// ListTransactionsInput represents the input for listing transactions.
type ListTransactionsInput struct {
	UserID   uuid.UUID
	WalletID *uuid.UUID
	Search   string
	Limit    int
}

// ListTransactionsOutput represents the output of listing transactions.
type ListTransactionsOutput struct {
	Transactions []*entity.Transaction
}

// ListTransactionsUseCase lists a user's transactions, newest first.
type ListTransactionsUseCase struct {
	transactionRepo adapter.TransactionRepository
}

// NewListTransactionsUseCase creates a new ListTransactionsUseCase instance.
func NewListTransactionsUseCase(transactionRepo adapter.TransactionRepository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{
		transactionRepo: transactionRepo,
	}
}

// Execute returns the matching transactions. Search terms shorter than
// MinSearchLength are ignored.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, input ListTransactionsInput) (*ListTransactionsOutput, error) {
	filter := adapter.TransactionFilter{
		UserID:   input.UserID,
		WalletID: input.WalletID,
		Limit:    input.Limit,
	}

	if search := strings.TrimSpace(input.Search); utf8.RuneCountInString(search) >= MinSearchLength {
		filter.Search = search
	}
	if filter.Limit <= 0 || filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}

	transactions, err := uc.transactionRepo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, persistenceError("failed to list transactions", err)
	}

	return &ListTransactionsOutput{Transactions: transactions}, nil
}
