package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/transaction"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

// SubmitTransactionRequest represents the body of transaction creation and edit.
// The edit carries the full draft, exactly as a create does. It is bound from
// JSON or multipart form data; an uploaded receipt file takes precedence over
// ReceiptURL.
type SubmitTransactionRequest struct {
	WalletID    string          `json:"wallet_id" form:"wallet_id"`
	Type        string          `json:"type" form:"type"`
	Amount      decimal.Decimal `json:"amount" form:"amount"`
	Category    string          `json:"category" form:"category"`
	Description *string         `json:"description,omitempty" form:"description"`
	Date        *string         `json:"date,omitempty" form:"date"`
	ReceiptURL  *string         `json:"receipt_url,omitempty" form:"receipt_url"`
}

// ListTransactionsQuery represents the query string of the transaction list.
type ListTransactionsQuery struct {
	WalletID string `form:"wallet_id"`
	Search   string `form:"search"`
	Limit    int    `form:"limit" binding:"omitempty,min=0"`
}

// TransactionResponse represents a single transaction in API responses.
type TransactionResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	WalletID    string    `json:"wallet_id"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Receipt     *string   `json:"receipt"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TransactionListResponse represents the response for listing transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}

// DeleteTransactionResponse represents the response for transaction deletion.
// Balance is the wallet balance after the reversal.
type DeleteTransactionResponse struct {
	TransactionID string          `json:"transaction_id"`
	WalletID      string          `json:"wallet_id"`
	Balance       BalanceResponse `json:"balance"`
}

// ToTransactionResponse converts a domain Transaction entity to a TransactionResponse DTO.
func ToTransactionResponse(txn *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          txn.ID.String(),
		UserID:      txn.UserID.String(),
		WalletID:    txn.WalletID.String(),
		Type:        string(txn.Type),
		Amount:      txn.Amount.StringFixed(2),
		Category:    txn.Category,
		Description: txn.Description,
		Date:        txn.Date.UTC().Format(time.RFC3339),
		Receipt:     txn.Receipt,
		CreatedAt:   txn.CreatedAt,
		UpdatedAt:   txn.UpdatedAt,
	}
}

// ToTransactionListResponse converts a slice of transactions to a TransactionListResponse DTO.
func ToTransactionListResponse(transactions []*entity.Transaction) TransactionListResponse {
	resp := TransactionListResponse{
		Transactions: make([]TransactionResponse, 0, len(transactions)),
		Count:        len(transactions),
	}
	for _, txn := range transactions {
		resp.Transactions = append(resp.Transactions, ToTransactionResponse(txn))
	}
	return resp
}

// ToDeleteTransactionResponse converts the deletion output to its response form.
func ToDeleteTransactionResponse(output *transaction.DeleteTransactionOutput) DeleteTransactionResponse {
	return DeleteTransactionResponse{
		TransactionID: output.TransactionID.String(),
		WalletID:      output.WalletID.String(),
		Balance:       ToBalanceResponse(output.Balance),
	}
}
