// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction (expense or income).
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

// IsValid reports whether the type is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeExpense || t == TransactionTypeIncome
}

// Transaction represents a single income or expense event tied to one wallet.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	WalletID    uuid.UUID
	Type        TransactionType
	Amount      decimal.Decimal // Always positive, the type carries the sign
	Category    string          // Required for expenses
	Description string
	Date        time.Time
	Receipt     *string // Stored image URL, nil when no receipt is attached
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTransaction creates a new Transaction entity.
func NewTransaction(
	userID uuid.UUID,
	walletID uuid.UUID,
	transactionType TransactionType,
	amount decimal.Decimal,
	category string,
	description string,
	date time.Time,
	receipt *string,
) *Transaction {
	now := time.Now().UTC()

	return &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		WalletID:    walletID,
		Type:        transactionType,
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
		Receipt:     receipt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AffectsBalance reports whether changing from this transaction to the given
// type, amount and wallet would change any wallet balance.
func (t *Transaction) AffectsBalance(transactionType TransactionType, amount decimal.Decimal, walletID uuid.UUID) bool {
	return t.Type != transactionType ||
		!t.Amount.Equal(amount) ||
		t.WalletID != walletID
}
