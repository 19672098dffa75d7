// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance holds the materialized aggregate fields of a wallet.
// Amount always equals TotalIncome - TotalExpenses; the fields are maintained
// incrementally and never recomputed from history on the hot path.
type Balance struct {
	Amount        decimal.Decimal
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
}

// Apply returns the balance after a transaction of the given type and amount is added.
func (b Balance) Apply(transactionType TransactionType, amount decimal.Decimal) Balance {
	switch transactionType {
	case TransactionTypeIncome:
		b.Amount = b.Amount.Add(amount)
		b.TotalIncome = b.TotalIncome.Add(amount)
	case TransactionTypeExpense:
		b.Amount = b.Amount.Sub(amount)
		b.TotalExpenses = b.TotalExpenses.Add(amount)
	}
	return b
}

// Revert returns the balance as if a transaction of the given type and amount never existed.
func (b Balance) Revert(transactionType TransactionType, amount decimal.Decimal) Balance {
	switch transactionType {
	case TransactionTypeIncome:
		b.Amount = b.Amount.Sub(amount)
		b.TotalIncome = b.TotalIncome.Sub(amount)
	case TransactionTypeExpense:
		b.Amount = b.Amount.Add(amount)
		b.TotalExpenses = b.TotalExpenses.Sub(amount)
	}
	return b
}

// IsConsistent reports whether Amount equals TotalIncome - TotalExpenses.
func (b Balance) IsConsistent() bool {
	return b.Amount.Equal(b.TotalIncome.Sub(b.TotalExpenses))
}

// Equal reports whether all three fields match.
func (b Balance) Equal(other Balance) bool {
	return b.Amount.Equal(other.Amount) &&
		b.TotalIncome.Equal(other.TotalIncome) &&
		b.TotalExpenses.Equal(other.TotalExpenses)
}

// ZeroBalance returns a balance with all fields at zero.
func ZeroBalance() Balance {
	return Balance{
		Amount:        decimal.Zero,
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
}

// Wallet is a named money container owned by a user.
type Wallet struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	Icon   *string // Stored image URL, nil when the wallet has no icon
	Balance
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWallet creates a new Wallet with zero balances.
func NewWallet(userID uuid.UUID, name string, icon *string) *Wallet {
	now := time.Now().UTC()

	return &Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Icon:      icon,
		Balance:   ZeroBalance(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WalletSummary aggregates the balances of all wallets owned by a user.
type WalletSummary struct {
	WalletCount int
	Balance
}
