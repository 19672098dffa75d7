package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
)

// WalletModel represents the wallets table in the database.
type WalletModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name          string          `gorm:"type:varchar(100);not null"`
	Icon          *string         `gorm:"type:text"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TotalIncome   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TotalExpenses decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"not null;index"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for the WalletModel.
func (WalletModel) TableName() string {
	return "wallets"
}

// ToEntity converts a WalletModel to a domain Wallet entity.
func (m *WalletModel) ToEntity() *entity.Wallet {
	return &entity.Wallet{
		ID:     m.ID,
		UserID: m.UserID,
		Name:   m.Name,
		Icon:   m.Icon,
		Balance: entity.Balance{
			Amount:        m.Amount,
			TotalIncome:   m.TotalIncome,
			TotalExpenses: m.TotalExpenses,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// WalletFromEntity creates a WalletModel from a domain Wallet entity.
func WalletFromEntity(wallet *entity.Wallet) *WalletModel {
	return &WalletModel{
		ID:            wallet.ID,
		UserID:        wallet.UserID,
		Name:          wallet.Name,
		Icon:          wallet.Icon,
		Amount:        wallet.Amount,
		TotalIncome:   wallet.TotalIncome,
		TotalExpenses: wallet.TotalExpenses,
		CreatedAt:     wallet.CreatedAt,
		UpdatedAt:     wallet.UpdatedAt,
	}
}
