package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
	"github.com/finance-tracker/wallet-ledger/internal/integration/persistence/model"
)

// walletRepository implements the adapter.WalletRepository interface.
type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository instance.
func NewWalletRepository(db *gorm.DB) adapter.WalletRepository {
	return &walletRepository{
		db: db,
	}
}

// Create creates a new wallet in the database.
func (r *walletRepository) Create(ctx context.Context, wallet *entity.Wallet) error {
	walletModel := model.WalletFromEntity(wallet)
	if err := conn(ctx, r.db).Create(walletModel).Error; err != nil {
		return domainerror.Persistence(err)
	}
	return nil
}

// FindByID retrieves a wallet by its ID.
func (r *walletRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Wallet, error) {
	var walletModel model.WalletModel
	result := conn(ctx, r.db).Where("id = ?", id).First(&walletModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrWalletNotFound
		}
		return nil, domainerror.Persistence(result.Error)
	}
	return walletModel.ToEntity(), nil
}

// FindByUser retrieves all wallets of a user, newest first.
func (r *walletRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Wallet, error) {
	var walletModels []model.WalletModel
	result := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&walletModels)
	if result.Error != nil {
		return nil, domainerror.Persistence(result.Error)
	}
	return toWalletEntities(walletModels), nil
}

// FindAll retrieves every wallet in the system.
func (r *walletRepository) FindAll(ctx context.Context) ([]*entity.Wallet, error) {
	var walletModels []model.WalletModel
	result := conn(ctx, r.db).Order("user_id, created_at").Find(&walletModels)
	if result.Error != nil {
		return nil, domainerror.Persistence(result.Error)
	}
	return toWalletEntities(walletModels), nil
}

// Update merges name and icon into an existing wallet and returns the merged record.
func (r *walletRepository) Update(ctx context.Context, id uuid.UUID, fields adapter.WalletFields) (*entity.Wallet, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.Icon != nil {
		updates["icon"] = *fields.Icon
	}

	result := conn(ctx, r.db).Model(&model.WalletModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, domainerror.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domainerror.ErrWalletNotFound
	}

	return r.FindByID(ctx, id)
}

// UpdateBalance writes the amount and the total matching the transaction type.
// The other total is left untouched so a concurrent writer of it is not overwritten.
func (r *walletRepository) UpdateBalance(
	ctx context.Context,
	id uuid.UUID,
	balance entity.Balance,
	transactionType entity.TransactionType,
) error {
	updates := map[string]interface{}{
		"amount":     balance.Amount,
		"updated_at": time.Now().UTC(),
	}
	switch transactionType {
	case entity.TransactionTypeIncome:
		updates["total_income"] = balance.TotalIncome
	case entity.TransactionTypeExpense:
		updates["total_expenses"] = balance.TotalExpenses
	}

	return r.applyBalance(ctx, id, updates)
}

// ResetBalance overwrites all three balance fields.
func (r *walletRepository) ResetBalance(ctx context.Context, id uuid.UUID, balance entity.Balance) error {
	return r.applyBalance(ctx, id, map[string]interface{}{
		"amount":         balance.Amount,
		"total_income":   balance.TotalIncome,
		"total_expenses": balance.TotalExpenses,
		"updated_at":     time.Now().UTC(),
	})
}

func (r *walletRepository) applyBalance(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := conn(ctx, r.db).Model(&model.WalletModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return domainerror.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrWalletNotFound
	}
	return nil
}

// Delete removes a wallet from the database.
func (r *walletRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&model.WalletModel{})
	if result.Error != nil {
		return domainerror.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrWalletNotFound
	}
	return nil
}

func toWalletEntities(models []model.WalletModel) []*entity.Wallet {
	wallets := make([]*entity.Wallet, len(models))
	for i := range models {
		wallets[i] = models[i].ToEntity()
	}
	return wallets
}
