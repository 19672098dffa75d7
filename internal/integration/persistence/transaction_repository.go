// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
	"github.com/finance-tracker/wallet-ledger/internal/integration/persistence/model"
)

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new transaction in the database.
func (r *transactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	transactionModel := model.TransactionFromEntity(transaction)
	if err := conn(ctx, r.db).Create(transactionModel).Error; err != nil {
		return domainerror.Persistence(err)
	}
	return nil
}

// FindByID retrieves a transaction by its ID.
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var transactionModel model.TransactionModel
	result := conn(ctx, r.db).Where("id = ?", id).First(&transactionModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTransactionNotFound
		}
		return nil, domainerror.Persistence(result.Error)
	}
	return transactionModel.ToEntity(), nil
}

// FindByFilter retrieves transactions matching the filter, newest date first.
func (r *transactionRepository) FindByFilter(ctx context.Context, filter adapter.TransactionFilter) ([]*entity.Transaction, error) {
	query := conn(ctx, r.db).Model(&model.TransactionModel{}).Where("user_id = ?", filter.UserID)

	if filter.WalletID != nil {
		query = query.Where("wallet_id = ?", *filter.WalletID)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", filter.EndDate.UTC())
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(category) LIKE ? OR LOWER(type) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var transactionModels []model.TransactionModel
	if err := query.Order("date DESC, created_at DESC").Find(&transactionModels).Error; err != nil {
		return nil, domainerror.Persistence(err)
	}
	return toTransactionEntities(transactionModels), nil
}

// FindByWallet retrieves every transaction of a wallet.
func (r *transactionRepository) FindByWallet(ctx context.Context, walletID uuid.UUID) ([]*entity.Transaction, error) {
	var transactionModels []model.TransactionModel
	result := conn(ctx, r.db).
		Where("wallet_id = ?", walletID).
		Order("date ASC").
		Find(&transactionModels)
	if result.Error != nil {
		return nil, domainerror.Persistence(result.Error)
	}
	return toTransactionEntities(transactionModels), nil
}

// FindEarliestDate returns the date of the user's oldest transaction, or nil when there is none.
func (r *transactionRepository) FindEarliestDate(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	var transactionModel model.TransactionModel
	result := conn(ctx, r.db).
		Select("date").
		Where("user_id = ?", userID).
		Order("date ASC").
		Limit(1).
		Find(&transactionModel)
	if result.Error != nil {
		return nil, domainerror.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &transactionModel.Date, nil
}

// FindIDsByWallet returns up to limit transaction IDs belonging to a wallet.
func (r *transactionRepository) FindIDsByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	result := conn(ctx, r.db).
		Model(&model.TransactionModel{}).
		Where("wallet_id = ?", walletID).
		Limit(limit).
		Pluck("id", &ids)
	if result.Error != nil {
		return nil, domainerror.Persistence(result.Error)
	}
	return ids, nil
}

// Update merges the supplied fields into an existing transaction.
func (r *transactionRepository) Update(ctx context.Context, id uuid.UUID, fields adapter.TransactionFields) (*entity.Transaction, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if fields.WalletID != nil {
		updates["wallet_id"] = *fields.WalletID
	}
	if fields.Type != nil {
		updates["type"] = string(*fields.Type)
	}
	if fields.Amount != nil {
		updates["amount"] = *fields.Amount
	}
	if fields.Category != nil {
		updates["category"] = *fields.Category
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Date != nil {
		updates["date"] = fields.Date.UTC()
	}
	if fields.Receipt != nil {
		updates["receipt"] = *fields.Receipt
	}

	result := conn(ctx, r.db).Model(&model.TransactionModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, domainerror.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domainerror.ErrTransactionNotFound
	}

	return r.FindByID(ctx, id)
}

// Delete removes a transaction from the database.
func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&model.TransactionModel{})
	if result.Error != nil {
		return domainerror.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrTransactionNotFound
	}
	return nil
}

// BatchDelete removes the given transactions atomically.
func (r *transactionRepository) BatchDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id IN ?", ids).Delete(&model.TransactionModel{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, domainerror.Persistence(err)
	}
	return deleted, nil
}

func toTransactionEntities(models []model.TransactionModel) []*entity.Transaction {
	transactions := make([]*entity.Transaction, len(models))
	for i := range models {
		transactions[i] = models[i].ToEntity()
	}
	return transactions
}
