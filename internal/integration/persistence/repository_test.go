package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
	"github.com/finance-tracker/wallet-ledger/internal/testutil"
)

func TestWalletRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(testutil.NewDB(t))
	userID := uuid.New()

	t.Run("create and find", func(t *testing.T) {
		wallet := entity.NewWallet(userID, "Cash", nil)
		require.NoError(t, repo.Create(ctx, wallet))

		found, err := repo.FindByID(ctx, wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cash", found.Name)
		assert.Nil(t, found.Icon)
		assert.True(t, found.Amount.IsZero())
	})

	t.Run("missing wallet", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domainerror.ErrWalletNotFound)
		assert.ErrorIs(t, err, domainerror.ErrNotFound)
	})

	t.Run("update merges supplied fields", func(t *testing.T) {
		wallet := entity.NewWallet(userID, "Bank", nil)
		require.NoError(t, repo.Create(ctx, wallet))

		icon := "https://img.example/bank.png"
		updated, err := repo.Update(ctx, wallet.ID, adapter.WalletFields{Icon: &icon})
		require.NoError(t, err)
		assert.Equal(t, "Bank", updated.Name)
		require.NotNil(t, updated.Icon)
		assert.Equal(t, icon, *updated.Icon)
	})

	t.Run("update balance writes only the matching total", func(t *testing.T) {
		wallet := entity.NewWallet(userID, "Savings", nil)
		require.NoError(t, repo.Create(ctx, wallet))
		require.NoError(t, repo.ResetBalance(ctx, wallet.ID, entity.Balance{
			Amount:        decimal.NewFromInt(50),
			TotalIncome:   decimal.NewFromInt(80),
			TotalExpenses: decimal.NewFromInt(30),
		}))

		stale := entity.Balance{
			Amount:        decimal.NewFromInt(150),
			TotalIncome:   decimal.NewFromInt(180),
			TotalExpenses: decimal.NewFromInt(999),
		}
		require.NoError(t, repo.UpdateBalance(ctx, wallet.ID, stale, entity.TransactionTypeIncome))

		found, err := repo.FindByID(ctx, wallet.ID)
		require.NoError(t, err)
		assert.True(t, found.Amount.Equal(decimal.NewFromInt(150)))
		assert.True(t, found.TotalIncome.Equal(decimal.NewFromInt(180)))
		assert.True(t, found.TotalExpenses.Equal(decimal.NewFromInt(30)))
	})

	t.Run("find by user is scoped and newest first", func(t *testing.T) {
		otherUser := uuid.New()
		older := entity.NewWallet(otherUser, "Older", nil)
		older.CreatedAt = time.Now().UTC().Add(-time.Hour)
		newer := entity.NewWallet(otherUser, "Newer", nil)
		require.NoError(t, repo.Create(ctx, older))
		require.NoError(t, repo.Create(ctx, newer))

		wallets, err := repo.FindByUser(ctx, otherUser)
		require.NoError(t, err)
		require.Len(t, wallets, 2)
		assert.Equal(t, "Newer", wallets[0].Name)
		assert.Equal(t, "Older", wallets[1].Name)
	})

	t.Run("delete", func(t *testing.T) {
		wallet := entity.NewWallet(userID, "Temp", nil)
		require.NoError(t, repo.Create(ctx, wallet))
		require.NoError(t, repo.Delete(ctx, wallet.ID))

		_, err := repo.FindByID(ctx, wallet.ID)
		assert.ErrorIs(t, err, domainerror.ErrWalletNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, wallet.ID), domainerror.ErrWalletNotFound)
	})
}

func TestTransactionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository(testutil.NewDB(t))
	userID := uuid.New()
	walletID := uuid.New()
	otherWalletID := uuid.New()
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	seed := []*entity.Transaction{
		entity.NewTransaction(userID, walletID, entity.TransactionTypeExpense, decimal.NewFromInt(30), "food", "Lunch at cafe", day, nil),
		entity.NewTransaction(userID, walletID, entity.TransactionTypeIncome, decimal.NewFromInt(100), "", "Salary", day.AddDate(0, 0, -1), nil),
		entity.NewTransaction(userID, otherWalletID, entity.TransactionTypeExpense, decimal.NewFromInt(12), "transport", "", day.AddDate(0, 0, -5), nil),
		entity.NewTransaction(uuid.New(), walletID, entity.TransactionTypeExpense, decimal.NewFromInt(1), "food", "", day, nil),
	}
	for _, txn := range seed {
		require.NoError(t, repo.Create(ctx, txn))
	}

	t.Run("filter by owner is ordered by date desc", func(t *testing.T) {
		transactions, err := repo.FindByFilter(ctx, adapter.TransactionFilter{UserID: userID})
		require.NoError(t, err)
		require.Len(t, transactions, 3)
		assert.Equal(t, seed[0].ID, transactions[0].ID)
		assert.Equal(t, seed[1].ID, transactions[1].ID)
		assert.Equal(t, seed[2].ID, transactions[2].ID)
	})

	t.Run("filter by wallet, range and limit", func(t *testing.T) {
		start := day.AddDate(0, 0, -2)
		transactions, err := repo.FindByFilter(ctx, adapter.TransactionFilter{
			UserID:    userID,
			WalletID:  &walletID,
			StartDate: &start,
			Limit:     1,
		})
		require.NoError(t, err)
		require.Len(t, transactions, 1)
		assert.Equal(t, seed[0].ID, transactions[0].ID)
	})

	t.Run("search matches category, type and description", func(t *testing.T) {
		tests := []struct {
			search string
			want   int
		}{
			{"FOOD", 1},
			{"income", 1},
			{"cafe", 1},
			{"expense", 2},
			{"nothing", 0},
		}
		for _, tt := range tests {
			t.Run(tt.search, func(t *testing.T) {
				transactions, err := repo.FindByFilter(ctx, adapter.TransactionFilter{UserID: userID, Search: tt.search})
				require.NoError(t, err)
				assert.Len(t, transactions, tt.want)
			})
		}
	})

	t.Run("earliest date", func(t *testing.T) {
		earliest, err := repo.FindEarliestDate(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, earliest)
		assert.True(t, earliest.Equal(day.AddDate(0, 0, -5)))

		none, err := repo.FindEarliestDate(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("update merges supplied fields", func(t *testing.T) {
		description := "Dinner"
		amount := decimal.NewFromInt(45)
		updated, err := repo.Update(ctx, seed[0].ID, adapter.TransactionFields{
			Amount:      &amount,
			Description: &description,
		})
		require.NoError(t, err)
		assert.True(t, updated.Amount.Equal(amount))
		assert.Equal(t, "Dinner", updated.Description)
		assert.Equal(t, "food", updated.Category)

		_, err = repo.Update(ctx, uuid.New(), adapter.TransactionFields{Description: &description})
		assert.ErrorIs(t, err, domainerror.ErrTransactionNotFound)
	})

	t.Run("ids by wallet and batch delete", func(t *testing.T) {
		ids, err := repo.FindIDsByWallet(ctx, walletID, 2)
		require.NoError(t, err)
		assert.Len(t, ids, 2)

		deleted, err := repo.BatchDelete(ctx, ids)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		remaining, err := repo.FindByWallet(ctx, walletID)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)

		deleted, err = repo.BatchDelete(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestUnitOfWork(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	uow := NewUnitOfWork(db)
	repo := NewWalletRepository(db)

	t.Run("commits on success", func(t *testing.T) {
		wallet := entity.NewWallet(uuid.New(), "Committed", nil)
		err := uow.WithinTransaction(ctx, func(ctx context.Context) error {
			return repo.Create(ctx, wallet)
		})
		require.NoError(t, err)

		_, err = repo.FindByID(ctx, wallet.ID)
		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		wallet := entity.NewWallet(uuid.New(), "Rolled back", nil)
		boom := errors.New("boom")
		err := uow.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := repo.Create(ctx, wallet); err != nil {
				return err
			}
			return uow.WithinTransaction(ctx, func(ctx context.Context) error {
				return boom
			})
		})
		assert.ErrorIs(t, err, boom)

		_, err = repo.FindByID(ctx, wallet.ID)
		assert.ErrorIs(t, err, domainerror.ErrWalletNotFound)
	})
}
