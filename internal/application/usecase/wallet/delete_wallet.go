package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
)

// DefaultCascadeBatchSize is the number of transactions removed per batch when a wallet is deleted.
const DefaultCascadeBatchSize = 500

// errCascadeStalled is returned when a batch removes nothing although IDs were found.
var errCascadeStalled = errors.New("cascade delete made no progress")

// DeleteWalletInput represents the input for wallet deletion.
type DeleteWalletInput struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

// DeleteWalletOutput represents the output of wallet deletion.
type DeleteWalletOutput struct {
	WalletID uuid.UUID
}

// DeleteWalletUseCase deletes a wallet and cascades to its transactions in the background.
// Transactions are removed without reversing their effect on any balance.
type DeleteWalletUseCase struct {
	walletRepo      adapter.WalletRepository
	transactionRepo adapter.TransactionRepository
	batchSize       int
	inFlight        sync.WaitGroup
}

// NewDeleteWalletUseCase creates a new DeleteWalletUseCase instance.
func NewDeleteWalletUseCase(
	walletRepo adapter.WalletRepository,
	transactionRepo adapter.TransactionRepository,
	batchSize int,
) *DeleteWalletUseCase {
	if batchSize <= 0 {
		batchSize = DefaultCascadeBatchSize
	}

	return &DeleteWalletUseCase{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		batchSize:       batchSize,
	}
}

// Execute deletes the wallet and starts the cascade. It returns once the wallet row is gone.
func (uc *DeleteWalletUseCase) Execute(ctx context.Context, input DeleteWalletInput) (*DeleteWalletOutput, error) {
	if _, err := loadOwnedWallet(ctx, uc.walletRepo, input.ID, input.UserID); err != nil {
		return nil, err
	}

	if err := uc.walletRepo.Delete(ctx, input.ID); err != nil {
		return nil, walletLookupError("failed to delete wallet", err)
	}

	// The cascade outlives the request.
	cascadeCtx := context.WithoutCancel(ctx)
	uc.inFlight.Add(1)
	go func() {
		defer uc.inFlight.Done()

		deleted, err := uc.Cascade(cascadeCtx, input.ID)
		if err != nil {
			slog.Error("Wallet cascade delete failed",
				"wallet_id", input.ID,
				"deleted", deleted,
				"error", err,
			)
			return
		}

		slog.Info("Wallet cascade delete finished",
			"wallet_id", input.ID,
			"deleted", deleted,
		)
	}()

	return &DeleteWalletOutput{WalletID: input.ID}, nil
}

// Cascade removes every transaction of the wallet in bounded batches until none remain.
// Each batch is atomic; the cascade as a whole is not.
func (uc *DeleteWalletUseCase) Cascade(ctx context.Context, walletID uuid.UUID) (int64, error) {
	var total int64

	for {
		ids, err := uc.transactionRepo.FindIDsByWallet(ctx, walletID, uc.batchSize)
		if err != nil {
			return total, fmt.Errorf("failed to list wallet transactions: %w", err)
		}
		if len(ids) == 0 {
			return total, nil
		}

		deleted, err := uc.transactionRepo.BatchDelete(ctx, ids)
		if err != nil {
			return total, fmt.Errorf("failed to delete transaction batch: %w", err)
		}
		if deleted == 0 {
			return total, errCascadeStalled
		}

		total += deleted
		slog.Debug("Wallet cascade batch deleted",
			"wallet_id", walletID,
			"batch", deleted,
			"total", total,
		)
	}
}

// Wait blocks until every cascade started by Execute has finished.
func (uc *DeleteWalletUseCase) Wait() {
	uc.inFlight.Wait()
}
