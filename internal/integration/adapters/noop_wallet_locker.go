package adapters

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
)

// noopWalletLocker is used when Redis is not configured. Concurrent writers
// to the same wallet are then not serialized.
type noopWalletLocker struct{}

// NewNoopWalletLocker creates a locker that never blocks.
func NewNoopWalletLocker() adapter.WalletLocker {
	return noopWalletLocker{}
}

// Lock returns immediately unless ctx is already done.
func (noopWalletLocker) Lock(ctx context.Context, _ ...uuid.UUID) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func() {}, nil
}
