package adapter

import (
	"context"

	"github.com/google/uuid"
)

// WalletLocker serializes balance changes per wallet.
type WalletLocker interface {
	// Lock acquires the locks of all given wallets, blocking until they are held,
	// the wait budget runs out or ctx is done. The returned func releases them.
	Lock(ctx context.Context, walletIDs ...uuid.UUID) (unlock func(), err error)
}
