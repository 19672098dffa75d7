package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
)

const (
	walletLockPrefix   = "ledger:wallet-lock:"
	defaultLockTTL     = 10 * time.Second
	defaultLockWait    = 3 * time.Second
	defaultLockBackoff = 50 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisWalletLocker implements the adapter.WalletLocker interface with one
// SET NX PX key per wallet.
type redisWalletLocker struct {
	client  *redis.Client
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
}

// NewRedisWalletLocker creates a new Redis-backed wallet locker.
func NewRedisWalletLocker(client *redis.Client, ttl, wait time.Duration) adapter.WalletLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}

	return &redisWalletLocker{
		client:  client,
		ttl:     ttl,
		wait:    wait,
		backoff: defaultLockBackoff,
	}
}

// Lock acquires the wallet locks in ascending ID order so two callers never
// wait on each other in opposite order.
func (l *redisWalletLocker) Lock(ctx context.Context, walletIDs ...uuid.UUID) (func(), error) {
	keys := lockKeys(walletIDs)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquire(ctx, key, token, deadline); err != nil {
			l.release(held, token)
			return nil, err
		}
		held = append(held, key)
	}

	return func() { l.release(held, token) }, nil
}

func (l *redisWalletLocker) acquire(ctx context.Context, key, token string, deadline time.Time) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire %s: %w", key, err)
		}
		if ok {
			return nil
		}

		if time.Now().Add(l.backoff).After(deadline) {
			return domainerror.ErrWalletLocked
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.backoff):
		}
	}
}

// release runs on a fresh context so a cancelled request still frees its locks.
func (l *redisWalletLocker) release(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := len(keys) - 1; i >= 0; i-- {
		if err := releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Err(); err != nil {
			slog.Warn("Failed to release wallet lock", "key", keys[i], "error", err)
		}
	}
}

// lockKeys returns the sorted, de-duplicated lock keys of the wallets.
func lockKeys(walletIDs []uuid.UUID) []string {
	seen := make(map[uuid.UUID]struct{}, len(walletIDs))
	keys := make([]string, 0, len(walletIDs))
	for _, id := range walletIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, walletLockPrefix+id.String())
	}
	sort.Strings(keys)
	return keys
}
