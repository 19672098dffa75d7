package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/finance-tracker/wallet-ledger/config"
	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/infra/cache"
	"github.com/finance-tracker/wallet-ledger/internal/infra/db"
	"github.com/finance-tracker/wallet-ledger/internal/infra/dependency"
)

// setDefaults seeds viper with the server's environment configuration so
// both binaries agree when nothing else is set.
func setDefaults() {
	cfg := config.Load()

	viper.SetDefault("database.url", cfg.Database.URL)
	viper.SetDefault("redis.url", cfg.Redis.URL)
	viper.SetDefault("jwt.secret", cfg.JWT.Secret)
	viper.SetDefault("jwt.expiry", cfg.JWT.AccessTokenExpiry)
	viper.SetDefault("ledger.cascade_batch_size", cfg.Ledger.CascadeBatchSize)
	viper.SetDefault("ledger.lock_ttl", cfg.Ledger.LockTTL)
	viper.SetDefault("ledger.lock_wait", cfg.Ledger.LockWait)
	viper.SetDefault("ledger.stats_timezone", cfg.Ledger.StatsTimezone)
}

// loadConfig builds the application configuration from viper.
func loadConfig() *config.Config {
	cfg := config.Load()

	if url := viper.GetString("database.url"); url != "" {
		cfg.Database.URL = url
	}
	cfg.Redis.URL = viper.GetString("redis.url")
	cfg.JWT.Secret = viper.GetString("jwt.secret")
	cfg.JWT.AccessTokenExpiry = viper.GetDuration("jwt.expiry")
	cfg.Ledger.CascadeBatchSize = viper.GetInt("ledger.cascade_batch_size")
	cfg.Ledger.LockTTL = viper.GetDuration("ledger.lock_ttl")
	cfg.Ledger.LockWait = viper.GetDuration("ledger.lock_wait")
	cfg.Ledger.StatsTimezone = viper.GetString("ledger.stats_timezone")

	return cfg
}

// ledger bundles the open connections of a command run.
type ledger struct {
	cfg      *config.Config
	database *db.Database
	redis    *redis.Client
	locker   adapter.WalletLocker
}

func openLedger(ctx context.Context) (*ledger, error) {
	cfg := loadConfig()

	database, err := db.Open(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(); err != nil {
		_ = database.Close()
		return nil, err
	}

	l := &ledger{cfg: cfg, database: database}

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		l.redis = client
	}
	l.locker = dependency.NewWalletLocker(cfg, l.redis)

	return l, nil
}

func (l *ledger) Close() {
	if l.redis != nil {
		if err := l.redis.Close(); err != nil {
			slog.Warn("Failed to close redis connection", "error", err)
		}
	}
	if err := l.database.Close(); err != nil {
		slog.Warn("Failed to close database connection", "error", err)
	}
}
