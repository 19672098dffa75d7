// Package db provides database connection and management functionality.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/finance-tracker/wallet-ledger/config"
	"github.com/finance-tracker/wallet-ledger/internal/integration/persistence/model"
)

const (
	connectTimeout = 5 * time.Second
	healthTimeout  = 2 * time.Second
)

// Database wraps the GORM connection holding the wallet and transaction tables.
type Database struct {
	db  *gorm.DB
	cfg *config.DatabaseConfig
}

// gormConfig stores timestamps in UTC; statistics buckets are cut from them.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// NewPostgresConnection connects to PostgreSQL, sizes the pool from cfg and
// fails when the server does not answer a ping.
func NewPostgresConnection(cfg *config.DatabaseConfig) (*Database, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.URL), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Ledger database connected",
		"driver", "postgres",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)

	return &Database{db: gormDB, cfg: cfg}, nil
}

// DB returns the underlying GORM database instance.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// HealthCheck reports whether the database answers a ping.
func (d *Database) HealthCheck() bool {
	return HealthCheck(d.db)()
}

// HealthCheck returns a checker that pings gormDB, for the /health endpoint.
func HealthCheck(gormDB *gorm.DB) func() bool {
	return func() bool {
		sqlDB, err := gormDB.DB()
		if err != nil {
			slog.Error("Database health check failed", "error", err)
			return false
		}

		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.Error("Database health check failed", "error", err)
			return false
		}
		return true
	}
}

// Close closes the connection pool.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB for closing: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	slog.Info("Ledger database closed")
	return nil
}

// AutoMigrate creates or updates the wallet and transaction tables.
func (d *Database) AutoMigrate() error {
	if err := d.db.AutoMigrate(model.AllModels()...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}
