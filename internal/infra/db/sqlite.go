package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/finance-tracker/wallet-ledger/config"
)

const sqliteScheme = "sqlite://"

// Open connects to the database named by cfg.URL. URLs starting with
// sqlite:// open a local SQLite file; everything else goes to PostgreSQL.
func Open(cfg *config.DatabaseConfig) (*Database, error) {
	if strings.HasPrefix(cfg.URL, sqliteScheme) {
		return NewSQLiteConnection(cfg)
	}
	return NewPostgresConnection(cfg)
}

// NewSQLiteConnection opens a SQLite database file. SQLite allows one writer,
// so the pool is capped at a single connection.
func NewSQLiteConnection(cfg *config.DatabaseConfig) (*Database, error) {
	path := strings.TrimPrefix(cfg.URL, sqliteScheme)

	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &Database{
		db:  db,
		cfg: cfg,
	}, nil
}
