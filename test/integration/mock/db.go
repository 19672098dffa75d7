package mock

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var once sync.Once
var db *Db

type Db struct {
	DbConn *gorm.DB
	models map[string]any
	tables []string
}

// NewDb opens the shared in-memory database once and migrates the given
// models, keyed by table name.
func NewDb(models ...any) *Db {
	once.Do(
		func() {
			db = open(models)
		},
	)

	return db
}

func open(models []any) *Db {
	dbSQL, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		panic(err)
	}

	dbSQL.SetMaxOpenConns(1)

	dbConn, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	newDbMock := &Db{
		DbConn: dbConn,
		models: map[string]any{},
	}

	for _, model := range models {
		table, err := newDbMock.tableName(model)
		if err != nil {
			panic(fmt.Sprintf("failed to parse model %T. err: %s", model, err.Error()))
		}
		newDbMock.models[table] = model
		newDbMock.tables = append(newDbMock.tables, table)
	}

	if err := dbConn.AutoMigrate(models...); err != nil {
		panic(fmt.Sprintf("failed to migrate database. err: %s", err.Error()))
	}

	if err := newDbMock.checkTables(); err != nil {
		panic(err)
	}

	return newDbMock
}

// ClearDB removes every row so scenarios start from an empty ledger. Tables
// are emptied in reverse registration order so children go first.
func (d *Db) ClearDB() error {
	return d.DbConn.Transaction(func(tx *gorm.DB) error {
		for i := len(d.tables) - 1; i >= 0; i-- {
			table := d.tables[i]
			err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(d.models[table]).Error
			if err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
		}
		return nil
	})
}

func (d *Db) Count(table string) (int64, error) {
	model, ok := d.models[table]
	if !ok {
		return 0, fmt.Errorf("table %s is not registered", table)
	}

	var count int64
	if err := d.DbConn.Model(model).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (d *Db) checkTables() error {
	for table, model := range d.models {
		if !d.DbConn.Migrator().HasTable(model) {
			return fmt.Errorf("table %s was not created", table)
		}
	}

	return nil
}

func (d *Db) tableName(model any) (string, error) {
	stmt := &gorm.Statement{DB: d.DbConn}
	if err := stmt.Parse(model); err != nil {
		return "", err
	}
	return stmt.Schema.Table, nil
}

func (d *Db) GetModel(table string) (any, bool) {
	model, ok := d.models[table]
	return model, ok
}
