package infra

import (
	"fmt"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection for the given driver ("postgres" or
// "sqlite"), then brings the schema up to date with Migrate.
//
// TranslateError is enabled so unique violations surface as
// gorm.ErrDuplicatedKey regardless of the dialect.
func NewDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// a single connection keeps in-memory databases shared and
		// serializes writers the way SQLite expects
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates / updates all tables and applies the idempotent index
// patches GORM tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Warehouse{},
		&model.Product{},
		&model.StockLevel{},
		&model.StockMovement{},
		&model.CashRegister{},
		&model.CashMovement{},
		&model.Customer{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs DDL that is valid on both PostgreSQL and SQLite.
// Every statement uses IF NOT EXISTS so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// list endpoints filter by pair and sort newest-first
		{"stock movements by pair and date",
			`CREATE INDEX IF NOT EXISTS idx_stock_movements_pair_date
			   ON stock_movements (product_id, warehouse_id, date DESC)`},
		{"cash movements by register and date",
			`CREATE INDEX IF NOT EXISTS idx_cash_movements_register_date
			   ON cash_movements (cash_register_id, date DESC)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
