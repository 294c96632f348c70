package service_test

import (
	"fmt"
	"testing"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/infra"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/repository"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB returns a migrated, private in-memory SQLite database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := infra.NewDatabase("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// services bundles every service wired against one database.
type services struct {
	db         *gorm.DB
	warehouses service.WarehouseService
	products   service.ProductService
	stock      service.StockService
	cash       service.CashService
	customers  service.CustomerService
	ledger     service.LedgerService
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := newTestDB(t)
	warehouseRepo := repository.NewWarehouseRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	cashRepo := repository.NewCashRepository(db)
	return &services{
		db:         db,
		warehouses: service.NewWarehouseService(warehouseRepo, nil),
		products:   service.NewProductService(productRepo, nil),
		stock:      service.NewStockService(stockRepo, productRepo, warehouseRepo, nil, service.DefaultListLimits),
		cash:       service.NewCashService(cashRepo, service.DefaultListLimits),
		customers:  service.NewCustomerService(repository.NewCustomerRepository(db), nil),
		ledger:     service.NewLedgerService(stockRepo, cashRepo),
	}
}
