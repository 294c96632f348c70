// cmd/seed/main.go loads demo data for local development.
// Usage: go run ./cmd/seed
//
// Everything goes through the services, so stock levels and register
// balances are produced by real ledger movements. Seeding is skipped when
// the database already holds warehouses.
package main

import (
	"context"
	"os"
	"time"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/config"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/infra"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/repository"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	warehouseRepo := repository.NewWarehouseRepository(db)
	productRepo := repository.NewProductRepository(db)
	cashRepo := repository.NewCashRepository(db)

	warehouses := service.NewWarehouseService(warehouseRepo, nil)
	products := service.NewProductService(productRepo, nil)
	stock := service.NewStockService(repository.NewStockRepository(db), productRepo, warehouseRepo, nil, service.DefaultListLimits)
	cash := service.NewCashService(cashRepo, service.DefaultListLimits)
	customers := service.NewCustomerService(repository.NewCustomerRepository(db), nil)

	ctx := context.Background()
	existing, err := warehouses.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list warehouses")
	}
	if len(existing) > 0 {
		log.Info().Int("warehouses", len(existing)).Msg("database already seeded, nothing to do")
		return
	}

	must := func(err error, what string) {
		if err != nil {
			log.Fatal().Err(err).Msg("seed: " + what)
		}
	}

	central, err := warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "Magazzino centrale"})
	must(err, "warehouse")
	shop, err := warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "Negozio"})
	must(err, "warehouse")

	type demoProduct struct {
		name, sku string
		price     float64
		inMain    int
		inShop    int
	}
	for _, d := range []demoProduct{
		{"Penna blu", "PEN-BLU", 1.20, 200, 40},
		{"Quaderno A4", "QDR-A4", 3.50, 120, 25},
		{"Zaino", "ZAINO-01", 39.90, 15, 3},
	} {
		sku := d.sku
		p, err := products.Create(ctx, dto.CreateProductRequest{Name: d.name, SKU: &sku, Price: decimal.NewFromFloat(d.price)})
		must(err, "product")
		reason := "carico iniziale"
		for wid, qty := range map[string]int{central.ID: d.inMain, shop.ID: d.inShop} {
			_, err := stock.RecordMovement(ctx, dto.CreateStockMovementRequest{
				ProductID: p.ID, WarehouseID: wid, Type: "IN", Quantity: qty, Reason: &reason,
			})
			must(err, "stock movement")
		}
	}

	reg, err := cash.CreateRegister(ctx, dto.CreateCashRegisterRequest{Name: "Cassa 1", InitialBalance: decimal.NewFromInt(200)})
	must(err, "cash register")
	desc := "incasso giornaliero"
	_, err = cash.RecordMovement(ctx, dto.CreateCashMovementRequest{
		CashRegisterID: reg.ID, Type: "IN", Amount: decimal.NewFromFloat(154.30), Description: &desc,
	})
	must(err, "cash movement")

	anna, err := customers.Create(ctx, dto.CreateCustomerRequest{Name: "Anna Rossi"})
	must(err, "customer")
	_, err = customers.Create(ctx, dto.CreateCustomerRequest{Name: "Luca Bianchi", ReferralID: &anna.ID})
	must(err, "customer")

	log.Info().Msg("demo data seeded")
}
