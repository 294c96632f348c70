package router

import (
	"time"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/config"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/handler"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/middleware"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/repository"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil, which disables the product cache.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	limits := service.ListLimits{Default: cfg.ListLimitDefault, Max: cfg.ListLimitMax}
	if limits.Default <= 0 {
		limits = service.DefaultListLimits
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	warehouseRepo := repository.NewWarehouseRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	cashRepo := repository.NewCashRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	warehouseSvc := service.NewWarehouseService(warehouseRepo, rdb)
	productSvc := service.NewProductService(productRepo, rdb)
	stockSvc := service.NewStockService(stockRepo, productRepo, warehouseRepo, rdb, limits)
	cashSvc := service.NewCashService(cashRepo, limits)
	customerSvc := service.NewCustomerService(customerRepo, service.RandomCustomerID)
	ledgerSvc := service.NewLedgerService(stockRepo, cashRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	warehousesH := handler.NewWarehousesHandler(warehouseSvc)
	productsH := handler.NewProductsHandler(productSvc)
	stockH := handler.NewStockHandler(stockSvc)
	cashH := handler.NewCashHandler(cashSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	ledgerH := handler.NewLedgerHandler(ledgerSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	health := handler.Health(db, rdb)
	r.GET("/health", health)

	api := r.Group("/api")
	{
		api.GET("/health", health)

		warehouses := api.Group("/warehouses")
		{
			warehouses.GET("", warehousesH.List)
			warehouses.POST("", warehousesH.Create)
			warehouses.GET("/:id", warehousesH.Get)
			warehouses.PUT("/:id", warehousesH.Update)
			warehouses.DELETE("/:id", warehousesH.Delete)
		}

		products := api.Group("/products")
		{
			products.GET("", productsH.List)
			products.POST("", productsH.Create)
			products.GET("/:id", productsH.Get)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
		}

		customers := api.Group("/customers")
		{
			customers.GET("", customersH.List)
			customers.POST("", customersH.Create)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
			customers.DELETE("/:id", customersH.Delete)
			customers.PUT("/:id/referral", customersH.UpdateReferral)
		}

		registers := api.Group("/cash-registers")
		{
			registers.GET("", cashH.ListRegisters)
			registers.POST("", cashH.CreateRegister)
			registers.GET("/:id", cashH.GetRegister)
			registers.PUT("/:id", cashH.UpdateRegister)
			registers.DELETE("/:id", cashH.DeleteRegister)
		}

		// Ledgers are append-only: no update or delete routes.
		api.GET("/stock-movements", stockH.ListMovements)
		api.POST("/stock-movements", stockH.RecordMovement)
		api.GET("/stock-levels", stockH.ListLevels)
		api.GET("/cash-movements", cashH.ListMovements)
		api.POST("/cash-movements", cashH.RecordMovement)

		api.GET("/ledger/reconcile", ledgerH.Reconcile)
	}

	return r
}
