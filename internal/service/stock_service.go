package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/model"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// StockService records stock movements and keeps the per-warehouse stock
// levels in step with them.
type StockService interface {
	RecordMovement(ctx context.Context, req dto.CreateStockMovementRequest) (*dto.StockMovementResponse, error)
	ListMovements(ctx context.Context, filter dto.StockMovementFilter) ([]dto.StockMovementResponse, error)
	ListLevels(ctx context.Context, filter dto.StockLevelFilter) ([]dto.StockLevelResponse, error)
}

type stockService struct {
	repo       repository.StockRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	cache      productCache
	limits     ListLimits
	now        func() time.Time
}

func NewStockService(
	repo repository.StockRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	rdb *redis.Client,
	limits ListLimits,
) StockService {
	return &stockService{
		repo:       repo,
		products:   products,
		warehouses: warehouses,
		cache:      productCache{rdb: rdb},
		limits:     limits,
		now:        time.Now,
	}
}

// RecordMovement appends a movement to the ledger and applies its delta to
// the (product, warehouse) stock level in one transaction. A delta that
// would leave the level negative rolls both writes back.
func (s *stockService) RecordMovement(ctx context.Context, req dto.CreateStockMovementRequest) (*dto.StockMovementResponse, error) {
	productID, err := parseRefID(req.ProductID, "productId")
	if err != nil {
		return nil, err
	}
	warehouseID, err := parseRefID(req.WarehouseID, "warehouseId")
	if err != nil {
		return nil, err
	}
	movType := model.MovementType(strings.TrimSpace(req.Type))
	if !movType.Valid() {
		return nil, newError(ErrValidation, "type must be IN or OUT")
	}
	if req.Quantity <= 0 {
		return nil, newError(ErrValidation, "quantity must be greater than zero")
	}

	// Both lookups are independent; run them side by side.
	var productFound, warehouseFound bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := s.products.Exists(gctx, productID)
		productFound = ok
		return err
	})
	g.Go(func() error {
		ok, err := s.warehouses.Exists(gctx, warehouseID)
		warehouseFound = ok
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !productFound {
		return nil, newError(ErrNotFound, "product not found")
	}
	if !warehouseFound {
		return nil, newError(ErrNotFound, "warehouse not found")
	}

	date := s.now()
	if req.Date != nil {
		date = req.Date.Time
	}
	mov := &model.StockMovement{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        movType,
		Quantity:    req.Quantity,
		Reason:      trimmedOrNil(req.Reason),
		Date:        date,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateMovementTx(tx, mov); err != nil {
			return err
		}
		level, err := s.repo.ApplyDeltaTx(tx, productID, warehouseID, mov.Delta())
		if err != nil {
			return err
		}
		if level.Quantity < 0 {
			return newError(ErrInsufficientStock,
				"insufficient stock: available %d, requested %d", level.Quantity+req.Quantity, req.Quantity)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, err
		}
		// the product or warehouse vanished between the lookup and the insert
		if repository.IsForeignKeyViolation(err) {
			return nil, newError(ErrNotFound, "product or warehouse not found")
		}
		return nil, err
	}

	s.cache.invalidate(ctx, productID)
	log.Info().
		Str("movement_id", mov.ID.String()).
		Str("product_id", productID.String()).
		Str("warehouse_id", warehouseID.String()).
		Str("type", string(movType)).
		Int("quantity", mov.Quantity).
		Msg("stock movement recorded")

	resp := mapStockMovement(*mov)
	return &resp, nil
}

func (s *stockService) ListMovements(ctx context.Context, filter dto.StockMovementFilter) ([]dto.StockMovementResponse, error) {
	productID, err := optionalRefID(filter.ProductID, "productId")
	if err != nil {
		return nil, err
	}
	warehouseID, err := optionalRefID(filter.WarehouseID, "warehouseId")
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListMovements(ctx, repository.StockMovementFilter{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Limit:       s.limits.Resolve(filter.Limit),
	})
	if err != nil {
		return nil, err
	}
	result := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		result = append(result, mapStockMovement(m))
	}
	return result, nil
}

func (s *stockService) ListLevels(ctx context.Context, filter dto.StockLevelFilter) ([]dto.StockLevelResponse, error) {
	productID, err := optionalRefID(filter.ProductID, "productId")
	if err != nil {
		return nil, err
	}
	warehouseID, err := optionalRefID(filter.WarehouseID, "warehouseId")
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListLevels(ctx, repository.StockLevelFilter{ProductID: productID, WarehouseID: warehouseID})
	if err != nil {
		return nil, err
	}
	result := make([]dto.StockLevelResponse, 0, len(list))
	for _, l := range list {
		result = append(result, mapStockLevel(l))
	}
	return result, nil
}
