package service

import (
	"context"
	"strings"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/model"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type WarehouseService interface {
	Create(ctx context.Context, req dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error)
	// Get includes the warehouse's stock levels with their products.
	Get(ctx context.Context, id string) (*dto.WarehouseResponse, error)
	List(ctx context.Context) ([]dto.WarehouseResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error)
	Delete(ctx context.Context, id string) error
}

type warehouseService struct {
	repo  repository.WarehouseRepository
	cache productCache
}

// NewWarehouseService wires the warehouse service. rdb may be nil; when set,
// renaming a warehouse evicts the cached products that embed it.
func NewWarehouseService(repo repository.WarehouseRepository, rdb *redis.Client) WarehouseService {
	return &warehouseService{repo: repo, cache: productCache{rdb: rdb}}
}

func (s *warehouseService) Create(ctx context.Context, req dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newError(ErrValidation, "name is required")
	}
	w := &model.Warehouse{Name: name, Address: req.Address}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	resp := mapWarehouse(*w)
	return &resp, nil
}

func (s *warehouseService) Get(ctx context.Context, rawID string) (*dto.WarehouseResponse, error) {
	id, err := parseEntityID(rawID, "warehouse")
	if err != nil {
		return nil, err
	}
	w, err := s.repo.FindByIDWithStock(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(ErrNotFound, "warehouse not found")
		}
		return nil, err
	}
	resp := mapWarehouse(*w)
	return &resp, nil
}

func (s *warehouseService) List(ctx context.Context) ([]dto.WarehouseResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		result = append(result, mapWarehouse(w))
	}
	return result, nil
}

func (s *warehouseService) Update(ctx context.Context, rawID string, req dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	id, err := parseEntityID(rawID, "warehouse")
	if err != nil {
		return nil, err
	}
	w, err := s.repo.FindByIDWithStock(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(ErrNotFound, "warehouse not found")
		}
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newError(ErrValidation, "name must not be empty")
		}
		w.Name = name
	}
	if req.Address != nil {
		w.Address = req.Address
	}
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	productIDs := make([]uuid.UUID, 0, len(w.StockLevels))
	for _, l := range w.StockLevels {
		productIDs = append(productIDs, l.ProductID)
	}
	s.cache.invalidate(ctx, productIDs...)
	resp := mapWarehouse(*w)
	return &resp, nil
}

func (s *warehouseService) Delete(ctx context.Context, rawID string) error {
	id, err := parseEntityID(rawID, "warehouse")
	if err != nil {
		return err
	}
	used, err := s.repo.HasMovements(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return newError(ErrInUse, "warehouse has stock movements and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case repository.IsNotFound(err):
			return newError(ErrNotFound, "warehouse not found")
		case repository.IsForeignKeyViolation(err):
			return newError(ErrInUse, "warehouse has stock movements and cannot be deleted")
		}
		return err
	}
	return nil
}
