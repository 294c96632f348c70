package service

import (
	"context"
	"strings"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/model"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/repository"

	"github.com/redis/go-redis/v9"
)

// ProductService defines the business logic contract for products.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id string) (*dto.ProductResponse, error)
	List(ctx context.Context) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id string) error
}

type productService struct {
	repo  repository.ProductRepository
	cache productCache
}

// NewProductService wires the product service. rdb may be nil.
func NewProductService(repo repository.ProductRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, cache: productCache{rdb: rdb}}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newError(ErrValidation, "name is required")
	}
	if req.Price.IsNegative() {
		return nil, newError(ErrValidation, "price must not be negative")
	}
	p := &model.Product{
		Name:        name,
		Description: req.Description,
		SKU:         trimmedOrNil(req.SKU),
		Price:       req.Price.Round(2),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, newError(ErrDuplicate, "SKU %q already exists", *p.SKU)
		}
		return nil, err
	}
	resp := mapProduct(*p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, rawID string) (*dto.ProductResponse, error) {
	id, err := parseEntityID(rawID, "product")
	if err != nil {
		return nil, err
	}
	if cached, ok := s.cache.get(ctx, id); ok {
		return cached, nil
	}
	gen := s.cache.generation(ctx, id)
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(ErrNotFound, "product not found")
		}
		return nil, err
	}
	resp := mapProduct(*p)
	s.cache.set(ctx, id, &resp, gen)
	return &resp, nil
}

func (s *productService) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		result = append(result, mapProduct(p))
	}
	return result, nil
}

func (s *productService) Update(ctx context.Context, rawID string, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	id, err := parseEntityID(rawID, "product")
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(ErrNotFound, "product not found")
		}
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newError(ErrValidation, "name must not be empty")
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.SKU != nil {
		p.SKU = trimmedOrNil(req.SKU)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, newError(ErrValidation, "price must not be negative")
		}
		p.Price = req.Price.Round(2)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, newError(ErrDuplicate, "SKU %q already exists", *p.SKU)
		}
		return nil, err
	}
	s.cache.invalidate(ctx, id)
	resp := mapProduct(*p)
	return &resp, nil
}

// Delete refuses to remove a product that still has ledger rows: the stock
// ledger is the source of truth and must not be orphaned.
func (s *productService) Delete(ctx context.Context, rawID string) error {
	id, err := parseEntityID(rawID, "product")
	if err != nil {
		return err
	}
	used, err := s.repo.HasMovements(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return newError(ErrInUse, "product has stock movements and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case repository.IsNotFound(err):
			return newError(ErrNotFound, "product not found")
		case repository.IsForeignKeyViolation(err):
			return newError(ErrInUse, "product has stock movements and cannot be deleted")
		}
		return err
	}
	s.cache.invalidate(ctx, id)
	return nil
}
