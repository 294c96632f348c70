package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"required,max=120"`
	Description *string         `json:"description"`
	SKU         *string         `json:"sku"         validate:"omitempty,max=64"`
	Price       decimal.Decimal `json:"price"       validate:"min=0"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=1,max=120"`
	Description *string          `json:"description"`
	SKU         *string          `json:"sku"         validate:"omitempty,max=64"`
	Price       *decimal.Decimal `json:"price"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description *string              `json:"description"`
	SKU         *string              `json:"sku"`
	Price       decimal.Decimal      `json:"price"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	StockLevels []StockLevelResponse `json:"stockLevels,omitempty"`
}
