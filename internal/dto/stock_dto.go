package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateStockMovementRequest struct {
	ProductID   string  `json:"productId"   validate:"required,uuid"`
	WarehouseID string  `json:"warehouseId" validate:"required,uuid"`
	Type        string  `json:"type"        validate:"required,oneof=IN OUT"`
	Quantity    int     `json:"quantity"    validate:"required,gt=0"`
	Reason      *string `json:"reason"`
	Date        *Date   `json:"date"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type StockMovementFilter struct {
	ProductID   string `form:"productId"   validate:"omitempty,uuid"`
	WarehouseID string `form:"warehouseId" validate:"omitempty,uuid"`
	Limit       int    `form:"limit"       validate:"min=0"`
}

type StockLevelFilter struct {
	ProductID   string `form:"productId"   validate:"omitempty,uuid"`
	WarehouseID string `form:"warehouseId" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StockLevelResponse struct {
	ID          string             `json:"id"`
	ProductID   string             `json:"productId"`
	WarehouseID string             `json:"warehouseId"`
	Quantity    int                `json:"quantity"`
	Product     *ProductResponse   `json:"product,omitempty"`
	Warehouse   *WarehouseResponse `json:"warehouse,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type StockMovementResponse struct {
	ID          string             `json:"id"`
	ProductID   string             `json:"productId"`
	WarehouseID string             `json:"warehouseId"`
	Type        string             `json:"type"`
	Quantity    int                `json:"quantity"`
	Reason      *string            `json:"reason"`
	Date        time.Time          `json:"date"`
	CreatedAt   time.Time          `json:"createdAt"`
	Product     *ProductResponse   `json:"product,omitempty"`
	Warehouse   *WarehouseResponse `json:"warehouse,omitempty"`
}
