package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateWarehouseRequest struct {
	Name    string  `json:"name"    validate:"required,max=120"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

type UpdateWarehouseRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=1,max=120"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type WarehouseResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Address     *string              `json:"address"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	StockLevels []StockLevelResponse `json:"stockLevels,omitempty"`
}
