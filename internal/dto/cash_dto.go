package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCashRegisterRequest struct {
	Name           string          `json:"name"           validate:"required,max=120"`
	InitialBalance decimal.Decimal `json:"initialBalance" validate:"min=0"`
}

// UpdateCashRegisterRequest only renames: balances are owned by the ledger.
type UpdateCashRegisterRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type CreateCashMovementRequest struct {
	CashRegisterID string          `json:"cashRegisterId" validate:"required,uuid"`
	Type           string          `json:"type"           validate:"required,oneof=IN OUT"`
	Amount         decimal.Decimal `json:"amount"         validate:"required,gt=0"`
	Description    *string         `json:"description"`
	Date           *Date           `json:"date"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type CashMovementFilter struct {
	CashRegisterID string `form:"cashRegisterId" validate:"omitempty,uuid"`
	Limit          int    `form:"limit"          validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CashRegisterResponse struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	InitialBalance decimal.Decimal        `json:"initialBalance"`
	CurrentBalance decimal.Decimal        `json:"currentBalance"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
	CashMovements  []CashMovementResponse `json:"cashMovements,omitempty"`
}

type CashMovementResponse struct {
	ID             string                `json:"id"`
	CashRegisterID string                `json:"cashRegisterId"`
	Type           string                `json:"type"`
	Amount         decimal.Decimal       `json:"amount"`
	Description    *string               `json:"description"`
	Date           time.Time             `json:"date"`
	CreatedAt      time.Time             `json:"createdAt"`
	CashRegister   *CashRegisterResponse `json:"cashRegister,omitempty"`
}
