package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementType is the direction of a ledger entry.
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// Valid reports whether t is IN or OUT.
func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut
}

// StockMovement is an immutable ledger entry for a (product, warehouse) pair.
// Quantity is always positive; Type carries the sign.
type StockMovement struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	WarehouseID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Type        MovementType `gorm:"type:varchar(3);not null"`
	Quantity    int          `gorm:"not null;check:chk_stock_movements_quantity,quantity > 0"`
	Reason      *string
	Date        time.Time `gorm:"not null;index"`
	CreatedAt   time.Time

	Product   *Product   `gorm:"foreignKey:ProductID"`
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID"`
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Delta returns the signed quantity applied to the stock level.
func (m *StockMovement) Delta() int {
	if m.Type == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}

// CashMovement is an immutable ledger entry for a cash register.
// Movements are never modified or deleted.
type CashMovement struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CashRegisterID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type           MovementType    `gorm:"type:varchar(3);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null;check:chk_cash_movements_amount,amount > 0"`
	Description    *string
	Date           time.Time `gorm:"not null;index"`
	CreatedAt      time.Time

	CashRegister *CashRegister `gorm:"foreignKey:CashRegisterID"`
}

func (m *CashMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Delta returns the signed amount applied to the register balance.
func (m *CashMovement) Delta() decimal.Decimal {
	if m.Type == MovementOut {
		return m.Amount.Neg()
	}
	return m.Amount
}
