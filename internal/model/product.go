package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog item. SKU is optional but unique when present;
// a NULL sku never collides with another NULL.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"index;not null"`
	Description *string
	SKU         *string         `gorm:"column:sku;uniqueIndex"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"index"`
	UpdatedAt   time.Time

	StockLevels []StockLevel `gorm:"foreignKey:ProductID"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// StockLevel is the materialized quantity of one product in one warehouse.
// It is written only by the stock movement recorder and always equals the
// signed sum of the movements for the same pair.
type StockLevel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_product_warehouse"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_product_warehouse;index"`
	Quantity    int       `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Product   *Product   `gorm:"foreignKey:ProductID"`
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID"`
}

func (s *StockLevel) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
