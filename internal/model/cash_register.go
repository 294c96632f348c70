package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashRegister holds money. InitialBalance is a snapshot taken at creation;
// CurrentBalance is derived from the cash ledger and is only ever changed by
// recording a CashMovement.
type CashRegister struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name           string          `gorm:"not null"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt      time.Time       `gorm:"index"`
	UpdatedAt      time.Time

	CashMovements []CashMovement `gorm:"foreignKey:CashRegisterID"`
}

func (r *CashRegister) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
