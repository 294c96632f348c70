package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is keyed by a short human-readable id of the form C-NNN.
// ReferralID points at the customer who brought this one in; it is never
// the customer's own id.
type Customer struct {
	ID            string          `gorm:"type:varchar(8);primaryKey"`
	Name          string          `gorm:"not null"`
	Spesa         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Debito        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UltimoDeal    *time.Time
	ReferralID    *string   `gorm:"type:varchar(8);index"`
	Attivo        bool      `gorm:"not null"`
	IsReferral    bool      `gorm:"not null"`
	ReferralColor *string   `gorm:"type:varchar(7)"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time

	Referral *Customer `gorm:"foreignKey:ReferralID"`
}
