package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCustomerRequest struct {
	Name       string           `json:"name"       validate:"required,max=120"`
	Spesa      *decimal.Decimal `json:"spesa"`
	UltimoDeal *Date            `json:"ultimoDeal"`
	ReferralID *string          `json:"referralId"`
	Attivo     *bool            `json:"attivo"`
}

// UpdateCustomerRequest is a partial update. ReferralID and UltimoDeal can be
// cleared with an explicit null (or "" for referralId).
type UpdateCustomerRequest struct {
	Name       *string          `json:"name"       validate:"omitempty,min=1,max=120"`
	Spesa      *decimal.Decimal `json:"spesa"`
	UltimoDeal Optional[Date]   `json:"ultimoDeal"`
	ReferralID Optional[string] `json:"referralId"`
	Attivo     *bool            `json:"attivo"`
}

type UpdateReferralSettingsRequest struct {
	IsReferral    *bool            `json:"isReferral"`
	ReferralColor Optional[string] `json:"referralColor"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CustomerResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Spesa           decimal.Decimal `json:"spesa"`
	Debito          decimal.Decimal `json:"debito"`
	UltimoDeal      *time.Time      `json:"ultimoDeal"`
	ReferralID      *string         `json:"referralId"`
	Referral        *CustomerRef    `json:"referral"`
	ReferredByCount int64           `json:"referredByCount"`
	Attivo          bool            `json:"attivo"`
	IsReferral      bool            `json:"isReferral"`
	ReferralColor   *string         `json:"referralColor"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
