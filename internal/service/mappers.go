package service

import (
	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/model"
)

func mapWarehouse(w model.Warehouse) dto.WarehouseResponse {
	resp := dto.WarehouseResponse{
		ID:        w.ID.String(),
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	for _, l := range w.StockLevels {
		resp.StockLevels = append(resp.StockLevels, mapStockLevel(l))
	}
	return resp
}

func mapProduct(p model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		SKU:         p.SKU,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, l := range p.StockLevels {
		resp.StockLevels = append(resp.StockLevels, mapStockLevel(l))
	}
	return resp
}

// mapStockLevel embeds whichever side was preloaded.
func mapStockLevel(l model.StockLevel) dto.StockLevelResponse {
	resp := dto.StockLevelResponse{
		ID:          l.ID.String(),
		ProductID:   l.ProductID.String(),
		WarehouseID: l.WarehouseID.String(),
		Quantity:    l.Quantity,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Product != nil {
		mp := mapProduct(*l.Product)
		resp.Product = &mp
	}
	if l.Warehouse != nil {
		mw := mapWarehouse(*l.Warehouse)
		resp.Warehouse = &mw
	}
	return resp
}

func mapStockMovement(m model.StockMovement) dto.StockMovementResponse {
	resp := dto.StockMovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		WarehouseID: m.WarehouseID.String(),
		Type:        string(m.Type),
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		Date:        m.Date,
		CreatedAt:   m.CreatedAt,
	}
	if m.Product != nil {
		mp := mapProduct(*m.Product)
		resp.Product = &mp
	}
	if m.Warehouse != nil {
		mw := mapWarehouse(*m.Warehouse)
		resp.Warehouse = &mw
	}
	return resp
}

func mapCashRegister(r model.CashRegister) dto.CashRegisterResponse {
	resp := dto.CashRegisterResponse{
		ID:             r.ID.String(),
		Name:           r.Name,
		InitialBalance: r.InitialBalance,
		CurrentBalance: r.CurrentBalance,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	for _, m := range r.CashMovements {
		resp.CashMovements = append(resp.CashMovements, mapCashMovement(m))
	}
	return resp
}

func mapCashMovement(m model.CashMovement) dto.CashMovementResponse {
	resp := dto.CashMovementResponse{
		ID:             m.ID.String(),
		CashRegisterID: m.CashRegisterID.String(),
		Type:           string(m.Type),
		Amount:         m.Amount,
		Description:    m.Description,
		Date:           m.Date,
		CreatedAt:      m.CreatedAt,
	}
	if m.CashRegister != nil {
		mr := mapCashRegister(*m.CashRegister)
		resp.CashRegister = &mr
	}
	return resp
}

func mapCustomer(c model.Customer, referredBy int64) dto.CustomerResponse {
	resp := dto.CustomerResponse{
		ID:              c.ID,
		Name:            c.Name,
		Spesa:           c.Spesa,
		Debito:          c.Debito,
		UltimoDeal:      c.UltimoDeal,
		ReferralID:      c.ReferralID,
		ReferredByCount: referredBy,
		Attivo:          c.Attivo,
		IsReferral:      c.IsReferral,
		ReferralColor:   c.ReferralColor,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.Referral != nil {
		resp.Referral = &dto.CustomerRef{ID: c.Referral.ID, Name: c.Referral.Name}
	}
	return resp
}
