package dto

import "github.com/shopspring/decimal"

// StockMismatch is a (product, warehouse) pair whose stock level differs
// from the signed sum of its movements.
type StockMismatch struct {
	ProductID   string `json:"productId"`
	WarehouseID string `json:"warehouseId"`
	Level       int    `json:"level"`
	LedgerSum   int    `json:"ledgerSum"`
}

// CashMismatch is a register whose current balance differs from
// initialBalance plus the signed sum of its movements.
type CashMismatch struct {
	CashRegisterID string          `json:"cashRegisterId"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	Expected       decimal.Decimal `json:"expected"`
}

type ReconcileResponse struct {
	Consistent      bool            `json:"consistent"`
	StockMismatches []StockMismatch `json:"stockMismatches"`
	CashMismatches  []CashMismatch  `json:"cashMismatches"`
}
