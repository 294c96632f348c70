package service

import (
	"context"
	"sort"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// LedgerService recomputes the stock and cash projections from the
// movement ledgers and reports every row that disagrees.
type LedgerService interface {
	Reconcile(ctx context.Context) (*dto.ReconcileResponse, error)
}

type ledgerService struct {
	stock repository.StockRepository
	cash  repository.CashRepository
}

func NewLedgerService(stock repository.StockRepository, cash repository.CashRepository) LedgerService {
	return &ledgerService{stock: stock, cash: cash}
}

type stockPair struct{ product, warehouse uuid.UUID }

func (s *ledgerService) Reconcile(ctx context.Context) (*dto.ReconcileResponse, error) {
	resp := &dto.ReconcileResponse{
		StockMismatches: []dto.StockMismatch{},
		CashMismatches:  []dto.CashMismatch{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mismatches, err := s.reconcileStock(gctx)
		resp.StockMismatches = append(resp.StockMismatches, mismatches...)
		return err
	})
	g.Go(func() error {
		mismatches, err := s.reconcileCash(gctx)
		resp.CashMismatches = append(resp.CashMismatches, mismatches...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.Consistent = len(resp.StockMismatches) == 0 && len(resp.CashMismatches) == 0
	if !resp.Consistent {
		log.Warn().
			Int("stock_mismatches", len(resp.StockMismatches)).
			Int("cash_mismatches", len(resp.CashMismatches)).
			Msg("ledger reconcile found drift")
	}
	return resp, nil
}

func (s *ledgerService) reconcileStock(ctx context.Context) ([]dto.StockMismatch, error) {
	sums, err := s.stock.LedgerSums(ctx)
	if err != nil {
		return nil, err
	}
	levels, err := s.stock.ListLevels(ctx, repository.StockLevelFilter{})
	if err != nil {
		return nil, err
	}

	expected := make(map[stockPair]int, len(sums))
	for _, sum := range sums {
		expected[stockPair{sum.ProductID, sum.WarehouseID}] = sum.Total
	}

	var out []dto.StockMismatch
	for _, l := range levels {
		key := stockPair{l.ProductID, l.WarehouseID}
		want := expected[key]
		delete(expected, key)
		if l.Quantity != want {
			out = append(out, dto.StockMismatch{
				ProductID:   l.ProductID.String(),
				WarehouseID: l.WarehouseID.String(),
				Level:       l.Quantity,
				LedgerSum:   want,
			})
		}
	}
	// movements whose pair has no level row at all
	for key, want := range expected {
		out = append(out, dto.StockMismatch{
			ProductID:   key.product.String(),
			WarehouseID: key.warehouse.String(),
			LedgerSum:   want,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, nil
}

func (s *ledgerService) reconcileCash(ctx context.Context) ([]dto.CashMismatch, error) {
	sums, err := s.cash.LedgerSums(ctx)
	if err != nil {
		return nil, err
	}
	registers, err := s.cash.ListRegisters(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[uuid.UUID]decimal.Decimal, len(sums))
	for _, sum := range sums {
		totals[sum.CashRegisterID] = sum.Total
	}

	var out []dto.CashMismatch
	for _, r := range registers {
		want := r.InitialBalance.Add(totals[r.ID]).Round(2)
		if !r.CurrentBalance.Round(2).Equal(want) {
			out = append(out, dto.CashMismatch{
				CashRegisterID: r.ID.String(),
				CurrentBalance: r.CurrentBalance,
				Expected:       want,
			})
		}
	}
	return out, nil
}
