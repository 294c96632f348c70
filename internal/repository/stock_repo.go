package repository

import (
	"context"
	"errors"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockMovementFilter defines filters for listing stock movements.
type StockMovementFilter struct {
	ProductID   *uuid.UUID
	WarehouseID *uuid.UUID
	Limit       int
}

// StockLevelFilter narrows ListLevels.
type StockLevelFilter struct {
	ProductID   *uuid.UUID
	WarehouseID *uuid.UUID
}

// StockLedgerSum is the signed sum of all movements of one pair.
type StockLedgerSum struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Total       int
}

type StockRepository interface {
	// Used inside transactions; callers pass the tx instance
	CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error
	// ApplyDeltaTx atomically adds delta to the (product, warehouse) level,
	// creating the row on first use, and returns the post-update row.
	ApplyDeltaTx(tx *gorm.DB, productID, warehouseID uuid.UUID, delta int) (*model.StockLevel, error)

	ListMovements(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, error)
	ListLevels(ctx context.Context, filter StockLevelFilter) ([]model.StockLevel, error)
	LedgerSums(ctx context.Context) ([]StockLedgerSum, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Omit(clause.Associations).Create(m).Error
}

// errLevelRace is returned when the level row keeps appearing and
// disappearing under us, which only happens if something deletes levels.
var errLevelRace = errors.New("stock level upsert did not converge")

func (r *stockRepo) ApplyDeltaTx(tx *gorm.DB, productID, warehouseID uuid.UUID, delta int) (*model.StockLevel, error) {
	for attempt := 0; attempt < 2; attempt++ {
		// Increment first: the database serializes concurrent bumps of the
		// same row, so no read-modify-write window exists.
		res := tx.Model(&model.StockLevel{}).
			Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
			Update("quantity", gorm.Expr("quantity + ?", delta))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			level := &model.StockLevel{ProductID: productID, WarehouseID: warehouseID, Quantity: delta}
			res = tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(level)
			if res.Error != nil {
				return nil, res.Error
			}
			if res.RowsAffected == 0 {
				// a concurrent transaction created the row first; bump it instead
				continue
			}
		}

		var level model.StockLevel
		err := tx.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).First(&level).Error
		if err != nil {
			return nil, err
		}
		return &level, nil
	}
	return nil, errLevelRace
}

func (r *stockRepo) ListMovements(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Preload("Product").
		Preload("Warehouse")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filter.WarehouseID)
	}

	var movements []model.StockMovement
	err := q.Order("date DESC").Order("created_at DESC").Limit(filter.Limit).Find(&movements).Error
	return movements, err
}

func (r *stockRepo) ListLevels(ctx context.Context, filter StockLevelFilter) ([]model.StockLevel, error) {
	q := r.db.WithContext(ctx).Model(&model.StockLevel{}).
		Preload("Product").
		Preload("Warehouse")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filter.WarehouseID)
	}

	var levels []model.StockLevel
	err := q.Order("created_at ASC").Find(&levels).Error
	return levels, err
}

func (r *stockRepo) LedgerSums(ctx context.Context) ([]StockLedgerSum, error) {
	var sums []StockLedgerSum
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select("product_id, warehouse_id, SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END) AS total", model.MovementIn).
		Group("product_id, warehouse_id").
		Scan(&sums).Error
	return sums, err
}

func (r *stockRepo) DB() *gorm.DB { return r.db }
