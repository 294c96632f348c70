package repository

import (
	"context"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CashMovementFilter defines filters for listing cash movements.
type CashMovementFilter struct {
	CashRegisterID *uuid.UUID
	Limit          int
}

// CashLedgerSum is the signed sum of all movements of one register.
type CashLedgerSum struct {
	CashRegisterID uuid.UUID
	Total          decimal.Decimal
}

type CashRepository interface {
	CreateRegister(ctx context.Context, r *model.CashRegister) error
	FindRegisterByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	// FindRegisterWithMovements preloads the latest `limit` movements, newest first.
	FindRegisterWithMovements(ctx context.Context, id uuid.UUID, limit int) (*model.CashRegister, error)
	ListRegisters(ctx context.Context) ([]model.CashRegister, error)
	RenameRegister(ctx context.Context, id uuid.UUID, name string) (*model.CashRegister, error)
	DeleteRegister(ctx context.Context, id uuid.UUID) error
	HasMovements(ctx context.Context, id uuid.UUID) (bool, error)

	// Used inside transactions; callers pass the tx instance
	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error
	// ApplyDeltaTx atomically adds delta to current_balance and returns the
	// post-update register. gorm.ErrRecordNotFound if the register is gone.
	ApplyDeltaTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) (*model.CashRegister, error)

	ListMovements(ctx context.Context, filter CashMovementFilter) ([]model.CashMovement, error)
	LedgerSums(ctx context.Context) ([]CashLedgerSum, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type cashRepo struct{ db *gorm.DB }

func NewCashRepository(db *gorm.DB) CashRepository { return &cashRepo{db: db} }

func (r *cashRepo) CreateRegister(ctx context.Context, reg *model.CashRegister) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(reg).Error
}

func (r *cashRepo) FindRegisterByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	if err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *cashRepo) FindRegisterWithMovements(ctx context.Context, id uuid.UUID, limit int) (*model.CashRegister, error) {
	var reg model.CashRegister
	if err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	// Preload cannot limit per parent, so the movements are a second query.
	err := r.db.WithContext(ctx).
		Where("cash_register_id = ?", id).
		Order("date DESC").Order("created_at DESC").
		Limit(limit).
		Find(&reg.CashMovements).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *cashRepo) ListRegisters(ctx context.Context) ([]model.CashRegister, error) {
	var list []model.CashRegister
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *cashRepo) RenameRegister(ctx context.Context, id uuid.UUID, name string) (*model.CashRegister, error) {
	res := r.db.WithContext(ctx).Model(&model.CashRegister{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindRegisterByID(ctx, id)
}

func (r *cashRepo) DeleteRegister(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.CashRegister{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cashRepo) HasMovements(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CashMovement{}).Where("cash_register_id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *cashRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Omit(clause.Associations).Create(m).Error
}

func (r *cashRepo) ApplyDeltaTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) (*model.CashRegister, error) {
	res := tx.Model(&model.CashRegister{}).
		Where("id = ?", id).
		Update("current_balance", gorm.Expr("ROUND(current_balance + ?, 2)", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var reg model.CashRegister
	if err := tx.First(&reg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	// SQLite keeps NUMERIC columns as floats
	reg.CurrentBalance = reg.CurrentBalance.Round(2)
	return &reg, nil
}

func (r *cashRepo) ListMovements(ctx context.Context, filter CashMovementFilter) ([]model.CashMovement, error) {
	q := r.db.WithContext(ctx).Model(&model.CashMovement{}).Preload("CashRegister")
	if filter.CashRegisterID != nil {
		q = q.Where("cash_register_id = ?", *filter.CashRegisterID)
	}

	var movements []model.CashMovement
	err := q.Order("date DESC").Order("created_at DESC").Limit(filter.Limit).Find(&movements).Error
	return movements, err
}

func (r *cashRepo) LedgerSums(ctx context.Context) ([]CashLedgerSum, error) {
	var sums []CashLedgerSum
	err := r.db.WithContext(ctx).Model(&model.CashMovement{}).
		Select("cash_register_id, ROUND(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 2) AS total", model.MovementIn).
		Group("cash_register_id").
		Scan(&sums).Error
	for i := range sums {
		sums[i].Total = sums[i].Total.Round(2)
	}
	return sums, err
}

func (r *cashRepo) DB() *gorm.DB { return r.db }
