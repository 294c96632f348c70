package repository

import (
	"context"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	// Create inserts c with its preassigned id. A taken id surfaces as a
	// duplicate key error (see IsDuplicateKey).
	Create(ctx context.Context, c *model.Customer) error
	// FindByID preloads the referral (id and name only).
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]model.Customer, error)
	Update(ctx context.Context, c *model.Customer) error
	// Delete removes the customer and detaches everyone it referred.
	Delete(ctx context.Context, id string) error
	// CountReferred returns, per referral id, how many customers point at it.
	CountReferred(ctx context.Context, ids []string) (map[string]int64, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func withReferral(db *gorm.DB) *gorm.DB {
	return db.Preload("Referral", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") })
}

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	if err := withReferral(r.db.WithContext(ctx)).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *customerRepo) List(ctx context.Context) ([]model.Customer, error) {
	var list []model.Customer
	err := withReferral(r.db.WithContext(ctx)).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (r *customerRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Customer{}).
			Where("referral_id = ?", id).
			Update("referral_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Customer{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *customerRepo) CountReferred(ctx context.Context, ids []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		ReferralID string
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&model.Customer{}).
		Select("referral_id, COUNT(*) AS total").
		Where("referral_id IN ?", ids).
		Group("referral_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ReferralID] = row.Total
	}
	return counts, nil
}
