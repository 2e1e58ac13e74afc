package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormBaselineRepository struct {
	db *gorm.DB
}

func NewGormBaselineRepository(db *gorm.DB) (*GormBaselineRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormBaselineRepository{db: db}, nil
}

// Get returns zero for an owner that never set a baseline; percent change
// against a zero baseline is defined as zero downstream.
func (r *GormBaselineRepository) Get(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	var model BaselineModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return model.InitialBalance, nil
}

func (r *GormBaselineRepository) Set(ctx context.Context, ownerID string, amount decimal.Decimal) error {
	model := BaselineModel{
		OwnerID:        ownerID,
		InitialBalance: amount,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"initial_balance": amount,
				"updated_at":      gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&model).Error
}
