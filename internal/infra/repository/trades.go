package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avivreu7/medabrimbis/internal/domain"
)

type GormTradeRepository struct {
	db *gorm.DB
}

func NewGormTradeRepository(db *gorm.DB) (*GormTradeRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormTradeRepository{db: db}, nil
}

func (r *GormTradeRepository) Insert(ctx context.Context, trade domain.Trade) error {
	model := toTradeModel(trade)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *GormTradeRepository) Close(ctx context.Context, ownerID, tradeID string, closedPrice decimal.Decimal, closedAt time.Time) (domain.Trade, error) {
	var closed domain.Trade

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model TradeModel
		err := tx.Where("id = ? AND owner_id = ?", tradeID, ownerID).First(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrTradeNotFound
		}
		if err != nil {
			return err
		}
		if model.ClosedPrice != nil {
			return fmt.Errorf("trade %s already closed", tradeID)
		}

		updates := map[string]interface{}{
			"closed_price": closedPrice,
			"closed_at":    closedAt,
			"updated_at":   time.Now().UTC(),
		}
		if err := tx.Model(&TradeModel{}).Where("id = ?", tradeID).Updates(updates).Error; err != nil {
			return err
		}

		model.ClosedPrice = &closedPrice
		model.ClosedAt = &closedAt
		closed = model.toDomain()
		return nil
	})
	if err != nil {
		return domain.Trade{}, err
	}

	return closed, nil
}

func (r *GormTradeRepository) Delete(ctx context.Context, ownerID, tradeID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", tradeID, ownerID).
		Delete(&TradeModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTradeNotFound
	}
	return nil
}

func (r *GormTradeRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Trade, error) {
	var models []TradeModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	trades := make([]domain.Trade, len(models))
	for i, model := range models {
		trades[i] = model.toDomain()
	}

	return trades, nil
}
