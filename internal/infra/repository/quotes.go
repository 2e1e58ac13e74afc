package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/avivreu7/medabrimbis/internal/domain"
)

type GormQuoteRepository struct {
	db *gorm.DB
}

func NewGormQuoteRepository(db *gorm.DB) (*GormQuoteRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormQuoteRepository{db: db}, nil
}

// ReplaceAll swaps the whole quote set in one transaction. Partial merges of
// old and new quotes are never visible to readers.
func (r *GormQuoteRepository) ReplaceAll(ctx context.Context, quotes domain.QuoteSet) error {
	now := time.Now().UTC()

	models := make([]QuoteModel, 0, len(quotes))
	for symbol, price := range quotes {
		models = append(models, QuoteModel{
			Symbol:    domain.NormalizeSymbol(symbol),
			Price:     price,
			UpdatedAt: now,
		})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&QuoteModel{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.Create(&models).Error
	})
}

func (r *GormQuoteRepository) List(ctx context.Context) (domain.QuoteSet, error) {
	var models []QuoteModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}

	quotes := make(domain.QuoteSet, len(models))
	for _, model := range models {
		quotes[model.Symbol] = model.Price
	}

	return quotes, nil
}
