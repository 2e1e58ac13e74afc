package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/avivreu7/medabrimbis/internal/infra/repository"
)

func ApplyMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&repository.TradeModel{},
		&repository.QuoteModel{},
		&repository.BaselineModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
