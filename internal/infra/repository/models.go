package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/avivreu7/medabrimbis/internal/domain"
)

type TradeModel struct {
	ID          string           `gorm:"column:id;primaryKey"`
	OwnerID     string           `gorm:"column:owner_id;index;not null"`
	Symbol      string           `gorm:"column:symbol;not null"`
	Quantity    decimal.Decimal  `gorm:"column:quantity;type:decimal(24,8);not null"`
	EntryPrice  decimal.Decimal  `gorm:"column:entry_price;type:decimal(24,8);not null"`
	StopLoss    *decimal.Decimal `gorm:"column:stop_loss;type:decimal(24,8)"`
	TakeProfit  *decimal.Decimal `gorm:"column:take_profit;type:decimal(24,8)"`
	ClosedPrice *decimal.Decimal `gorm:"column:closed_price;type:decimal(24,8)"`
	ClosedAt    *time.Time       `gorm:"column:closed_at"`
	RawPayload  datatypes.JSON   `gorm:"column:raw_payload"`
	CreatedAt   time.Time        `gorm:"column:created_at"`
	UpdatedAt   time.Time        `gorm:"column:updated_at"`
}

func (TradeModel) TableName() string {
	return "portfolio_trades"
}

func toTradeModel(trade domain.Trade) TradeModel {
	return TradeModel{
		ID:          trade.ID,
		OwnerID:     trade.OwnerID,
		Symbol:      trade.Symbol,
		Quantity:    trade.Quantity,
		EntryPrice:  trade.EntryPrice,
		StopLoss:    copyDecimal(trade.StopLoss),
		TakeProfit:  copyDecimal(trade.TakeProfit),
		ClosedPrice: copyDecimal(trade.ClosedPrice),
		ClosedAt:    copyTime(trade.ClosedAt),
		RawPayload:  jsonOrEmpty(trade.RawPayload),
		CreatedAt:   trade.CreatedAt,
	}
}

func (m TradeModel) toDomain() domain.Trade {
	return domain.Trade{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Symbol:      m.Symbol,
		Quantity:    m.Quantity,
		EntryPrice:  m.EntryPrice,
		StopLoss:    copyDecimal(m.StopLoss),
		TakeProfit:  copyDecimal(m.TakeProfit),
		ClosedPrice: copyDecimal(m.ClosedPrice),
		ClosedAt:    copyTime(m.ClosedAt),
		RawPayload:  copyJSON(m.RawPayload),
		CreatedAt:   m.CreatedAt,
	}
}

type QuoteModel struct {
	Symbol    string          `gorm:"column:symbol;primaryKey"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(24,8);not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (QuoteModel) TableName() string {
	return "portfolio_quotes"
}

type BaselineModel struct {
	OwnerID        string          `gorm:"column:owner_id;primaryKey"`
	InitialBalance decimal.Decimal `gorm:"column:initial_balance;type:decimal(24,8);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (BaselineModel) TableName() string {
	return "portfolio_baselines"
}

func copyDecimal(value *decimal.Decimal) *decimal.Decimal {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}

func copyTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}

func jsonOrEmpty(data []byte) datatypes.JSON {
	if len(data) == 0 {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(append([]byte(nil), data...))
}

func copyJSON(data datatypes.JSON) []byte {
	if len(data) == 0 {
		return nil
	}
	cpy := make([]byte, len(data))
	copy(cpy, data)
	return cpy
}
