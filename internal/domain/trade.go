package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CommunityOwnerID is the reserved owner scope for the shared community book.
// Community trades go through the same ledger and valuation path as personal
// ones; only the owner id differs.
const CommunityOwnerID = "community"

type TradeState string

const (
	TradeOpen         TradeState = "open"
	TradeClosedProfit TradeState = "closed_profit"
	TradeClosedLoss   TradeState = "closed_loss"
)

// Trade is one position in an owner's book. Whether a trade is open or
// closed, and how a closed trade classifies, derives entirely from
// ClosedPrice; there is no separately stored status to fall out of sync.
type Trade struct {
	ID          string           `json:"id"`
	OwnerID     string           `json:"ownerId"`
	Symbol      string           `json:"symbol"`
	Quantity    decimal.Decimal  `json:"quantity"`
	EntryPrice  decimal.Decimal  `json:"entryPrice"`
	StopLoss    *decimal.Decimal `json:"stopLoss,omitempty"`
	TakeProfit  *decimal.Decimal `json:"takeProfit,omitempty"`
	ClosedPrice *decimal.Decimal `json:"closedPrice,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	ClosedAt    *time.Time       `json:"closedAt,omitempty"`
	RawPayload  []byte           `json:"-"`
}

// State classifies the trade. A close at exactly the entry price counts as
// profit: profit requires closedPrice >= entryPrice.
func (t Trade) State() TradeState {
	if t.ClosedPrice == nil {
		return TradeOpen
	}
	if t.ClosedPrice.GreaterThanOrEqual(t.EntryPrice) {
		return TradeClosedProfit
	}
	return TradeClosedLoss
}

// Valid reports whether the trade carries usable numbers. Invalid trades are
// excluded from aggregates and flagged per trade, never a crash.
func (t Trade) Valid() bool {
	return t.Quantity.IsPositive() && t.EntryPrice.IsPositive()
}

// Validate returns the reason a trade cannot enter the ledger.
func (t Trade) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return errors.New("symbol required")
	}
	if !t.Quantity.IsPositive() {
		return errors.New("quantity must be positive")
	}
	if !t.EntryPrice.IsPositive() {
		return errors.New("entry price must be positive")
	}
	if t.StopLoss != nil && !t.StopLoss.IsPositive() {
		return errors.New("stop loss must be positive")
	}
	if t.TakeProfit != nil && !t.TakeProfit.IsPositive() {
		return errors.New("take profit must be positive")
	}
	return nil
}

// NormalizeSymbol uppercases and trims an instrument identifier.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
