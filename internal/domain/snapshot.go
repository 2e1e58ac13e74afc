package domain

import "github.com/shopspring/decimal"

// TradeValuation is the per-trade line of a snapshot: what the dashboard
// tables render for each open and closed position.
type TradeValuation struct {
	TradeID      string           `json:"tradeId"`
	Symbol       string           `json:"symbol"`
	State        TradeState       `json:"state"`
	Quantity     decimal.Decimal  `json:"quantity"`
	EntryPrice   decimal.Decimal  `json:"entryPrice"`
	CurrentPrice *decimal.Decimal `json:"currentPrice,omitempty"`
	ClosedPrice  *decimal.Decimal `json:"closedPrice,omitempty"`
	PnL          decimal.Decimal  `json:"pnl"`
	PriceMissing bool             `json:"priceMissing,omitempty"`
	Invalid      bool             `json:"invalid,omitempty"`
}

// ValuationSnapshot is the full point-in-time valuation of one owner scope.
// It is recomputed wholesale on every reconciliation and never patched in
// place. realizedProfit is >= 0 and realizedLoss is <= 0 by construction.
type ValuationSnapshot struct {
	OwnerID           string           `json:"ownerId"`
	Baseline          decimal.Decimal  `json:"baseline"`
	RealizedProfit    decimal.Decimal  `json:"realizedProfit"`
	RealizedLoss      decimal.Decimal  `json:"realizedLoss"`
	UnrealizedPnl     decimal.Decimal  `json:"unrealizedPnl"`
	CurrentEquity     decimal.Decimal  `json:"currentEquity"`
	PercentChange     decimal.Decimal  `json:"percentChange"`
	WinRate           decimal.Decimal  `json:"winRate"`
	AverageRiskReward decimal.Decimal  `json:"averageRiskReward"`
	RiskRewardSamples int              `json:"riskRewardSamples"`
	OpenCount         int              `json:"openCount"`
	ClosedProfitCount int              `json:"closedProfitCount"`
	ClosedLossCount   int              `json:"closedLossCount"`
	Trades            []TradeValuation `json:"trades"`
}
