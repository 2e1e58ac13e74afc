// Package valuation derives all displayed financial metrics from a trade
// set, a quote set, and a capital baseline. Compute is pure: no I/O, no
// clock, no hidden state, so identical inputs always yield identical
// snapshots regardless of trade ordering.
package valuation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/avivreu7/medabrimbis/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Compute values one owner scope against the latest known prices.
//
// Closed trades contribute (closedPrice - entryPrice) * quantity to realized
// PnL, bucketed by the trade's derived state so a close at entry counts as
// profit. Open trades contribute (quote - entryPrice) * quantity when a quote
// exists; a missing quote contributes zero and flags the line PriceMissing.
// Trades with a non-positive quantity or entry price are excluded from every
// aggregate and flagged Invalid.
func Compute(ownerID string, trades []domain.Trade, quotes domain.QuoteSet, baseline decimal.Decimal) domain.ValuationSnapshot {
	snap := domain.ValuationSnapshot{
		OwnerID:  ownerID,
		Baseline: baseline,
		Trades:   make([]domain.TradeValuation, 0, len(trades)),
	}

	rrSum := decimal.Zero

	for _, trade := range trades {
		line := domain.TradeValuation{
			TradeID:     trade.ID,
			Symbol:      trade.Symbol,
			State:       trade.State(),
			Quantity:    trade.Quantity,
			EntryPrice:  trade.EntryPrice,
			ClosedPrice: trade.ClosedPrice,
		}

		if !trade.Valid() {
			line.Invalid = true
			snap.Trades = append(snap.Trades, line)
			continue
		}

		switch line.State {
		case domain.TradeOpen:
			snap.OpenCount++
			quote, ok := quotes.Lookup(trade.Symbol)
			if !ok {
				line.PriceMissing = true
				break
			}
			price := quote
			line.CurrentPrice = &price
			line.PnL = quote.Sub(trade.EntryPrice).Mul(trade.Quantity)
			snap.UnrealizedPnl = snap.UnrealizedPnl.Add(line.PnL)

		case domain.TradeClosedProfit:
			snap.ClosedProfitCount++
			line.PnL = trade.ClosedPrice.Sub(trade.EntryPrice).Mul(trade.Quantity)
			snap.RealizedProfit = snap.RealizedProfit.Add(line.PnL)

		case domain.TradeClosedLoss:
			snap.ClosedLossCount++
			line.PnL = trade.ClosedPrice.Sub(trade.EntryPrice).Mul(trade.Quantity)
			snap.RealizedLoss = snap.RealizedLoss.Add(line.PnL)
		}

		if ratio, ok := rewardRiskRatio(trade); ok {
			rrSum = rrSum.Add(ratio)
			snap.RiskRewardSamples++
		}

		snap.Trades = append(snap.Trades, line)
	}

	snap.CurrentEquity = baseline.
		Add(snap.RealizedProfit).
		Add(snap.RealizedLoss).
		Add(snap.UnrealizedPnl)

	if !baseline.IsZero() {
		snap.PercentChange = snap.CurrentEquity.Sub(baseline).Div(baseline).Mul(hundred)
	}

	if closed := snap.ClosedProfitCount + snap.ClosedLossCount; closed > 0 {
		snap.WinRate = decimal.NewFromInt(int64(snap.ClosedProfitCount)).
			Div(decimal.NewFromInt(int64(closed))).
			Mul(hundred)
	}

	if snap.RiskRewardSamples > 0 {
		snap.AverageRiskReward = rrSum.Div(decimal.NewFromInt(int64(snap.RiskRewardSamples)))
	}

	// ULIDs are time-ordered, so this doubles as a stable display order.
	sort.Slice(snap.Trades, func(i, j int) bool {
		return snap.Trades[i].TradeID < snap.Trades[j].TradeID
	})

	return snap
}

// rewardRiskRatio qualifies a trade for the average risk/reward metric: it
// needs both a stop and a realized exit, and a nonzero risk distance. Trades
// failing the qualification are excluded, not treated as zero.
func rewardRiskRatio(trade domain.Trade) (decimal.Decimal, bool) {
	if trade.StopLoss == nil || trade.ClosedPrice == nil {
		return decimal.Zero, false
	}
	risk := trade.EntryPrice.Sub(*trade.StopLoss).Abs()
	if risk.IsZero() {
		return decimal.Zero, false
	}
	reward := trade.ClosedPrice.Sub(trade.EntryPrice).Abs()
	return reward.Div(risk), true
}
