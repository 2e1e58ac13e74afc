// Package risk holds the stateless sizing and ratio math used by the risk
// calculator endpoint and by trade-entry validation. Every function returns
// (value, ok); ok=false means "not enough information to size safely", which
// is distinct from a size of zero.
package risk

import "github.com/shopspring/decimal"

type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// riskPerUnit is entry-stop for longs and stop-entry for shorts. A value
// that is not strictly positive means the stop does not protect the entry.
func riskPerUnit(entry, stop decimal.Decimal, direction Direction) (decimal.Decimal, bool) {
	var per decimal.Decimal
	switch direction {
	case Long:
		per = entry.Sub(stop)
	case Short:
		per = stop.Sub(entry)
	default:
		return decimal.Zero, false
	}
	if !per.IsPositive() {
		return decimal.Zero, false
	}
	return per, true
}

// SizePosition returns how many shares/units a trader can take so that a
// stop-out loses exactly riskAmount.
func SizePosition(entry, stop, riskAmount decimal.Decimal, direction Direction) (decimal.Decimal, bool) {
	if !entry.IsPositive() || !stop.IsPositive() || !riskAmount.IsPositive() {
		return decimal.Zero, false
	}
	per, ok := riskPerUnit(entry, stop, direction)
	if !ok {
		return decimal.Zero, false
	}
	return riskAmount.Div(per), true
}

// PositionValue is the capital committed at entry for a given size.
func PositionValue(shares, entry decimal.Decimal) decimal.Decimal {
	return shares.Mul(entry)
}

// RewardRisk returns reward-per-unit divided by risk-per-unit for a planned
// trade, using the same directional sign convention as SizePosition.
func RewardRisk(entry, stop, target decimal.Decimal, direction Direction) (decimal.Decimal, bool) {
	if !entry.IsPositive() || !stop.IsPositive() || !target.IsPositive() {
		return decimal.Zero, false
	}
	per, ok := riskPerUnit(entry, stop, direction)
	if !ok {
		return decimal.Zero, false
	}
	var reward decimal.Decimal
	switch direction {
	case Long:
		reward = target.Sub(entry)
	case Short:
		reward = entry.Sub(target)
	}
	if !reward.IsPositive() {
		return decimal.Zero, false
	}
	return reward.Div(per), true
}

// PortfolioRiskPercent is the share of the portfolio put at risk, in percent.
func PortfolioRiskPercent(riskAmount, portfolioSize decimal.Decimal) (decimal.Decimal, bool) {
	if !riskAmount.IsPositive() || !portfolioSize.IsPositive() {
		return decimal.Zero, false
	}
	return riskAmount.Div(portfolioSize).Mul(decimal.NewFromInt(100)), true
}
