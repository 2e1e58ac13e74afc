package domain

import "github.com/shopspring/decimal"

// QuoteSet maps a normalized symbol to its latest known price. The set is
// last-write-wins per symbol and is always replaced wholesale on a valid
// fetch so stale and fresh prices never mix across symbols.
type QuoteSet map[string]decimal.Decimal

// Lookup returns the price for a symbol, if one is known.
func (q QuoteSet) Lookup(symbol string) (decimal.Decimal, bool) {
	price, ok := q[NormalizeSymbol(symbol)]
	return price, ok
}

// Clone returns an independent copy so a reconciliation cycle never reads a
// set another goroutine may mutate.
func (q QuoteSet) Clone() QuoteSet {
	out := make(QuoteSet, len(q))
	for symbol, price := range q {
		out[symbol] = price
	}
	return out
}
