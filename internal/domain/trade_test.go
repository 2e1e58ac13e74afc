package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func TestTradeState(t *testing.T) {
	cases := []struct {
		name   string
		closed *decimal.Decimal
		want   TradeState
	}{
		{"open when no closed price", nil, TradeOpen},
		{"profit when closed above entry", decPtr("120"), TradeClosedProfit},
		{"profit when closed at entry", decPtr("100"), TradeClosedProfit},
		{"loss when closed below entry", decPtr("99.99"), TradeClosedLoss},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trade := Trade{
				Quantity:    dec("10"),
				EntryPrice:  dec("100"),
				ClosedPrice: tc.closed,
			}
			if got := trade.State(); got != tc.want {
				t.Fatalf("expected state %s, got %s", tc.want, got)
			}
		})
	}
}

func TestTradeValidate(t *testing.T) {
	valid := Trade{Symbol: "AAPL", Quantity: dec("10"), EntryPrice: dec("100")}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name  string
		trade Trade
	}{
		{"missing symbol", Trade{Quantity: dec("10"), EntryPrice: dec("100")}},
		{"zero quantity", Trade{Symbol: "AAPL", Quantity: dec("0"), EntryPrice: dec("100")}},
		{"negative entry", Trade{Symbol: "AAPL", Quantity: dec("10"), EntryPrice: dec("-1")}},
		{"zero stop", Trade{Symbol: "AAPL", Quantity: dec("10"), EntryPrice: dec("100"), StopLoss: decPtr("0")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.trade.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNormalizeSymbol(t *testing.T) {
	if got := NormalizeSymbol("  aapl "); got != "AAPL" {
		t.Fatalf("expected AAPL, got %q", got)
	}
}

func TestQuoteSetLookup(t *testing.T) {
	quotes := QuoteSet{"AAPL": dec("180.5")}

	price, ok := quotes.Lookup("aapl")
	if !ok {
		t.Fatal("expected lookup to find normalized symbol")
	}
	if !price.Equal(dec("180.5")) {
		t.Fatalf("unexpected price: %s", price)
	}

	if _, ok := quotes.Lookup("TSLA"); ok {
		t.Fatal("expected unknown symbol to miss")
	}
}

func TestChangeEventMatches(t *testing.T) {
	quoteEvent := ChangeEvent{Kind: ChangeQuotes}
	if !quoteEvent.Matches("anyone") {
		t.Fatal("quote changes should match every owner scope")
	}

	tradeEvent := ChangeEvent{Kind: ChangeTrades, OwnerID: "user-1"}
	if !tradeEvent.Matches("user-2") {
		t.Fatal("unexpected owner should not match")
	}
}
