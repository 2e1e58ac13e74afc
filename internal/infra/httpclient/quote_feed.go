package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/avivreu7/medabrimbis/internal/domain"
)

// QuoteHTTPFeed pulls the latest prices from the market-data job's JSON
// endpoint: an array of {"symbol": ..., "price": ...} records.
type QuoteHTTPFeed struct {
	client  *resty.Client
	baseURL string
}

type rawQuote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

func NewQuoteHTTPFeed(baseURL string, opts ...func(*resty.Client)) (*QuoteHTTPFeed, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	client := resty.New().
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	for _, opt := range opts {
		opt(client)
	}

	return &QuoteHTTPFeed{
		client:  client,
		baseURL: baseURL,
	}, nil
}

func (f *QuoteHTTPFeed) FetchQuotes(ctx context.Context) (domain.QuoteSet, error) {
	var payload []rawQuote

	resp, err := f.client.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}

	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("feed responded with status %d", resp.StatusCode())
	}

	quotes := make(domain.QuoteSet, len(payload))
	for _, item := range payload {
		symbol := domain.NormalizeSymbol(item.Symbol)
		if symbol == "" || !item.Price.IsPositive() {
			// Skip malformed records while allowing the rest to be processed.
			continue
		}
		// Last write wins on duplicate symbols.
		quotes[symbol] = item.Price
	}

	return quotes, nil
}
