package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avivreu7/medabrimbis/internal/domain"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

type memTradeRepo struct {
	mu        sync.Mutex
	trades    map[string]domain.Trade
	err       error
	listCalls int
}

func newMemTradeRepo() *memTradeRepo {
	return &memTradeRepo{trades: make(map[string]domain.Trade)}
}

func (m *memTradeRepo) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *memTradeRepo) listCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *memTradeRepo) put(trade domain.Trade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades[trade.ID] = trade
}

func (m *memTradeRepo) Insert(ctx context.Context, trade domain.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.trades[trade.ID] = trade
	return nil
}

func (m *memTradeRepo) Close(ctx context.Context, ownerID, tradeID string, closedPrice decimal.Decimal, closedAt time.Time) (domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Trade{}, m.err
	}
	trade, ok := m.trades[tradeID]
	if !ok || trade.OwnerID != ownerID {
		return domain.Trade{}, domain.ErrTradeNotFound
	}
	trade.ClosedPrice = &closedPrice
	trade.ClosedAt = &closedAt
	m.trades[tradeID] = trade
	return trade, nil
}

func (m *memTradeRepo) Delete(ctx context.Context, ownerID, tradeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	trade, ok := m.trades[tradeID]
	if !ok || trade.OwnerID != ownerID {
		return domain.ErrTradeNotFound
	}
	delete(m.trades, tradeID)
	return nil
}

func (m *memTradeRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Trade
	for _, trade := range m.trades {
		if trade.OwnerID == ownerID {
			out = append(out, trade)
		}
	}
	return out, nil
}

type memQuoteRepo struct {
	mu     sync.Mutex
	quotes domain.QuoteSet
	err    error
}

func newMemQuoteRepo() *memQuoteRepo {
	return &memQuoteRepo{quotes: domain.QuoteSet{}}
}

func (m *memQuoteRepo) set(quotes domain.QuoteSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = quotes
}

func (m *memQuoteRepo) ReplaceAll(ctx context.Context, quotes domain.QuoteSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.quotes = quotes.Clone()
	return nil
}

func (m *memQuoteRepo) List(ctx context.Context) (domain.QuoteSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.quotes.Clone(), nil
}

type memBaselineRepo struct {
	mu      sync.Mutex
	amounts map[string]decimal.Decimal
	err     error
}

func newMemBaselineRepo() *memBaselineRepo {
	return &memBaselineRepo{amounts: make(map[string]decimal.Decimal)}
}

func (m *memBaselineRepo) Get(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return decimal.Zero, m.err
	}
	return m.amounts[ownerID], nil
}

func (m *memBaselineRepo) Set(ctx context.Context, ownerID string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.amounts[ownerID] = amount
	return nil
}

type fakeFeed struct {
	quotes domain.QuoteSet
	err    error
}

func (f *fakeFeed) FetchQuotes(ctx context.Context) (domain.QuoteSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes.Clone(), nil
}
