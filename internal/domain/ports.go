package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrTradeNotFound = errors.New("trade not found")

// TradeRepository persists trade records per owner scope.
type TradeRepository interface {
	Insert(ctx context.Context, trade Trade) error
	Close(ctx context.Context, ownerID, tradeID string, closedPrice decimal.Decimal, closedAt time.Time) (Trade, error)
	Delete(ctx context.Context, ownerID, tradeID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]Trade, error)
}

// QuoteRepository persists the latest price per symbol. ReplaceAll swaps the
// entire set atomically so readers never observe a partial merge.
type QuoteRepository interface {
	ReplaceAll(ctx context.Context, quotes QuoteSet) error
	List(ctx context.Context) (QuoteSet, error)
}

// BaselineRepository persists each owner's initial capital. An owner with no
// stored baseline reads as zero.
type BaselineRepository interface {
	Get(ctx context.Context, ownerID string) (decimal.Decimal, error)
	Set(ctx context.Context, ownerID string, amount decimal.Decimal) error
}

// QuoteFeed fetches the latest market prices from an external source.
type QuoteFeed interface {
	FetchQuotes(ctx context.Context) (QuoteSet, error)
}

// Subscription is a live change-event stream. Events() is closed after
// Unsubscribe returns; Unsubscribe is safe to call more than once.
//
// Delivery is lossy only in a recoverable way: when the buffer overflows the
// event is discarded and Overflowed reports true until read. A subscriber
// seeing true must treat every source as changed, so no mutation goes
// unreflected.
type Subscription interface {
	Events() <-chan ChangeEvent
	Overflowed() bool
	Unsubscribe()
}

// Notifier fans change events out to any number of subscribers.
type Notifier interface {
	Publish(event ChangeEvent)
	Subscribe() Subscription
}
