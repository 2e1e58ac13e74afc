package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/avivreu7/medabrimbis/internal/domain"
	"github.com/avivreu7/medabrimbis/internal/infra/notify"
)

func TestQuoteSyncReplacesCache(t *testing.T) {
	repo := newMemQuoteRepo()
	repo.set(domain.QuoteSet{"OLD": dec("1")})
	bus := notify.NewBus()
	defer bus.Close()
	sub := bus.Subscribe()

	svc, err := NewQuoteService(&fakeFeed{quotes: domain.QuoteSet{"AAPL": dec("180"), "TSLA": dec("250")}}, repo, bus)
	if err != nil {
		t.Fatalf("new quote service: %v", err)
	}

	count, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 quotes synced, got %d", count)
	}

	quotes, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, ok := quotes["OLD"]; ok {
		t.Fatal("sync must replace the whole set, stale symbol survived")
	}
	if price, ok := quotes.Lookup("AAPL"); !ok || !price.Equal(dec("180")) {
		t.Fatalf("expected AAPL at 180, got %s (%v)", price, ok)
	}

	select {
	case event := <-sub.Events():
		if event.Kind != domain.ChangeQuotes {
			t.Fatalf("expected a quotes event, got %+v", event)
		}
	default:
		t.Fatal("expected a quotes change event published")
	}
}

func TestQuoteSyncRejectsEmptyFetch(t *testing.T) {
	repo := newMemQuoteRepo()
	repo.set(domain.QuoteSet{"AAPL": dec("180")})
	bus := notify.NewBus()
	defer bus.Close()
	sub := bus.Subscribe()

	svc, err := NewQuoteService(&fakeFeed{quotes: domain.QuoteSet{}}, repo, bus)
	if err != nil {
		t.Fatalf("new quote service: %v", err)
	}

	if _, err := svc.Sync(context.Background()); !errors.Is(err, ErrNoQuotes) {
		t.Fatalf("expected ErrNoQuotes, got %v", err)
	}

	quotes, err := repo.List(context.Background())
	if err != nil || len(quotes) != 1 {
		t.Fatal("an empty fetch must not wipe the cache")
	}
	select {
	case <-sub.Events():
		t.Fatal("failed sync must not publish a change event")
	default:
	}
}

func TestQuoteSyncPropagatesFeedError(t *testing.T) {
	repo := newMemQuoteRepo()
	bus := notify.NewBus()
	defer bus.Close()

	feedErr := errors.New("upstream 500")
	svc, err := NewQuoteService(&fakeFeed{err: feedErr}, repo, bus)
	if err != nil {
		t.Fatalf("new quote service: %v", err)
	}

	if _, err := svc.Sync(context.Background()); !errors.Is(err, feedErr) {
		t.Fatalf("expected the feed error, got %v", err)
	}
}
