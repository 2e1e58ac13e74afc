package notify

import (
	"testing"
	"time"

	"github.com/avivreu7/medabrimbis/internal/domain"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	first := bus.Subscribe()
	second := bus.Subscribe()

	event := domain.ChangeEvent{Kind: domain.ChangeTrades, OwnerID: "owner-1", At: time.Now()}
	bus.Publish(event)

	for _, sub := range []domain.Subscription{first, second} {
		select {
		case got := <-sub.Events():
			if got.Kind != domain.ChangeTrades || got.OwnerID != "owner-1" {
				t.Fatalf("unexpected event: %+v", got)
			}
		default:
			t.Fatal("expected event in subscriber buffer")
		}
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub := bus.Subscribe()
	sub.Unsubscribe()

	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected channel closed after unsubscribe")
	}

	// Idempotent, and publishing afterwards must not panic.
	sub.Unsubscribe()
	bus.Publish(domain.ChangeEvent{Kind: domain.ChangeQuotes})
}

func TestBusTradeEventSurvivesQuotePressure(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub := bus.Subscribe()

	// One trade mutation followed by a flood of quote syncs against an
	// undrained subscriber. The queued trade event must not be evicted, and
	// the discarded overflow must be flagged so the subscriber knows to treat
	// every source as changed.
	bus.Publish(domain.ChangeEvent{Kind: domain.ChangeTrades, OwnerID: "owner-1"})
	for i := 0; i < subscriberBuffer; i++ {
		bus.Publish(domain.ChangeEvent{Kind: domain.ChangeQuotes})
	}

	sawTrades := false
drain:
	for {
		select {
		case event := <-sub.Events():
			if event.Kind == domain.ChangeTrades && event.OwnerID == "owner-1" {
				sawTrades = true
			}
		default:
			break drain
		}
	}

	if !sawTrades {
		t.Fatal("trades event was lost under quote-event pressure")
	}
	if !sub.Overflowed() {
		t.Fatal("expected the discarded overflow flagged on the subscription")
	}
}

func TestBusOverflowFlagSemantics(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub := bus.Subscribe()
	if sub.Overflowed() {
		t.Fatal("fresh subscription must not report overflow")
	}

	for i := 0; i < subscriberBuffer; i++ {
		bus.Publish(domain.ChangeEvent{Kind: domain.ChangeQuotes})
	}
	if sub.Overflowed() {
		t.Fatal("a full buffer alone is not an overflow")
	}

	bus.Publish(domain.ChangeEvent{Kind: domain.ChangeBaseline, OwnerID: "owner-1"})
	if !sub.Overflowed() {
		t.Fatal("expected overflow after publishing into a full buffer")
	}
	if sub.Overflowed() {
		t.Fatal("reading the flag must clear it")
	}
}

func TestBusCloseStopsDelivery(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()

	bus.Close()
	bus.Publish(domain.ChangeEvent{Kind: domain.ChangeTrades})

	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected channel closed after bus close")
	}

	// Subscribing after close yields an already-closed subscription.
	late := bus.Subscribe()
	if _, ok := <-late.Events(); ok {
		t.Fatal("expected late subscription to be closed")
	}
}
