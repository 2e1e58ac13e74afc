// Package notify is the in-process implementation of the change-event
// contract: services publish trade/quote/baseline mutations here and every
// reconciler holds its own subscription.
package notify

import (
	"sync"

	"github.com/avivreu7/medabrimbis/internal/domain"
)

const subscriberBuffer = 32

type Bus struct {
	mu     sync.Mutex
	subs   map[int]*subscription
	nextID int
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscription)}
}

// Publish delivers the event to every live subscriber without blocking. When
// a subscriber's buffer is full the event is discarded and the subscription
// is flagged as overflowed; the subscriber then treats every source as
// changed on its next pass, so a discarded event still ends up reflected in
// a recomputation.
func (b *Bus) Publish(event domain.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			sub.overflowed = true
		}
	}
}

func (b *Bus) Subscribe() domain.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{
		bus: b,
		id:  b.nextID,
		ch:  make(chan domain.ChangeEvent, subscriberBuffer),
	}
	b.nextID++

	if b.closed {
		close(sub.ch)
		sub.done = true
		return sub
	}

	b.subs[sub.id] = sub
	return sub
}

// Close drops and closes every subscription. Publish becomes a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		sub.done = true
		close(sub.ch)
		delete(b.subs, id)
	}
}

type subscription struct {
	bus        *Bus
	id         int
	ch         chan domain.ChangeEvent
	done       bool
	overflowed bool
}

func (s *subscription) Events() <-chan domain.ChangeEvent {
	return s.ch
}

// Overflowed reports whether any event was discarded since the last call,
// and clears the flag.
func (s *subscription) Overflowed() bool {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	was := s.overflowed
	s.overflowed = false
	return was
}

func (s *subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if s.done {
		return
	}
	s.done = true
	delete(s.bus.subs, s.id)
	close(s.ch)
}
