package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/avivreu7/medabrimbis/internal/domain"
	"github.com/avivreu7/medabrimbis/internal/valuation"
)

// ErrReconcilerClosed is returned when a reconciler is used after teardown.
var ErrReconcilerClosed = errors.New("reconciler closed")

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

// State is what a reconciler publishes: the last fully computed snapshot plus
// freshness. Consumers never see a partially loaded or partially recomputed
// snapshot; on fetch failure the previous snapshot stays with Stale set.
type State struct {
	Phase     Phase                    `json:"phase"`
	Snapshot  domain.ValuationSnapshot `json:"snapshot"`
	Stale     bool                     `json:"stale,omitempty"`
	Error     string                   `json:"error,omitempty"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// Reconciler keeps one owner scope's valuation current. It holds the latest
// cached copy of each source (trades, quotes, baseline), re-fetches only the
// source a change event names, and recomputes the snapshot from the cached
// trio — so the two feeds are never combined at different points in time
// across more than one round-trip.
//
// All source access happens on a single event-loop goroutine; events that
// arrive while a reconciliation is in progress coalesce into dirty flags and
// are absorbed by the next pass, never dropped and never raced.
type Reconciler struct {
	ownerID   string
	trades    domain.TradeRepository
	quotes    domain.QuoteRepository
	baselines domain.BaselineRepository
	notifier  domain.Notifier
	logger    zerolog.Logger

	cancel context.CancelFunc
	sub    domain.Subscription
	done   chan struct{}

	mu           sync.Mutex
	state        State
	listeners    map[int]chan State
	nextListener int
	started      bool
	closed       bool

	// Loop-local cached source copies. Written during Start and then only by
	// the event-loop goroutine.
	cachedTrades   []domain.Trade
	cachedQuotes   domain.QuoteSet
	cachedBaseline decimal.Decimal
}

func NewReconciler(ownerID string, trades domain.TradeRepository, quotes domain.QuoteRepository, baselines domain.BaselineRepository, notifier domain.Notifier, logger zerolog.Logger) (*Reconciler, error) {
	if ownerID == "" {
		return nil, errors.New("owner id required")
	}
	if trades == nil || quotes == nil || baselines == nil {
		return nil, errors.New("trade, quote and baseline repositories required")
	}
	if notifier == nil {
		return nil, errors.New("notifier required")
	}

	return &Reconciler{
		ownerID:   ownerID,
		trades:    trades,
		quotes:    quotes,
		baselines: baselines,
		notifier:  notifier,
		logger:    logger.With().Str("owner", ownerID).Logger(),
		done:      make(chan struct{}),
		state:     State{Phase: PhaseIdle},
		listeners: make(map[int]chan State),
	}, nil
}

// Start performs the initial full load of all three sources, publishes the
// first snapshot, and begins consuming change events. No snapshot is emitted
// from partially loaded state: if any initial fetch fails, Start returns the
// error and the reconciler stays down.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrReconcilerClosed
	}
	if r.started {
		r.mu.Unlock()
		return errors.New("reconciler already started")
	}
	r.started = true
	r.state.Phase = PhaseLoading
	r.mu.Unlock()

	// Subscribe before the initial load so a mutation racing the load still
	// triggers a reconciliation afterwards.
	r.sub = r.notifier.Subscribe()

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel

	if err := r.loadAll(ctx); err != nil {
		r.sub.Unsubscribe()
		cancel()
		close(r.done)
		return err
	}

	r.publish(r.freshState())

	go r.loop(loopCtx)
	return nil
}

func (r *Reconciler) loadAll(ctx context.Context) error {
	trades, err := r.trades.ListByOwner(ctx, r.ownerID)
	if err != nil {
		return err
	}
	quotes, err := r.quotes.List(ctx)
	if err != nil {
		return err
	}
	baseline, err := r.baselines.Get(ctx, r.ownerID)
	if err != nil {
		return err
	}

	r.cachedTrades = trades
	r.cachedQuotes = quotes
	r.cachedBaseline = baseline
	return nil
}

func (r *Reconciler) loop(ctx context.Context) {
	defer close(r.done)

	dirty := make(map[domain.ChangeKind]bool)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-r.sub.Events():
			if !ok {
				return
			}
			if event.Matches(r.ownerID) {
				dirty[event.Kind] = true
			}

			// Absorb the rest of a burst so back-to-back events produce one
			// recomputation reflecting all of them.
		drain:
			for {
				select {
				case more, open := <-r.sub.Events():
					if !open {
						break drain
					}
					if more.Matches(r.ownerID) {
						dirty[more.Kind] = true
					}
				default:
					break drain
				}
			}

			// An overflowed subscription may have discarded events of any
			// kind; refetch everything.
			if r.sub.Overflowed() {
				dirty[domain.ChangeTrades] = true
				dirty[domain.ChangeQuotes] = true
				dirty[domain.ChangeBaseline] = true
			}

			if len(dirty) == 0 {
				continue
			}
			r.reconcile(ctx, dirty)
		}
	}
}

// reconcile re-fetches each dirty source and recomputes. On a fetch failure
// the source stays dirty, the last good snapshot is kept, and the error is
// surfaced on the published state; the next event retries.
func (r *Reconciler) reconcile(ctx context.Context, dirty map[domain.ChangeKind]bool) {
	if dirty[domain.ChangeTrades] {
		trades, err := r.trades.ListByOwner(ctx, r.ownerID)
		if err != nil {
			r.degrade("refetch trades", err)
			return
		}
		r.cachedTrades = trades
		delete(dirty, domain.ChangeTrades)
	}

	if dirty[domain.ChangeQuotes] {
		quotes, err := r.quotes.List(ctx)
		if err != nil {
			r.degrade("refetch quotes", err)
			return
		}
		r.cachedQuotes = quotes
		delete(dirty, domain.ChangeQuotes)
	}

	if dirty[domain.ChangeBaseline] {
		baseline, err := r.baselines.Get(ctx, r.ownerID)
		if err != nil {
			r.degrade("refetch baseline", err)
			return
		}
		r.cachedBaseline = baseline
		delete(dirty, domain.ChangeBaseline)
	}

	r.publish(r.freshState())
}

func (r *Reconciler) freshState() State {
	return State{
		Phase:     PhaseReady,
		Snapshot:  valuation.Compute(r.ownerID, r.cachedTrades, r.cachedQuotes.Clone(), r.cachedBaseline),
		UpdatedAt: time.Now().UTC(),
	}
}

func (r *Reconciler) degrade(op string, err error) {
	r.logger.Error().Err(err).Str("op", op).Msg("reconciliation fetch failed, keeping last snapshot")

	r.mu.Lock()
	state := r.state
	r.mu.Unlock()

	state.Stale = true
	state.Error = err.Error()
	state.UpdatedAt = time.Now().UTC()
	r.publish(state)
}

func (r *Reconciler) publish(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.state = state

	for _, ch := range r.listeners {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

// Snapshot returns the last published state without blocking.
func (r *Reconciler) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Listen registers a snapshot listener. The channel is seeded with the
// current state and receives every subsequent publication; slow consumers
// miss intermediate states but always converge on the latest one. The
// returned stop function unregisters the listener and closes the channel.
func (r *Reconciler) Listen() (<-chan State, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan State, 8)
	if r.closed {
		close(ch)
		return ch, func() {}
	}

	id := r.nextListener
	r.nextListener++
	r.listeners[id] = ch
	ch <- r.state

	var once sync.Once
	stop := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if _, ok := r.listeners[id]; ok {
				delete(r.listeners, id)
				close(ch)
			}
		})
	}
	return ch, stop
}

// Close tears the reconciler down: it unsubscribes from the change stream,
// stops the event loop, and closes all listener channels. No state is
// published after Close returns.
func (r *Reconciler) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	started := r.started
	r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	if r.sub != nil {
		r.sub.Unsubscribe()
	}
	if started {
		<-r.done
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ch := range r.listeners {
		delete(r.listeners, id)
		close(ch)
	}
}
