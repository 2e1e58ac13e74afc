package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/avivreu7/medabrimbis/internal/domain"
)

// ReconcilerManager hands out at most one live reconciler per owner scope.
// Scopes are fully isolated: each reconciler caches its own trade set, quote
// copy, and baseline.
type ReconcilerManager struct {
	trades    domain.TradeRepository
	quotes    domain.QuoteRepository
	baselines domain.BaselineRepository
	notifier  domain.Notifier
	logger    zerolog.Logger

	mu     sync.Mutex
	recs   map[string]*Reconciler
	closed bool
}

func NewReconcilerManager(trades domain.TradeRepository, quotes domain.QuoteRepository, baselines domain.BaselineRepository, notifier domain.Notifier, logger zerolog.Logger) (*ReconcilerManager, error) {
	if trades == nil || quotes == nil || baselines == nil {
		return nil, errors.New("trade, quote and baseline repositories required")
	}
	if notifier == nil {
		return nil, errors.New("notifier required")
	}

	return &ReconcilerManager{
		trades:    trades,
		quotes:    quotes,
		baselines: baselines,
		notifier:  notifier,
		logger:    logger,
		recs:      make(map[string]*Reconciler),
	}, nil
}

// Get returns the live reconciler for the owner scope, starting one on first
// use.
func (m *ReconcilerManager) Get(ctx context.Context, ownerID string) (*Reconciler, error) {
	if ownerID == "" {
		return nil, errors.New("owner id required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrReconcilerClosed
	}
	if rec, ok := m.recs[ownerID]; ok {
		return rec, nil
	}

	rec, err := NewReconciler(ownerID, m.trades, m.quotes, m.baselines, m.notifier, m.logger)
	if err != nil {
		return nil, err
	}
	if err := rec.Start(ctx); err != nil {
		return nil, err
	}

	m.recs[ownerID] = rec
	return rec, nil
}

// Close tears down every reconciler.
func (m *ReconcilerManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	for ownerID, rec := range m.recs {
		rec.Close()
		delete(m.recs, ownerID)
	}
}
