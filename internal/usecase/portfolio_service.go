package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avivreu7/medabrimbis/internal/domain"
	"github.com/avivreu7/medabrimbis/internal/valuation"
	"github.com/avivreu7/medabrimbis/pkg/id"
)

// PortfolioService owns the trade-ledger and baseline operations for every
// owner scope (personal portfolios and the community book). Each mutation
// publishes a change event so live reconcilers pick it up.
type PortfolioService struct {
	trades    domain.TradeRepository
	quotes    domain.QuoteRepository
	baselines domain.BaselineRepository
	notifier  domain.Notifier
}

func NewPortfolioService(trades domain.TradeRepository, quotes domain.QuoteRepository, baselines domain.BaselineRepository, notifier domain.Notifier) (*PortfolioService, error) {
	if trades == nil {
		return nil, errors.New("trade repository required")
	}
	if quotes == nil {
		return nil, errors.New("quote repository required")
	}
	if baselines == nil {
		return nil, errors.New("baseline repository required")
	}
	if notifier == nil {
		return nil, errors.New("notifier required")
	}
	return &PortfolioService{
		trades:    trades,
		quotes:    quotes,
		baselines: baselines,
		notifier:  notifier,
	}, nil
}

type OpenTradeInput struct {
	Symbol     string
	Quantity   decimal.Decimal
	EntryPrice decimal.Decimal
	StopLoss   *decimal.Decimal
	TakeProfit *decimal.Decimal
	RawPayload []byte
}

func (s *PortfolioService) OpenTrade(ctx context.Context, ownerID string, in OpenTradeInput) (domain.Trade, error) {
	if ownerID == "" {
		return domain.Trade{}, errors.New("owner id required")
	}

	trade := domain.Trade{
		ID:         id.New(),
		OwnerID:    ownerID,
		Symbol:     domain.NormalizeSymbol(in.Symbol),
		Quantity:   in.Quantity,
		EntryPrice: in.EntryPrice,
		StopLoss:   in.StopLoss,
		TakeProfit: in.TakeProfit,
		CreatedAt:  time.Now().UTC(),
		RawPayload: in.RawPayload,
	}

	if err := trade.Validate(); err != nil {
		return domain.Trade{}, err
	}

	if err := s.trades.Insert(ctx, trade); err != nil {
		return domain.Trade{}, err
	}

	s.publishTrades(ownerID)
	return trade, nil
}

func (s *PortfolioService) CloseTrade(ctx context.Context, ownerID, tradeID string, closedPrice decimal.Decimal) (domain.Trade, error) {
	if ownerID == "" {
		return domain.Trade{}, errors.New("owner id required")
	}
	if tradeID == "" {
		return domain.Trade{}, errors.New("trade id required")
	}
	if !closedPrice.IsPositive() {
		return domain.Trade{}, errors.New("closed price must be positive")
	}

	trade, err := s.trades.Close(ctx, ownerID, tradeID, closedPrice, time.Now().UTC())
	if err != nil {
		return domain.Trade{}, err
	}

	s.publishTrades(ownerID)
	return trade, nil
}

func (s *PortfolioService) DeleteTrade(ctx context.Context, ownerID, tradeID string) error {
	if ownerID == "" {
		return errors.New("owner id required")
	}
	if tradeID == "" {
		return errors.New("trade id required")
	}

	if err := s.trades.Delete(ctx, ownerID, tradeID); err != nil {
		return err
	}

	s.publishTrades(ownerID)
	return nil
}

func (s *PortfolioService) ListTrades(ctx context.Context, ownerID string) ([]domain.Trade, error) {
	if ownerID == "" {
		return nil, errors.New("owner id required")
	}
	return s.trades.ListByOwner(ctx, ownerID)
}

// SetBaseline records an owner's starting capital. Only this explicit action
// mutates the baseline; the engine never does.
func (s *PortfolioService) SetBaseline(ctx context.Context, ownerID string, amount decimal.Decimal) error {
	if ownerID == "" {
		return errors.New("owner id required")
	}
	if amount.IsNegative() {
		return errors.New("baseline must not be negative")
	}

	if err := s.baselines.Set(ctx, ownerID, amount); err != nil {
		return err
	}

	s.notifier.Publish(domain.ChangeEvent{
		Kind:    domain.ChangeBaseline,
		OwnerID: ownerID,
		At:      time.Now().UTC(),
	})
	return nil
}

func (s *PortfolioService) Baseline(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	if ownerID == "" {
		return decimal.Zero, errors.New("owner id required")
	}
	return s.baselines.Get(ctx, ownerID)
}

// ComputeSnapshot values the owner scope on demand from freshly fetched
// state. Streaming consumers go through a Reconciler instead.
func (s *PortfolioService) ComputeSnapshot(ctx context.Context, ownerID string) (domain.ValuationSnapshot, error) {
	if ownerID == "" {
		return domain.ValuationSnapshot{}, errors.New("owner id required")
	}

	trades, err := s.trades.ListByOwner(ctx, ownerID)
	if err != nil {
		return domain.ValuationSnapshot{}, err
	}
	quotes, err := s.quotes.List(ctx)
	if err != nil {
		return domain.ValuationSnapshot{}, err
	}
	baseline, err := s.baselines.Get(ctx, ownerID)
	if err != nil {
		return domain.ValuationSnapshot{}, err
	}

	return valuation.Compute(ownerID, trades, quotes, baseline), nil
}

func (s *PortfolioService) publishTrades(ownerID string) {
	s.notifier.Publish(domain.ChangeEvent{
		Kind:    domain.ChangeTrades,
		OwnerID: ownerID,
		At:      time.Now().UTC(),
	})
}
