package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avivreu7/medabrimbis/internal/domain"
)

var ErrNoQuotes = errors.New("no quotes fetched")

// QuoteService syncs the quote cache from the external price feed. A sync
// replaces the whole set: an empty fetch is rejected so a flaky feed can
// never wipe the cache and leave every open trade unpriced.
type QuoteService struct {
	feed     domain.QuoteFeed
	repo     domain.QuoteRepository
	notifier domain.Notifier
}

func NewQuoteService(feed domain.QuoteFeed, repo domain.QuoteRepository, notifier domain.Notifier) (*QuoteService, error) {
	if feed == nil {
		return nil, fmt.Errorf("feed is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}

	return &QuoteService{
		feed:     feed,
		repo:     repo,
		notifier: notifier,
	}, nil
}

func (s *QuoteService) Sync(ctx context.Context) (int, error) {
	quotes, err := s.feed.FetchQuotes(ctx)
	if err != nil {
		return 0, err
	}
	if len(quotes) == 0 {
		return 0, ErrNoQuotes
	}

	if err := s.repo.ReplaceAll(ctx, quotes); err != nil {
		return 0, err
	}

	s.notifier.Publish(domain.ChangeEvent{
		Kind: domain.ChangeQuotes,
		At:   time.Now().UTC(),
	})

	return len(quotes), nil
}

func (s *QuoteService) List(ctx context.Context) (domain.QuoteSet, error) {
	return s.repo.List(ctx)
}
