package deals

import (
	"context"
	"encoding/json"
	"strings"

	"sjsage522/dealbite/internal/extract"
	"sjsage522/dealbite/internal/model"
	"sjsage522/dealbite/internal/scoring"
	"sjsage522/dealbite/internal/source"
	"sjsage522/dealbite/internal/store"
	"sjsage522/dealbite/logger"
	apperrors "sjsage522/dealbite/pkg/errors"
	"sjsage522/dealbite/services/publisher"
)

// NoDealsReason is the reason reported by Best when nothing is stored
const NoDealsReason = "No deals yet. Run a refresh first."

// PageFetcher returns the visible text of a deals page
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Store is the persistence surface the service needs
type Store interface {
	Upsert(ctx context.Context, deals []model.Deal) ([]model.Deal, error)
	ListDeals(ctx context.Context, f store.Filter) ([]model.Deal, error)
}

// BestResult is the answer to a best deal query. Best is nil when no deal
// matched.
type BestResult struct {
	Best   *model.ScoredDeal `json:"best"`
	Reason string            `json:"reason"`
}

// Service runs refreshes and answers read queries
type Service struct {
	fetcher   PageFetcher
	store     Store
	registry  *source.Registry
	publisher publisher.Publisher
}

// NewService creates a Service. A nil publisher discards events.
func NewService(f PageFetcher, s Store, r *source.Registry, p publisher.Publisher) *Service {
	if p == nil {
		p = publisher.Nop{}
	}
	return &Service{fetcher: f, store: s, registry: r, publisher: p}
}

// Refresh fetches the deals page of restaurant, extracts deals for market
// and stores the new ones. It returns the number of deals added. A fetch
// failure ends the run before anything is stored.
func (s *Service) Refresh(ctx context.Context, restaurant, market string) (int, error) {
	restaurant = strings.TrimSpace(restaurant)
	market = strings.TrimSpace(market)
	if market == "" {
		return 0, apperrors.NewValidation(restaurant, "market is required")
	}

	src, err := s.registry.Lookup(restaurant)
	if err != nil {
		return 0, err
	}
	log := logger.ForSource(src.Restaurant, market)

	text, err := s.fetcher.FetchText(ctx, src.URL)
	if err != nil {
		return 0, err
	}

	candidates := extract.NewBuilder(src.Normalizer()).Build(text, extract.Context{
		Restaurant: src.Restaurant,
		Market:     market,
		SourceURL:  src.URL,
	})

	valid := candidates[:0]
	for _, d := range candidates {
		if err := d.Validate(); err != nil {
			log.Warn().Err(err).Str("title", d.Title).Msg("Skipping invalid deal")
			continue
		}
		valid = append(valid, d)
	}

	added, err := s.store.Upsert(ctx, valid)
	s.publish(ctx, added)
	if err != nil {
		return len(added), err
	}

	log.Info().
		Int("candidates", len(candidates)).
		Int("added", len(added)).
		Msg("Refresh finished")
	return len(added), nil
}

// publish emits one event per newly stored deal. Failures are only logged.
func (s *Service) publish(ctx context.Context, added []model.Deal) {
	log := logger.ForPublisher()
	for _, d := range added {
		scored := scoring.Score(d)
		data, err := json.Marshal(scored)
		if err != nil {
			log.Error().Err(err).Str("id", scored.ID).Msg("Failed to encode deal")
			continue
		}
		if err := s.publisher.Publish(ctx, d.Restaurant, data); err != nil {
			log.Warn().Err(err).Str("id", scored.ID).Msg("Failed to publish deal")
		}
	}
}

// List returns stored deals newest first with derived fields attached
func (s *Service) List(ctx context.Context, f store.Filter) ([]model.ScoredDeal, error) {
	deals, err := s.store.ListDeals(ctx, f)
	if err != nil {
		return nil, err
	}
	return scoring.ScoreAll(deals), nil
}

// Best ranks the newest deals matching market and restaurant and returns the
// winner with a human readable reason.
func (s *Service) Best(ctx context.Context, market, restaurant string) (BestResult, error) {
	scored, err := s.List(ctx, store.Filter{Market: market, Restaurant: restaurant})
	if err != nil {
		return BestResult{}, err
	}

	best := scoring.Best(scored)
	if best == nil {
		return BestResult{Reason: NoDealsReason}, nil
	}
	return BestResult{Best: best, Reason: scoring.Reason(*best)}, nil
}
