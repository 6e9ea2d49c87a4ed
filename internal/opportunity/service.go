package opportunity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"polysim/internal/client/gamma"
	"polysim/internal/gate"
	"polysim/internal/market"
)

var (
	// ErrUpstreamUnavailable means the market-data fetch failed and no cached
	// result was available to serve instead.
	ErrUpstreamUnavailable = errors.New("market data upstream unavailable")

	ErrMarketNotFound = errors.New("market not found")
)

// EventSource is the upstream market-data collaborator.
type EventSource interface {
	ListEvents(ctx context.Context, q gamma.EventsQuery) ([]gamma.RawEvent, error)
	GetMarket(ctx context.Context, conditionID string) (*gamma.RawMarket, error)
}

// Service runs the ranking pipeline: fetch raw events, normalize each market,
// score, rank, cache. A failed refresh serves the previous batch when one
// exists; callers are never told a response is stale.
type Service struct {
	Source EventSource
	Cache  *gate.Cache
	Logger *zap.Logger

	FetchLimit int
	Now        func() time.Time
}

// Query is the shape of one ranking request. Each distinct shape owns its own
// cache entry.
type Query struct {
	Limit int
	Title string
}

func (q Query) key() string {
	return fmt.Sprintf("limit=%d|title=%s", q.Limit, q.Title)
}

// TopOpportunities returns the ranked top-limit markets for the query,
// serving the cache when fresh and stale data when the upstream fetch fails.
func (s *Service) TopOpportunities(ctx context.Context, q Query) ([]market.Scored, error) {
	key := q.key()
	if data, fresh, ok := s.Cache.Get(key); ok && fresh {
		return data, nil
	}

	// The fetch runs with no cache lock held; only the entry swap below is
	// done under the cache's own protection.
	events, err := s.Source.ListEvents(ctx, gamma.EventsQuery{
		Active: boolPtr(true),
		Closed: boolPtr(false),
		Limit:  s.fetchLimit(),
		Order:  "volume24hr",
		Title:  q.Title,
	})
	if err != nil {
		if data, _, ok := s.Cache.Get(key); ok {
			if s.Logger != nil {
				s.Logger.Warn("market fetch failed, serving cached data", zap.Error(err))
			}
			return data, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	ranked := market.Rank(s.normalizeAll(events), q.Limit)
	s.Cache.Put(key, ranked)
	return ranked, nil
}

// Markets returns normalized, unscored snapshots for the most active markets.
// It always fetches fresh data.
func (s *Service) Markets(ctx context.Context, limit int) ([]market.Snapshot, error) {
	events, err := s.Source.ListEvents(ctx, gamma.EventsQuery{
		Active: boolPtr(true),
		Closed: boolPtr(false),
		Limit:  limit,
		Order:  "volume24hr",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return s.normalizeAll(events), nil
}

// Quote resolves the current YES/NO prices for one market. It bypasses the
// batch cache; price refresh wants the latest quote, not a ranked view.
func (s *Service) Quote(ctx context.Context, marketID string) (yes, no float64, err error) {
	raw, err := s.Source.GetMarket(ctx, marketID)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if raw == nil {
		return 0, 0, ErrMarketNotFound
	}
	snap := market.Normalize(*raw, gamma.RawEvent{}, s.nowUTC())
	return snap.YesPrice, snap.NoPrice, nil
}

func (s *Service) normalizeAll(events []gamma.RawEvent) []market.Snapshot {
	now := s.nowUTC()
	var snapshots []market.Snapshot
	for _, event := range events {
		for _, raw := range event.Markets {
			if !raw.Tradable() {
				continue
			}
			snapshots = append(snapshots, market.Normalize(raw, event, now))
		}
	}
	return snapshots
}

func (s *Service) fetchLimit() int {
	if s.FetchLimit > 0 {
		return s.FetchLimit
	}
	return 100
}

func (s *Service) nowUTC() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func boolPtr(v bool) *bool { return &v }
