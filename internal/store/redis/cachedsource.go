package redis

import (
	"context"

	"signalbot/internal/metrics"
	"signalbot/internal/model"
)

// Source is the upstream candle provider the cache fronts.
type Source interface {
	Candles(ctx context.Context, figi string, interval model.Interval, minCount int) ([]model.Candle, error)
}

// CachedSource is a read-through wrapper: cache hit with enough history wins,
// everything else falls through to the upstream and repopulates the entry.
type CachedSource struct {
	upstream Source
	cache    *Cache
	metrics  *metrics.Metrics
}

// NewCachedSource wraps upstream with the cache. Metrics may be nil.
func NewCachedSource(upstream Source, cache *Cache, m *metrics.Metrics) *CachedSource {
	return &CachedSource{upstream: upstream, cache: cache, metrics: m}
}

// Candles implements the candle-source contract.
func (s *CachedSource) Candles(ctx context.Context, figi string, interval model.Interval, minCount int) ([]model.Candle, error) {
	if candles, ok := s.cache.Get(ctx, figi, interval); ok && len(candles) >= minCount {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return candles, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	candles, err := s.upstream.Candles(ctx, figi, interval, minCount)
	if err != nil {
		return nil, err
	}
	s.cache.Put(ctx, figi, interval, candles)
	return candles, nil
}
