// Package broker adapts the InvestLink client to the collaborator contracts
// the strategies act through, and provides dry-run stand-ins that never touch
// real money.
package broker

import (
	"context"
	"fmt"
	"time"

	"signalbot/internal/metrics"
	"signalbot/internal/model"
	"signalbot/pkg/investlink"
)

// Source loads candle history for an instrument, oldest first. CandleSource,
// StreamSource and the Redis read-through cache all satisfy it, so the
// pipeline composes from whichever layers are configured.
type Source interface {
	Candles(ctx context.Context, figi string, interval model.Interval, minCount int) ([]model.Candle, error)
}

// CandleSource loads candle history over the broker's REST API.
type CandleSource struct {
	client  *investlink.Client
	metrics *metrics.Metrics
}

// NewCandleSource wraps the client. Metrics may be nil.
func NewCandleSource(client *investlink.Client, m *metrics.Metrics) *CandleSource {
	return &CandleSource{client: client, metrics: m}
}

// Candles returns at least minCount bars when the venue has that much
// history, oldest first. The request window is padded threefold so weekends
// and session gaps do not starve the caller.
func (s *CandleSource) Candles(ctx context.Context, figi string, interval model.Interval, minCount int) ([]model.Candle, error) {
	if minCount <= 0 {
		minCount = 1
	}
	now := time.Now().UTC()
	from := now.Add(-time.Duration(3*minCount) * interval.Duration())

	started := time.Now()
	raw, err := s.client.Candles(ctx, figi, string(interval), from, now, 0)
	if s.metrics != nil {
		s.metrics.CandleFetchDur.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("broker: candles %s: %w", figi, err)
	}

	out := make([]model.Candle, len(raw))
	for i, c := range raw {
		out[i] = model.Candle{
			Figi:     figi,
			Interval: interval,
			TS:       c.Time,
			Open:     c.Open,
			High:     c.High,
			Low:      c.Low,
			Close:    c.Close,
			Volume:   c.Volume,
		}
	}
	// Keep a bounded tail so the cache entry stays small.
	if keep := minCount * 2; len(out) > keep {
		out = out[len(out)-keep:]
	}
	return out, nil
}
