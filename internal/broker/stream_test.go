package broker

import (
	"context"
	"testing"
	"time"

	"signalbot/internal/model"
	"signalbot/pkg/investlink"
)

// Every candle provider in the pipeline must be usable as a fallback for
// the next layer.
var (
	_ Source = (*CandleSource)(nil)
	_ Source = (*StreamSource)(nil)
	_ Source = (*StreamMux)(nil)
)

type scriptedSource struct {
	calls   int
	candles []model.Candle
	err     error
}

func (s *scriptedSource) Candles(context.Context, string, model.Interval, int) ([]model.Candle, error) {
	s.calls++
	return s.candles, s.err
}

func bars(figi string, n int) []model.Candle {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	out := make([]model.Candle, n)
	for i := range out {
		out[i] = model.Candle{
			Figi:     figi,
			Interval: model.Interval5Min,
			TS:       base.Add(time.Duration(i) * 5 * time.Minute),
			Close:    100 + float64(i),
		}
	}
	return out
}

func streamBar(figi string, ts time.Time, px float64) investlink.StreamCandle {
	return investlink.StreamCandle{
		Figi:     figi,
		Interval: "5min",
		Candle:   investlink.Candle{Time: ts, Open: px, High: px, Low: px, Close: px},
		Closed:   true,
	}
}

func TestStreamSourceColdFallsBackAndSeedsWindow(t *testing.T) {
	fallback := &scriptedSource{candles: bars("F1", 4)}
	src := NewStreamSource(nil, fallback, []string{"F1"}, model.Interval5Min, 8)

	got, err := src.Candles(context.Background(), "F1", model.Interval5Min, 3)
	if err != nil {
		t.Fatalf("Candles: %v", err)
	}
	if len(got) != 4 || fallback.calls != 1 {
		t.Fatalf("got %d candles, %d fallback calls; want 4 and 1", len(got), fallback.calls)
	}

	// The fetched history seeded the window, so the next request is served
	// without touching the fallback again.
	got, err = src.Candles(context.Background(), "F1", model.Interval5Min, 3)
	if err != nil {
		t.Fatalf("Candles (warm): %v", err)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback calls = %d after warm request, want 1", fallback.calls)
	}
	if len(got) != 4 {
		t.Errorf("warm request returned %d candles, want 4", len(got))
	}
}

func TestStreamSourceServesIngestedBars(t *testing.T) {
	fallback := &scriptedSource{}
	src := NewStreamSource(nil, fallback, []string{"F1"}, model.Interval5Min, 8)

	ts := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		src.ingest(streamBar("F1", ts.Add(time.Duration(i)*5*time.Minute), 200+float64(i)))
	}

	got, err := src.Candles(context.Background(), "F1", model.Interval5Min, 2)
	if err != nil {
		t.Fatalf("Candles: %v", err)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback calls = %d, want 0 for a warm window", fallback.calls)
	}
	if len(got) != 3 || got[len(got)-1].Close != 202 {
		t.Errorf("got %d candles ending at %.0f, want 3 ending at 202", len(got), got[len(got)-1].Close)
	}
}

func TestStreamSourceDropsResentBar(t *testing.T) {
	src := NewStreamSource(nil, &scriptedSource{}, []string{"F1"}, model.Interval5Min, 8)

	ts := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	src.ingest(streamBar("F1", ts, 100))
	src.ingest(streamBar("F1", ts, 999)) // same bucket re-sent

	got, err := src.Candles(context.Background(), "F1", model.Interval5Min, 1)
	if err != nil {
		t.Fatalf("Candles: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("window holds %d bars after duplicate, want 1", len(got))
	}
	if got[0].Close != 100 {
		t.Errorf("close = %.0f, want the first copy (100) kept", got[0].Close)
	}
}

func TestStreamSourceIgnoresForeignBars(t *testing.T) {
	fallback := &scriptedSource{candles: bars("F1", 1)}
	src := NewStreamSource(nil, fallback, []string{"F1"}, model.Interval5Min, 8)

	ts := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	src.ingest(streamBar("OTHER", ts, 100))
	other := streamBar("F1", ts, 100)
	other.Interval = "hour"
	src.ingest(other)

	// Neither bar landed, so the window is still cold and the request hits
	// the fallback.
	if _, err := src.Candles(context.Background(), "F1", model.Interval5Min, 1); err != nil {
		t.Fatalf("Candles: %v", err)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback calls = %d, want 1 for an unseeded window", fallback.calls)
	}
}

func TestStreamMuxRoutesByInterval(t *testing.T) {
	fallback := &scriptedSource{candles: bars("F1", 2)}
	mux := NewStreamMux(nil, fallback, map[model.Interval][]string{model.Interval5Min: {"F1"}}, 8)

	ts := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	mux.sources[model.Interval5Min].ingest(streamBar("F1", ts, 150))

	got, err := mux.Candles(context.Background(), "F1", model.Interval5Min, 1)
	if err != nil {
		t.Fatalf("Candles (5min): %v", err)
	}
	if fallback.calls != 0 || len(got) != 1 || got[0].Close != 150 {
		t.Errorf("5min request not served from stream window: calls=%d got=%v", fallback.calls, got)
	}

	if _, err := mux.Candles(context.Background(), "F1", model.Interval1Hour, 1); err != nil {
		t.Fatalf("Candles (hour): %v", err)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback calls = %d for an interval without a stream, want 1", fallback.calls)
	}
}
