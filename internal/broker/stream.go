package broker

import (
	"context"
	"log"
	"sync"

	"signalbot/internal/model"
	"signalbot/internal/ringbuf"
	"signalbot/pkg/investlink"
)

// StreamSource serves candle history from the broker's websocket feed. Each
// instrument keeps a bounded in-memory window; while a window is still
// shorter than a request, the REST fallback answers and seeds it.
type StreamSource struct {
	client   *investlink.Client
	fallback Source
	interval model.Interval

	mu      sync.RWMutex
	windows map[string]*ringbuf.Ring
	cap     int
}

// NewStreamSource builds windows for the given instruments. capacity bounds
// each window; requests beyond it always go to the fallback.
func NewStreamSource(client *investlink.Client, fallback Source, figis []string, interval model.Interval, capacity int) *StreamSource {
	windows := make(map[string]*ringbuf.Ring, len(figis))
	for _, figi := range figis {
		windows[figi] = ringbuf.New(capacity)
	}
	return &StreamSource{
		client:   client,
		fallback: fallback,
		interval: interval,
		windows:  windows,
		cap:      capacity,
	}
}

// Run consumes the feed until ctx is cancelled. Reconnects are handled by
// the stream itself.
func (s *StreamSource) Run(ctx context.Context) error {
	figis := make([]string, 0, len(s.windows))
	for figi := range s.windows {
		figis = append(figis, figi)
	}

	ch := make(chan investlink.StreamCandle, 256)
	stream := s.client.NewStream(figis, string(s.interval))
	go func() {
		for sc := range ch {
			s.ingest(sc)
		}
	}()
	defer close(ch)
	return stream.Run(ctx, ch)
}

func (s *StreamSource) ingest(sc investlink.StreamCandle) {
	s.mu.RLock()
	ring := s.windows[sc.Figi]
	s.mu.RUnlock()
	if ring == nil || model.Interval(sc.Interval) != s.interval {
		return
	}

	// The feed only carries closed bars, so a re-sent bucket is a duplicate
	// and gets dropped rather than overwriting the window.
	if last, ok := ring.Last(); ok && last.TS.Equal(sc.Time) {
		return
	}
	ring.Push(model.Candle{
		Figi:     sc.Figi,
		Interval: s.interval,
		TS:       sc.Time,
		Open:     sc.Open,
		High:     sc.High,
		Low:      sc.Low,
		Close:    sc.Close,
		Volume:   sc.Volume,
	})
}

// Candles serves from the window when it is warm enough, otherwise from the
// fallback, seeding the window with the fetched history.
func (s *StreamSource) Candles(ctx context.Context, figi string, interval model.Interval, minCount int) ([]model.Candle, error) {
	s.mu.RLock()
	ring := s.windows[figi]
	s.mu.RUnlock()

	if ring != nil && interval == s.interval && ring.Len() >= minCount {
		return ring.Tail(minCount * 2), nil
	}

	candles, err := s.fallback.Candles(ctx, figi, interval, minCount)
	if err != nil {
		return nil, err
	}
	if ring != nil && interval == s.interval && ring.Len() == 0 {
		for _, c := range candles {
			ring.Push(c)
		}
		log.Printf("[broker] %s: stream window seeded with %d bars", figi, len(candles))
	}
	return candles, nil
}

// StreamMux fans the feed out per interval: instruments trading on different
// timeframes each get their own stream, all sharing one fallback.
type StreamMux struct {
	sources  map[model.Interval]*StreamSource
	fallback Source
}

// NewStreamMux builds one StreamSource per interval present in figisByInterval.
func NewStreamMux(client *investlink.Client, fallback Source, figisByInterval map[model.Interval][]string, capacity int) *StreamMux {
	sources := make(map[model.Interval]*StreamSource, len(figisByInterval))
	for interval, figis := range figisByInterval {
		sources[interval] = NewStreamSource(client, fallback, figis, interval, capacity)
	}
	return &StreamMux{sources: sources, fallback: fallback}
}

// Run starts every stream and blocks until ctx is cancelled.
func (m *StreamMux) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, src := range m.sources {
		wg.Add(1)
		go func(src *StreamSource) {
			defer wg.Done()
			if err := src.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[broker] stream stopped: %v", err)
			}
		}(src)
	}
	wg.Wait()
}

// Candles routes to the interval's stream, or straight to the fallback for
// intervals without one.
func (m *StreamMux) Candles(ctx context.Context, figi string, interval model.Interval, minCount int) ([]model.Candle, error) {
	if src, ok := m.sources[interval]; ok {
		return src.Candles(ctx, figi, interval, minCount)
	}
	return m.fallback.Candles(ctx, figi, interval, minCount)
}
