package ringbuf

import (
	"sync"
	"testing"
	"time"

	"signalbot/internal/model"
)

func candle(close float64) model.Candle {
	return model.Candle{
		Figi:     "F1",
		Interval: model.Interval5Min,
		TS:       time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
		Close:    close,
	}
}

func TestPushAndSnapshot(t *testing.T) {
	r := New(4)
	for i := 1; i <= 3; i++ {
		if evicted := r.Push(candle(float64(i))); evicted {
			t.Errorf("push %d: unexpected eviction", i)
		}
	}

	if r.Len() != 3 {
		t.Fatalf("expected len 3, got %d", r.Len())
	}
	snap := r.Snapshot()
	for i, c := range snap {
		if c.Close != float64(i+1) {
			t.Errorf("snapshot[%d] = %.0f, want %d", i, c.Close, i+1)
		}
	}
}

func TestOverwriteKeepsNewest(t *testing.T) {
	r := New(4)
	for i := 1; i <= 10; i++ {
		r.Push(candle(float64(i)))
	}

	if r.Len() != 4 {
		t.Fatalf("expected len 4, got %d", r.Len())
	}
	if r.Evicted() != 6 {
		t.Errorf("expected 6 evictions, got %d", r.Evicted())
	}

	snap := r.Snapshot()
	want := []float64{7, 8, 9, 10}
	for i, c := range snap {
		if c.Close != want[i] {
			t.Errorf("snapshot[%d] = %.0f, want %.0f", i, c.Close, want[i])
		}
	}
}

func TestLast(t *testing.T) {
	r := New(2)
	if _, ok := r.Last(); ok {
		t.Error("expected no last candle when empty")
	}
	r.Push(candle(1))
	r.Push(candle(2))
	r.Push(candle(3))
	last, ok := r.Last()
	if !ok || last.Close != 3 {
		t.Errorf("expected newest close 3, got %+v (ok=%v)", last, ok)
	}
}

func TestTail(t *testing.T) {
	r := New(8)
	for i := 1; i <= 5; i++ {
		r.Push(candle(float64(i)))
	}

	tail := r.Tail(2)
	if len(tail) != 2 || tail[0].Close != 4 || tail[1].Close != 5 {
		t.Errorf("unexpected tail %+v", tail)
	}
	if got := r.Tail(100); len(got) != 5 {
		t.Errorf("oversized tail should return everything, got %d", len(got))
	}
}

func TestCapacityRounding(t *testing.T) {
	if got := New(5).Cap(); got != 8 {
		t.Errorf("expected capacity 8, got %d", got)
	}
	if got := New(0).Cap(); got != 2 {
		t.Errorf("expected minimum capacity 2, got %d", got)
	}
}

func TestConcurrentPushSnapshot(t *testing.T) {
	r := New(64)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			r.Push(candle(float64(i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			snap := r.Snapshot()
			for j := 1; j < len(snap); j++ {
				if snap[j].Close < snap[j-1].Close {
					t.Errorf("snapshot out of order at %d", j)
					return
				}
			}
		}
	}()
	wg.Wait()
}
