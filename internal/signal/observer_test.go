package signal

import (
	"testing"
)

type recordingObserver struct {
	series map[string][]float64
}

func (r *recordingObserver) ObserveSeries(signal, series string, values []float64) {
	if r.series == nil {
		r.series = make(map[string][]float64)
	}
	r.series[signal+"/"+series] = values
}

func TestSignalPublishesSeriesToObserver(t *testing.T) {
	rec := &recordingObserver{}
	s, err := New("sma", Params{Fast: 2, Slow: 3}, rec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.Calc(Input{Candles: candlesFromCloses(10, 10, 10, 8, 16)})

	for _, key := range []string{"sma/fast", "sma/slow"} {
		vals, ok := rec.series[key]
		if !ok {
			t.Errorf("series %q not observed", key)
			continue
		}
		if len(vals) != 5 {
			t.Errorf("series %q has %d samples, want one per candle (5)", key, len(vals))
		}
	}
}

func TestNopObserverUsableAsValue(t *testing.T) {
	s, err := New("sma", Params{Fast: 2, Slow: 3}, NopObserver())
	if err != nil {
		t.Fatalf("New with nop observer: %v", err)
	}
	if got := s.Calc(Input{Candles: candlesFromCloses(10, 10, 10, 8, 16)}); got != Buy {
		t.Errorf("decision = %v, want BUY regardless of observer", got)
	}
}
