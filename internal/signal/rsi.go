package signal

import (
	"fmt"

	"signalbot/internal/indicator"
	"signalbot/internal/model"
)

// rsiBounds signals on RSI leaving its configured band.
//
// Buy: RSI below the low bound (oversold)
// Sell: RSI above the high bound (overbought)
type rsiBounds struct {
	period    int
	low, high float64
	obs       Observer
}

func newRSIBounds(p Params, obs Observer) (*rsiBounds, error) {
	if p.Period <= 0 {
		return nil, fmt.Errorf("rsi: need period > 0, got %d", p.Period)
	}
	if p.Low <= 0 || p.High <= 0 || p.Low >= p.High {
		return nil, fmt.Errorf("rsi: need 0 < low < high, got low=%.2f high=%.2f", p.Low, p.High)
	}
	return &rsiBounds{period: p.Period, low: p.Low, high: p.High, obs: obs}, nil
}

func (s *rsiBounds) Name() string { return "rsi" }

// MinCandles: one delta per candle, period deltas to seed the averages.
func (s *rsiBounds) MinCandles() int { return s.period + 1 }

func (s *rsiBounds) Calc(in Input) Decision {
	if len(in.Candles) < s.MinCandles() {
		return None
	}
	series := indicator.RSI(model.Closes(in.Candles), s.period)
	s.obs.ObserveSeries("rsi", "rsi", series)

	last := indicator.Last(series)
	if !indicator.Defined(last) {
		return None
	}
	switch {
	case last < s.low:
		return Buy
	case last > s.high:
		return Sell
	}
	return None
}
