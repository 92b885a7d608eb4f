package signal

import (
	"fmt"

	"signalbot/internal/indicator"
	"signalbot/internal/model"
)

// bollingerBreakout signals on the close price crossing the Bollinger bands:
// a mean-reversion entry below the lower band, an exit above the upper one.
type bollingerBreakout struct {
	period    int
	deviation float64
	obs       Observer
}

func newBollingerBreakout(p Params, obs Observer) (*bollingerBreakout, error) {
	if p.Period <= 1 {
		return nil, fmt.Errorf("bollinger: need period > 1, got %d", p.Period)
	}
	dev := p.Deviation
	if dev == 0 {
		dev = 2.0
	}
	if dev < 0 {
		return nil, fmt.Errorf("bollinger: need deviation >= 0, got %.2f", dev)
	}
	return &bollingerBreakout{period: p.Period, deviation: dev, obs: obs}, nil
}

func (s *bollingerBreakout) Name() string { return "bollinger" }

func (s *bollingerBreakout) MinCandles() int { return s.period + 1 }

func (s *bollingerBreakout) Calc(in Input) Decision {
	if len(in.Candles) < s.MinCandles() {
		return None
	}
	closes := model.Closes(in.Candles)
	upper, middle, lower := indicator.Bollinger(closes, s.period, s.deviation)
	s.obs.ObserveSeries("bollinger", "upper", upper)
	s.obs.ObserveSeries("bollinger", "middle", middle)
	s.obs.ObserveSeries("bollinger", "lower", lower)

	switch {
	case indicator.Crossunder(closes, lower):
		return Buy
	case indicator.Crossover(closes, upper):
		return Sell
	}
	return None
}
