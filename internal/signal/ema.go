package signal

import (
	"fmt"

	"signalbot/internal/indicator"
	"signalbot/internal/model"
)

// emaCross mirrors smaCross with exponential averages, reacting faster to
// recent price movement.
type emaCross struct {
	fast, slow int
	obs        Observer
}

func newEMACross(p Params, obs Observer) (*emaCross, error) {
	if p.Fast <= 0 || p.Slow <= 0 || p.Fast >= p.Slow {
		return nil, fmt.Errorf("ema: need 0 < fast < slow, got fast=%d slow=%d", p.Fast, p.Slow)
	}
	return &emaCross{fast: p.Fast, slow: p.Slow, obs: obs}, nil
}

func (s *emaCross) Name() string { return "ema" }

func (s *emaCross) MinCandles() int { return s.slow + 1 }

func (s *emaCross) Calc(in Input) Decision {
	if len(in.Candles) < s.MinCandles() {
		return None
	}
	closes := model.Closes(in.Candles)
	fast := indicator.EMA(closes, s.fast)
	slow := indicator.EMA(closes, s.slow)
	s.obs.ObserveSeries("ema", "fast", fast)
	s.obs.ObserveSeries("ema", "slow", slow)

	switch {
	case indicator.Crossover(fast, slow):
		return Buy
	case indicator.Crossunder(fast, slow):
		return Sell
	}
	return None
}
