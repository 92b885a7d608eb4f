package signal

import (
	"fmt"

	"signalbot/internal/indicator"
	"signalbot/internal/model"
)

// smaCross signals on the crossing of a fast SMA over a slow SMA.
//
// Buy: fast crosses above slow (golden cross)
// Sell: fast crosses below slow (death cross)
type smaCross struct {
	fast, slow int
	obs        Observer
}

func newSMACross(p Params, obs Observer) (*smaCross, error) {
	if p.Fast <= 0 || p.Slow <= 0 || p.Fast >= p.Slow {
		return nil, fmt.Errorf("sma: need 0 < fast < slow, got fast=%d slow=%d", p.Fast, p.Slow)
	}
	return &smaCross{fast: p.Fast, slow: p.Slow, obs: obs}, nil
}

func (s *smaCross) Name() string { return "sma" }

// MinCandles needs one extra sample beyond the slow warm-up so the edge
// detector has a defined prior value.
func (s *smaCross) MinCandles() int { return s.slow + 1 }

func (s *smaCross) Calc(in Input) Decision {
	if len(in.Candles) < s.MinCandles() {
		return None
	}
	closes := model.Closes(in.Candles)
	fast := indicator.SMA(closes, s.fast)
	slow := indicator.SMA(closes, s.slow)
	s.obs.ObserveSeries("sma", "fast", fast)
	s.obs.ObserveSeries("sma", "slow", slow)

	switch {
	case indicator.Crossover(fast, slow):
		return Buy
	case indicator.Crossunder(fast, slow):
		return Sell
	}
	return None
}
