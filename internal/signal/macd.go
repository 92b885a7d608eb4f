package signal

import (
	"fmt"

	"signalbot/internal/indicator"
	"signalbot/internal/model"
)

// macdCross signals on the MACD line crossing its signal line.
type macdCross struct {
	fast, slow, signalPeriod int
	obs                      Observer
}

func newMACDCross(p Params, obs Observer) (*macdCross, error) {
	if p.Fast <= 0 || p.Slow <= 0 || p.Fast >= p.Slow {
		return nil, fmt.Errorf("macd: need 0 < fast < slow, got fast=%d slow=%d", p.Fast, p.Slow)
	}
	if p.SignalPeriod <= 0 {
		return nil, fmt.Errorf("macd: need signal_period > 0, got %d", p.SignalPeriod)
	}
	return &macdCross{fast: p.Fast, slow: p.Slow, signalPeriod: p.SignalPeriod, obs: obs}, nil
}

func (s *macdCross) Name() string { return "macd" }

// MinCandles: the signal line's first defined sample is at slow+signalPeriod-2,
// and edge detection needs one more.
func (s *macdCross) MinCandles() int { return s.slow + s.signalPeriod }

func (s *macdCross) Calc(in Input) Decision {
	if len(in.Candles) < s.MinCandles() {
		return None
	}
	macd, sig := indicator.MACD(model.Closes(in.Candles), s.fast, s.slow, s.signalPeriod)
	s.obs.ObserveSeries("macd", "macd", macd)
	s.obs.ObserveSeries("macd", "signal", sig)

	switch {
	case indicator.Crossover(macd, sig):
		return Buy
	case indicator.Crossunder(macd, sig):
		return Sell
	}
	return None
}
