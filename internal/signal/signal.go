// Package signal wraps technical indicators behind a uniform decision
// contract: given a candle window and the current unrealized profit, a Signal
// answers buy, sell, or none.
//
// The set of signal kinds is closed and enumerated in New. Signals are
// stateless across calls: every Calc recomputes from the full supplied
// window, so two consecutive evaluations over the same input always agree.
package signal

import (
	"fmt"
	"sort"

	"signalbot/internal/model"
)

// Decision is the outcome of one signal evaluation.
type Decision int

const (
	None Decision = iota
	Buy
	Sell
)

func (d Decision) String() string {
	switch d {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return "NONE"
}

// Input is the per-cycle evaluation input shared by all signals.
type Input struct {
	Candles []model.Candle // oldest first
	Profit  float64        // unrealized profit percent, 0 without a position
}

// Signal is the interface all signal kinds implement.
type Signal interface {
	// Name returns the configuration key of this signal ("sma", "rsi", ...).
	Name() string

	// MinCandles is the smallest window length Calc needs for a defined
	// result. Callers must not expect a decision from shorter windows.
	MinCandles() int

	// Calc evaluates the signal. Windows shorter than MinCandles, or any
	// undefined intermediate value, yield None rather than an error.
	Calc(in Input) Decision
}

// exitSignal marks signals whose result is an exit condition in every
// context, regardless of buy/sell interpretation. The profit signal is the
// only implementation.
type exitSignal interface {
	exitOnly()
}

// Params carries the tunable knobs for every signal kind. Each kind reads
// only the fields it documents.
type Params struct {
	Fast         int     `yaml:"fast" json:"fast"`                   // sma, ema, macd
	Slow         int     `yaml:"slow" json:"slow"`                   // sma, ema, macd
	Period       int     `yaml:"period" json:"period"`               // rsi, bollinger
	SignalPeriod int     `yaml:"signal_period" json:"signal_period"` // macd
	Low          float64 `yaml:"low" json:"low"`                     // rsi
	High         float64 `yaml:"high" json:"high"`                   // rsi
	Deviation    float64 `yaml:"deviation" json:"deviation"`         // bollinger
	TakeProfit   float64 `yaml:"take_profit" json:"take_profit"`     // profit
	StopLoss     float64 `yaml:"stop_loss" json:"stop_loss"`         // profit
}

// Config maps signal names to their parameters for one instrument.
type Config map[string]Params

// Names returns the configured signal names in sorted order.
func (c Config) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New instantiates a signal by its configuration key. Unknown keys and
// invalid parameters are configuration errors and fail construction.
func New(name string, p Params, obs Observer) (Signal, error) {
	if obs == nil {
		obs = NopObserver()
	}
	switch name {
	case "sma":
		return newSMACross(p, obs)
	case "ema":
		return newEMACross(p, obs)
	case "rsi":
		return newRSIBounds(p, obs)
	case "macd":
		return newMACDCross(p, obs)
	case "bollinger":
		return newBollingerBreakout(p, obs)
	case "engulfing":
		return newEngulfing(p)
	case "profit":
		return newProfitGuard(p)
	}
	return nil, fmt.Errorf("signal: unknown kind %q", name)
}
