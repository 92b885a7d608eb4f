package model

import (
	"encoding/json"
	"time"
)

// Interval identifies a candle timeframe as the broker API names it.
type Interval string

const (
	Interval1Min  Interval = "1min"
	Interval5Min  Interval = "5min"
	Interval15Min Interval = "15min"
	Interval1Hour Interval = "hour"
	Interval1Day  Interval = "day"
)

// Duration returns the wall-clock length of one candle of this interval.
func (i Interval) Duration() time.Duration {
	switch i {
	case Interval1Min:
		return time.Minute
	case Interval5Min:
		return 5 * time.Minute
	case Interval15Min:
		return 15 * time.Minute
	case Interval1Hour:
		return time.Hour
	case Interval1Day:
		return 24 * time.Hour
	}
	return 5 * time.Minute
}

// Candle represents one OHLCV bar for a single instrument.
// Sequences of candles are always ordered oldest first and treated as
// immutable once fetched.
type Candle struct {
	Figi     string    `json:"figi"`
	Interval Interval  `json:"interval"`
	TS       time.Time `json:"ts"` // bucket start time (UTC)
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// Closes extracts the close-price series from a candle window, oldest first.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		out[i] = candles[i].Close
	}
	return out
}
