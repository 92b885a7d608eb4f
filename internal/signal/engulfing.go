package signal

// engulfing detects the two-candle engulfing reversal pattern.
//
// Buy: a bullish body fully engulfs the prior bearish body
// Sell: a bearish body fully engulfs the prior bullish body
type engulfing struct{}

func newEngulfing(Params) (*engulfing, error) {
	return &engulfing{}, nil
}

func (s *engulfing) Name() string { return "engulfing" }

func (s *engulfing) MinCandles() int { return 2 }

func (s *engulfing) Calc(in Input) Decision {
	n := len(in.Candles)
	if n < 2 {
		return None
	}
	prev, cur := in.Candles[n-2], in.Candles[n-1]

	prevBearish := prev.Close < prev.Open
	prevBullish := prev.Close > prev.Open
	curBullish := cur.Close > cur.Open
	curBearish := cur.Close < cur.Open

	if prevBearish && curBullish && cur.Open <= prev.Close && cur.Close >= prev.Open {
		return Buy
	}
	if prevBullish && curBearish && cur.Open >= prev.Close && cur.Close <= prev.Open {
		return Sell
	}
	return None
}
