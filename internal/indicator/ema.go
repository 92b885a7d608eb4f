package indicator

// EMA calculates the Exponential Moving Average, seeded with the SMA of the
// first period values.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 || len(values) < period {
		for i := range out {
			out[i] = Undefined()
		}
		return out
	}

	multiplier := 2.0 / float64(period+1)
	sum := 0.0
	for i, v := range values {
		if i < period-1 {
			sum += v
			out[i] = Undefined()
			continue
		}
		if i == period-1 {
			sum += v
			out[i] = sum / float64(period)
			continue
		}
		// EMA = price*k + prevEMA*(1-k)
		out[i] = v*multiplier + out[i-1]*(1-multiplier)
	}
	return out
}
