package indicator

// SMA calculates the Simple Moving Average over a rolling window.
// A running sum keeps the pass O(n) regardless of period.
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 {
		for i := range out {
			out[i] = Undefined()
		}
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = Undefined()
		}
	}
	return out
}
