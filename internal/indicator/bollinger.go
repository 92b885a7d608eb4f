package indicator

import "math"

// Bollinger calculates Bollinger Bands: an SMA middle band and upper/lower
// bands offset by dev standard deviations of the same window. A window with
// zero variance degrades to bands equal to the middle line, never to NaN
// beyond the usual warm-up region.
func Bollinger(values []float64, period int, dev float64) (upper, middle, lower []float64) {
	middle = SMA(values, period)
	upper = make([]float64, len(values))
	lower = make([]float64, len(values))

	for i := range values {
		if !Defined(middle[i]) {
			upper[i] = Undefined()
			lower[i] = Undefined()
			continue
		}
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - middle[i]
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = middle[i] + dev*sd
		lower[i] = middle[i] - dev*sd
	}
	return upper, middle, lower
}
