package indicator

// MACD calculates the MACD line (fast EMA minus slow EMA) and its signal line
// (EMA of the MACD line). The signal line is seeded with the SMA of the first
// signalPeriod defined MACD samples, so its first defined index is
// slow+signalPeriod-2.
func MACD(values []float64, fast, slow, signalPeriod int) (macd, signal []float64) {
	emaFast := EMA(values, fast)
	emaSlow := EMA(values, slow)

	macd = make([]float64, len(values))
	for i := range macd {
		if Defined(emaFast[i]) && Defined(emaSlow[i]) {
			macd[i] = emaFast[i] - emaSlow[i]
		} else {
			macd[i] = Undefined()
		}
	}

	signal = make([]float64, len(values))
	for i := range signal {
		signal[i] = Undefined()
	}
	if signalPeriod <= 0 || slow <= 0 {
		return macd, signal
	}

	start := slow - 1 // first defined MACD sample
	if start < 0 || len(values)-start < signalPeriod {
		return macd, signal
	}
	multiplier := 2.0 / float64(signalPeriod+1)
	sum := 0.0
	for i := start; i < len(values); i++ {
		n := i - start
		if n < signalPeriod-1 {
			sum += macd[i]
			continue
		}
		if n == signalPeriod-1 {
			sum += macd[i]
			signal[i] = sum / float64(signalPeriod)
			continue
		}
		signal[i] = macd[i]*multiplier + signal[i-1]*(1-multiplier)
	}
	return macd, signal
}
