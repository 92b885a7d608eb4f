package signal

// Observer receives the intermediate series a signal computes during Calc.
// This is observability only (diagnostic plotting, dashboards); it is not
// part of the decision contract and implementations must not influence it.
type Observer interface {
	ObserveSeries(signal, series string, values []float64)
}

type nopObserver struct{}

func (nopObserver) ObserveSeries(string, string, []float64) {}

// NopObserver returns an Observer that discards everything.
func NopObserver() Observer { return nopObserver{} }
