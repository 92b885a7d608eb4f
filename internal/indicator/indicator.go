// Package indicator provides technical indicator calculations over price series.
//
// All functions are pure: they take a float64 series (oldest first) and return
// a series of the same length. Positions where the indicator is not yet
// defined (warm-up region) hold NaN, so comparisons against them are false.
package indicator

import "math"

// Undefined is the value used for warm-up positions.
func Undefined() float64 { return math.NaN() }

// Defined reports whether v is a computed indicator value.
func Defined(v float64) bool { return !math.IsNaN(v) }

// Crossover reports whether series a crossed strictly above series b between
// the last two samples. Only the final two samples are examined; this is a
// point-in-time edge detector, not a window scan.
func Crossover(a, b []float64) bool {
	n := len(a)
	if n < 2 || len(b) != n {
		return false
	}
	return a[n-1] > b[n-1] && a[n-2] < b[n-2]
}

// Crossunder reports whether series a crossed strictly below series b between
// the last two samples. Mirror of Crossover.
func Crossunder(a, b []float64) bool {
	n := len(a)
	if n < 2 || len(b) != n {
		return false
	}
	return a[n-1] < b[n-1] && a[n-2] > b[n-2]
}

// Level returns a constant series of the given length, for crossing a series
// against a fixed threshold.
func Level(v float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = v
	}
	return out
}

// Last returns the final sample of a series, or NaN for an empty one.
func Last(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}
