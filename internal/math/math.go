package math

import (
	"math"
	"strconv"
)

// Format formats a float with two decimals.
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Finite checks that the value is a usable number.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ChangePct returns the percentage change from a to b.
func ChangePct(from, to float64) (float64, bool) {
	if from <= 0 || !Finite(from) || !Finite(to) {
		return 0, false
	}
	return (to/from - 1) * 100, true
}

// Mean returns the arithmetic mean of the values.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s / float64(len(values)), true
}
