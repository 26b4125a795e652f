package buffer

import (
	"math"
)

// Stats is a set of statistical properties of a stream of payoffs.
type Stats struct {
	count          int
	sum            float64
	min, max       float64
	mean, dSquared float64
	wins, draws    int
}

// NewStats creates a new Stats.
func NewStats() *Stats {
	return &Stats{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
}

// Push adds another element to the set.
func (s *Stats) Push(v float64) {
	s.count++
	s.sum += v
	diff := (v - s.mean) / float64(s.count)
	mean := s.mean + diff
	squaredDiff := (v - mean) * (v - s.mean)
	s.dSquared += squaredDiff
	s.mean = mean

	if s.min > v {
		s.min = v
	}
	if s.max < v {
		s.max = v
	}

	switch {
	case v > 0:
		s.wins++
	case v == 0:
		s.draws++
	}
}

// Count returns the number of elements.
func (s Stats) Count() int {
	return s.count
}

// Sum returns the total of the set.
func (s Stats) Sum() float64 {
	return s.sum
}

// Avg returns the average value of the set.
func (s Stats) Avg() float64 {
	return s.mean
}

// Min returns the smallest element, 0 for an empty set.
func (s Stats) Min() float64 {
	if s.count == 0 {
		return 0
	}
	return s.min
}

// Max returns the largest element, 0 for an empty set.
func (s Stats) Max() float64 {
	if s.count == 0 {
		return 0
	}
	return s.max
}

// StDev is the standard deviation of the set.
func (s Stats) StDev() float64 {
	if s.count == 0 {
		return 0
	}
	return math.Sqrt(s.dSquared / float64(s.count))
}

// Wins is the number of positive elements.
func (s Stats) Wins() int {
	return s.wins
}

// Draws is the number of zero elements.
func (s Stats) Draws() int {
	return s.draws
}

// Losses is the number of negative elements.
func (s Stats) Losses() int {
	return s.count - s.wins - s.draws
}

// WinRate is the share of positive elements in percent.
// When excludeDraws is set, zero elements are left out of the denominator.
func (s Stats) WinRate(excludeDraws bool) float64 {
	n := s.count
	if excludeDraws {
		n -= s.draws
	}
	if n <= 0 {
		return 0
	}
	return 100 * float64(s.wins) / float64(n)
}
