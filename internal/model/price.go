package model

import (
	"fmt"
	"sort"
	"time"
)

// PriceBar is a single OHLCV bar of an instrument.
type PriceBar struct {
	Instrument Instrument `json:"instrument"`
	Time       time.Time  `json:"time"`
	Open       float64    `json:"open"`
	High       float64    `json:"high"`
	Low        float64    `json:"low"`
	Close      float64    `json:"close"`
	Volume     float64    `json:"volume"`
}

// Series is the strictly time-ordered bar history of one instrument.
type Series struct {
	Instrument Instrument
	bars       []PriceBar
}

// NewSeries creates a new series from the given bars.
// Bars are sorted by time. Duplicate timestamps or bars of another instrument are rejected.
func NewSeries(instrument Instrument, bars []PriceBar) (Series, error) {
	bb := make([]PriceBar, len(bars))
	copy(bb, bars)
	sort.SliceStable(bb, func(i, j int) bool {
		return bb[i].Time.Before(bb[j].Time)
	})
	for i, b := range bb {
		if b.Instrument != "" && b.Instrument != instrument {
			return Series{}, fmt.Errorf("bar of '%s' in series of '%s': %w", b.Instrument, instrument, ErrInvalidData)
		}
		if i > 0 && b.Time.Equal(bb[i-1].Time) {
			return Series{}, fmt.Errorf("duplicate timestamp %v for '%s': %w", b.Time, instrument, ErrInvalidData)
		}
	}
	return Series{
		Instrument: instrument,
		bars:       bb,
	}, nil
}

// Len returns the number of bars.
func (s Series) Len() int {
	return len(s.bars)
}

// Bars returns a copy of the bars in time order.
func (s Series) Bars() []PriceBar {
	bb := make([]PriceBar, len(s.bars))
	copy(bb, s.bars)
	return bb
}

// Until returns the bars with a timestamp not after t.
func (s Series) Until(t time.Time) []PriceBar {
	i := sort.Search(len(s.bars), func(i int) bool {
		return s.bars[i].Time.After(t)
	})
	bb := make([]PriceBar, i)
	copy(bb, s.bars[:i])
	return bb
}

// Between returns the bars with from <= time < to.
func (s Series) Between(from, to time.Time) []PriceBar {
	i := sort.Search(len(s.bars), func(i int) bool {
		return !s.bars[i].Time.Before(from)
	})
	j := sort.Search(len(s.bars), func(j int) bool {
		return !s.bars[j].Time.Before(to)
	})
	if j < i {
		return []PriceBar{}
	}
	bb := make([]PriceBar, j-i)
	copy(bb, s.bars[i:j])
	return bb
}

// Closes extracts the close prices of the given bars.
func Closes(bars []PriceBar) []float64 {
	cc := make([]float64, len(bars))
	for i, b := range bars {
		cc[i] = b.Close
	}
	return cc
}
