package model

import "time"

// Reason is an itemized rationale entry of a decision.
type Reason struct {
	Factor   Factor  `json:"factor,omitempty"`
	Delta    float64 `json:"delta"`
	Text     string  `json:"text"`
	Override bool    `json:"override,omitempty"`
}

// Decision is the immutable outcome of evaluating a rule set for an instrument on a date.
type Decision struct {
	Instrument  Instrument `json:"instrument"`
	Date        time.Time  `json:"date"`
	Version     string     `json:"version"`
	TotalScore  float64    `json:"total_score"`
	Action      Action     `json:"action"`
	Confidence  float64    `json:"confidence"`
	Rationale   []Reason   `json:"rationale"`
	Skipped     []Factor   `json:"skipped,omitempty"`
	HoldingDays int        `json:"holding_days"`
	Label       string     `json:"label,omitempty"`
}

// RationaleScore sums the deltas of the itemized rationale.
func (d Decision) RationaleScore() float64 {
	s := 0.0
	for _, r := range d.Rationale {
		s += r.Delta
	}
	return s
}

// Texts returns the rationale strings in order.
func (d Decision) Texts() []string {
	tt := make([]string, len(d.Rationale))
	for i, r := range d.Rationale {
		tt[i] = r.Text
	}
	return tt
}
