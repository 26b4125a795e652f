package model

import "time"

// Checkpoint is a point on the exit path with its sampled price.
type Checkpoint struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
	// Valid is false when no price could be sampled for the checkpoint.
	Valid bool `json:"valid"`
}

// ExitPath is the ordered checkpoint prices of one position.
type ExitPath struct {
	Instrument  Instrument         `json:"instrument"`
	Date        time.Time          `json:"date"`
	Side        Side               `json:"side"`
	Entry       float64            `json:"entry"`
	Lot         float64            `json:"lot"`
	Checkpoints []Checkpoint       `json:"checkpoints"`
	Attributes  map[string]float64 `json:"attributes,omitempty"`
	// Indicators holds indicator readings keyed by checkpoint label and indicator name.
	Indicators map[string]map[string]float64 `json:"indicators,omitempty"`
}

// Price returns the price at the given checkpoint.
func (p ExitPath) Price(label string) (float64, bool) {
	for _, c := range p.Checkpoints {
		if c.Label == label {
			return c.Price, c.Valid
		}
	}
	return 0, false
}

// Payoff is the side adjusted profit of exiting at the given price.
func (p ExitPath) Payoff(price float64) float64 {
	lot := p.Lot
	if lot == 0 {
		lot = 1
	}
	return p.Side.Sign() * (price - p.Entry) * lot
}
