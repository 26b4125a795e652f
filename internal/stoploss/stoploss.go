package stoploss

import (
	"fmt"
	"time"

	"github.com/drakos74/tradescore/internal/model"
)

// Outcome is the result of a single position under a stop-loss.
type Outcome struct {
	StopPrice float64
	Triggered bool
	// ReturnPct is relative to the entry, positive when favorable.
	ReturnPct float64
	PnL       float64
}

// Simulate runs a long position against a stop-loss of pct percent (e.g. -3).
func Simulate(entry, low, exit, pct float64) Outcome {
	return SimulateSide(model.Long, entry, low, exit, pct)
}

// SimulateSide runs a position against a stop-loss of pct percent.
// adverse is the worst price of the period, the low for a long and the high for a short position.
// If the stop is hit the position is closed at the stop price, otherwise at exit.
func SimulateSide(side model.Side, entry, adverse, exit, pct float64) Outcome {
	if entry <= 0 || side == model.Flat {
		return Outcome{}
	}
	sign := side.Sign()
	stop := entry * (1 + sign*pct/100)
	triggered := false
	switch side {
	case model.Long:
		triggered = adverse < stop
	case model.Short:
		triggered = adverse > stop
	}
	if triggered {
		return Outcome{
			StopPrice: stop,
			Triggered: true,
			ReturnPct: pct,
			PnL:       sign * (stop - entry),
		}
	}
	return Outcome{
		StopPrice: stop,
		ReturnPct: sign * (exit/entry - 1) * 100,
		PnL:       sign * (exit - entry),
	}
}

// Position is an entered position with the price range of its holding period.
type Position struct {
	Instrument model.Instrument `json:"instrument"`
	Date       time.Time        `json:"date"`
	Side       model.Side       `json:"side"`
	Entry      float64          `json:"entry"`
	Low        float64          `json:"low"`
	High       float64          `json:"high"`
	Exit       float64          `json:"exit"`
	Lot        float64          `json:"lot"`
}

func (p Position) lot() float64 {
	if p.Lot <= 0 {
		return 1
	}
	return p.Lot
}

// adverse returns the worst price for the side of the position.
func (p Position) adverse() float64 {
	if p.Side == model.Short {
		return p.High
	}
	return p.Low
}

// Validate checks that the position can be simulated.
func (p Position) Validate() error {
	if p.Side == model.Flat {
		return fmt.Errorf("flat position for '%s': %w", p.Instrument, model.ErrInvalidData)
	}
	if p.Entry <= 0 || p.Exit <= 0 {
		return fmt.Errorf("no prices for '%s' entry %v exit %v: %w", p.Instrument, p.Entry, p.Exit, model.ErrMissingData)
	}
	if p.Low <= 0 || p.High < p.Low {
		return fmt.Errorf("invalid range for '%s' low %v high %v: %w", p.Instrument, p.Low, p.High, model.ErrInvalidData)
	}
	return nil
}

// Simulate runs the position against the stop-loss tier.
// The opportunity loss is the pnl given up by the stop, only when the position would have been profitable without it.
func (p Position) Simulate(pct float64) model.SimulationResult {
	lot := p.lot()
	outcome := SimulateSide(p.Side, p.Entry, p.adverse(), p.Exit, pct)
	noStop := p.Side.Sign() * (p.Exit - p.Entry) * lot
	realized := outcome.PnL * lot
	opportunity := 0.0
	if outcome.Triggered && noStop > 0 {
		opportunity = realized - noStop
	}
	return model.SimulationResult{
		Instrument:        p.Instrument,
		Date:              p.Date,
		Side:              p.Side,
		EntryPrice:        p.Entry,
		StopLossPct:       pct,
		StopPrice:         outcome.StopPrice,
		Triggered:         outcome.Triggered,
		RealizedReturnPct: outcome.ReturnPct,
		RealizedPnL:       realized,
		NoStopPnL:         noStop,
		OpportunityLoss:   opportunity,
	}
}

// Tiers are the stop-loss percentages to evaluate, from the tightest to the loosest.
type Tiers []float64

// Validate checks that the tiers are negative and strictly decreasing.
func (t Tiers) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("no stop-loss tiers: %w", model.ErrInvalidConfig)
	}
	for i, pct := range t {
		if pct >= 0 {
			return fmt.Errorf("stop-loss tier %v must be negative: %w", pct, model.ErrInvalidConfig)
		}
		if i > 0 && pct >= t[i-1] {
			return fmt.Errorf("stop-loss tiers must be strictly decreasing at %v: %w", pct, model.ErrInvalidConfig)
		}
	}
	return nil
}
