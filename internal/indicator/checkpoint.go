package indicator

import (
	"fmt"
	"time"

	"github.com/drakos74/tradescore/internal/model"
	cointime "github.com/drakos74/tradescore/internal/time"
)

// Kind is the way a checkpoint price is sampled.
type Kind string

const (
	// ClockKind samples the close of the intraday bar at a wall clock time.
	ClockKind Kind = "clock"
	// CloseKind samples the official daily close.
	CloseKind Kind = "close"
	// DayKind samples the daily close a number of trading days later.
	DayKind Kind = "day"
)

const (
	splitUpper = 1.5
	splitLower = 0.7
)

// Checkpoint defines how to sample the price of a point on the exit path.
type Checkpoint struct {
	Label string `yaml:"label" json:"label"`
	Kind  Kind   `yaml:"kind" json:"kind"`
	// Clock is the time stamp of the bar to sample.
	Clock cointime.Clock `yaml:"clock,omitempty" json:"clock,omitempty"`
	// From widens the sampling slot to bars stamped in [From, Clock].
	From *cointime.Clock `yaml:"from,omitempty" json:"from,omitempty"`
	// Fallback is the clock of the next sub-session, whose first open is used if the slot is empty.
	Fallback *cointime.Clock `yaml:"fallback,omitempty" json:"fallback,omitempty"`
	// Days is the trading day offset for DayKind checkpoints.
	Days int `yaml:"days,omitempty" json:"days,omitempty"`
}

// Validate checks the checkpoint definition.
func (c Checkpoint) Validate() error {
	if c.Label == "" {
		return fmt.Errorf("checkpoint without label: %w", model.ErrInvalidConfig)
	}
	switch c.Kind {
	case ClockKind:
		if c.From != nil && *c.From > c.Clock {
			return fmt.Errorf("checkpoint '%s' slot starts after %v: %w", c.Label, c.Clock, model.ErrInvalidConfig)
		}
	case CloseKind:
	case DayKind:
		if c.Days <= 0 {
			return fmt.Errorf("checkpoint '%s' needs a positive day offset: %w", c.Label, model.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("checkpoint '%s' has unknown kind '%s': %w", c.Label, c.Kind, model.ErrInvalidConfig)
	}
	return nil
}

// Resolver samples the checkpoint prices of a trading day.
type Resolver struct {
	loc         *time.Location
	checkpoints []Checkpoint
	calc        *Calculator
	rsiPeriod   int
}

// NewResolver creates a new resolver for the given canonical checkpoint order.
func NewResolver(loc *time.Location, checkpoints []Checkpoint) (*Resolver, error) {
	labels := make(map[string]struct{})
	for _, c := range checkpoints {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, ok := labels[c.Label]; ok {
			return nil, fmt.Errorf("duplicate checkpoint '%s': %w", c.Label, model.ErrInvalidConfig)
		}
		labels[c.Label] = struct{}{}
	}
	return &Resolver{
		loc:         loc,
		checkpoints: checkpoints,
	}, nil
}

// WithRSI records the stitched rsi at each clock checkpoint.
func (r *Resolver) WithRSI(period int) *Resolver {
	r.calc = NewCalculator(r.loc)
	r.rsiPeriod = period
	return r
}

// DayPrices is the price data of a single trading day, split adjusted.
type DayPrices struct {
	Key   string
	Open  float64
	Close float64
	Low   float64
	High  float64
	// Factor is the split adjustment applied to the intraday prices.
	Factor   float64
	Intraday []model.PriceBar
}

// Day collects the price data of the given trading day.
func (r *Resolver) Day(daily, intraday model.Series, day string) (DayPrices, error) {
	d := DayPrices{Key: day, Factor: 1}
	for _, b := range daily.Bars() {
		if cointime.Day(b.Time, r.loc) == day {
			d.Open = b.Open
			d.Close = b.Close
			d.Low = b.Low
			d.High = b.High
			break
		}
	}
	start, err := cointime.ParseDay(day, r.loc)
	if err != nil {
		return d, err
	}
	bars := intraday.Between(start, start.AddDate(0, 0, 1))
	if len(bars) > 0 {
		last := bars[len(bars)-1].Close
		if d.Close > 0 && last > 0 {
			if ratio := d.Close / last; ratio > splitUpper || ratio < splitLower {
				d.Factor = ratio
			}
		}
		d.Intraday = make([]model.PriceBar, len(bars))
		for i, b := range bars {
			b.Open *= d.Factor
			b.High *= d.Factor
			b.Low *= d.Factor
			b.Close *= d.Factor
			d.Intraday[i] = b
		}
		low, high := d.Intraday[0].Low, d.Intraday[0].High
		for _, b := range d.Intraday {
			if b.Low < low {
				low = b.Low
			}
			if b.High > high {
				high = b.High
			}
		}
		if d.Low == 0 {
			d.Low = low
		}
		if d.High == 0 {
			d.High = high
		}
		if d.Open == 0 {
			d.Open = d.Intraday[0].Open
		}
	}
	if d.Open <= 0 {
		return d, fmt.Errorf("no entry price for '%s' on %s: %w", daily.Instrument, day, model.ErrMissingData)
	}
	return d, nil
}

// Price samples the price of a clock checkpoint from the intraday bars of one day.
func (r *Resolver) Price(bars []model.PriceBar, c Checkpoint) (float64, bool) {
	from := c.Clock
	if c.From != nil {
		from = *c.From
	}
	price, ok := 0.0, false
	for _, b := range bars {
		clock := cointime.ClockOf(b.Time.In(r.loc))
		if clock >= from && clock <= c.Clock {
			price, ok = b.Close, true
		}
	}
	if ok || c.Fallback == nil {
		return price, ok
	}
	for _, b := range bars {
		if cointime.ClockOf(b.Time.In(r.loc)) >= *c.Fallback {
			return b.Open, true
		}
	}
	return 0, false
}

// Path builds the exit path of a position entered at the open of the given day.
func (r *Resolver) Path(daily, intraday model.Series, day string, side model.Side, lot float64) (model.ExitPath, error) {
	d, err := r.Day(daily, intraday, day)
	if err != nil {
		return model.ExitPath{}, err
	}
	date, _ := cointime.ParseDay(day, r.loc)
	path := model.ExitPath{
		Instrument:  daily.Instrument,
		Date:        date,
		Side:        side,
		Entry:       d.Open,
		Lot:         lot,
		Checkpoints: make([]model.Checkpoint, len(r.checkpoints)),
		Attributes:  map[string]float64{},
		Indicators:  map[string]map[string]float64{},
	}
	closes := DailyCloses(daily, r.loc)
	for i, c := range r.checkpoints {
		cp := model.Checkpoint{Label: c.Label}
		switch c.Kind {
		case ClockKind:
			cp.Price, cp.Valid = r.Price(d.Intraday, c)
			if r.calc != nil {
				at := c.Clock.On(date, r.loc)
				if rsi, ok := r.calc.RSIAt(intraday, closes, at, r.rsiPeriod); ok {
					path.Indicators[c.Label] = map[string]float64{string(model.RSI): rsi.Value}
				}
			}
		case CloseKind:
			cp.Price, cp.Valid = d.Close, d.Close > 0
		case DayKind:
			cp.Price, cp.Valid = r.later(daily, day, c.Days)
		}
		path.Checkpoints[i] = cp
	}
	return path, nil
}

// later returns the daily close n trading days after the given day.
func (r *Resolver) later(daily model.Series, day string, n int) (float64, bool) {
	sessions := cointime.Sessions(daily.Bars(), r.loc)
	i, ok := cointime.Index(sessions, day)
	if !ok {
		return 0, false
	}
	j := i + n
	if j >= len(sessions) {
		return 0, false
	}
	bars := sessions[j].Bars
	return bars[len(bars)-1].Close, true
}

// Extremes returns the lowest and highest price from the given day until the daily session n trading days later.
// The day itself uses the split adjusted intraday range.
func (r *Resolver) Extremes(daily model.Series, d DayPrices, n int) (float64, float64) {
	low, high := d.Low, d.High
	if n <= 0 {
		return low, high
	}
	sessions := cointime.Sessions(daily.Bars(), r.loc)
	i, ok := cointime.Index(sessions, d.Key)
	if !ok {
		return low, high
	}
	for j := i + 1; j <= i+n && j < len(sessions); j++ {
		for _, b := range sessions[j].Bars {
			if b.Low > 0 && b.Low < low {
				low = b.Low
			}
			if b.High > high {
				high = b.High
			}
		}
	}
	return low, high
}
