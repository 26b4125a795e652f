package indicator

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drakos74/tradescore/internal/buffer"
	coinmath "github.com/drakos74/tradescore/internal/math"
	"github.com/drakos74/tradescore/internal/model"
	cointime "github.com/drakos74/tradescore/internal/time"
)

// Reading is an indicator value and the quality of the window it was computed on.
type Reading struct {
	Value float64
	// LowConfidence is set when the window could not be stitched to the previous session.
	LowConfidence bool
}

// Calculator computes intraday indicators with a lookback window that spans session boundaries.
type Calculator struct {
	loc *time.Location
}

// NewCalculator creates a new calculator for sessions in the given location.
func NewCalculator(loc *time.Location) *Calculator {
	return &Calculator{loc: loc}
}

// Window builds the lookback closes for the given as-of time.
// The tail of the previous session comes first, followed by the official close of that session
// if it was not covered by the intraday feed, followed by the current session up to asOf.
// It returns false for the stitched flag if there was no previous session to stitch to.
func (c *Calculator) Window(intraday model.Series, closes map[string]float64, asOf time.Time, period int) ([]float64, bool) {
	sessions := cointime.Sessions(intraday.Until(asOf), c.loc)
	day := cointime.Day(asOf, c.loc)
	i, ok := cointime.Index(sessions, day)
	if !ok {
		return []float64{}, false
	}
	current := model.Closes(sessions[i].Bars)
	if i == 0 {
		return current, false
	}
	prev := sessions[i-1]
	tail := buffer.TailOf(model.Closes(prev.Bars), period+1)
	if official, ok := closes[prev.Day]; ok && len(tail) > 0 && official > 0 && official != tail[len(tail)-1] {
		tail = append(tail, official)
	}
	window := make([]float64, 0, len(tail)+len(current))
	window = append(window, tail...)
	window = append(window, current...)
	return window, true
}

// RSIAt computes the session stitched rsi at the given time.
func (c *Calculator) RSIAt(intraday model.Series, closes map[string]float64, asOf time.Time, period int) (Reading, bool) {
	window, stitched := c.Window(intraday, closes, asOf, period)
	rsi, ok := coinmath.RSI(window, period)
	if !ok {
		return Reading{}, false
	}
	if !stitched {
		log.Debug().
			Str("instrument", string(intraday.Instrument)).
			Time("as-of", asOf).
			Int("window", len(window)).
			Msg("rsi without previous session")
	}
	return Reading{
		Value:         rsi,
		LowConfidence: !stitched,
	}, true
}

// DailyCloses maps each daily bar to its trading day.
func DailyCloses(daily model.Series, loc *time.Location) map[string]float64 {
	closes := make(map[string]float64, daily.Len())
	for _, b := range daily.Bars() {
		closes[cointime.Day(b.Time, loc)] = b.Close
	}
	return closes
}
