package stoploss

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakos74/tradescore/internal/model"
)

func TestSimulateSide(t *testing.T) {

	type test struct {
		side      model.Side
		entry     float64
		adverse   float64
		exit      float64
		pct       float64
		stop      float64
		triggered bool
		ret       float64
		pnl       float64
	}

	tests := map[string]test{
		"long-triggered": {
			side:      model.Long,
			entry:     1000,
			adverse:   965,
			exit:      1010,
			pct:       -3,
			stop:      970,
			triggered: true,
			ret:       -3,
			pnl:       -30,
		},
		"long-not-triggered": {
			side:    model.Long,
			entry:   1000,
			adverse: 975,
			exit:    1010,
			pct:     -3,
			stop:    970,
			ret:     1,
			pnl:     10,
		},
		"long-close-to-the-stop": {
			side:    model.Long,
			entry:   1000,
			adverse: 970.5,
			exit:    990,
			pct:     -3,
			stop:    970,
			ret:     -1,
			pnl:     -10,
		},
		"short-triggered": {
			side:      model.Short,
			entry:     1000,
			adverse:   1040,
			exit:      990,
			pct:       -3,
			stop:      1030,
			triggered: true,
			ret:       -3,
			pnl:       -30,
		},
		"short-not-triggered": {
			side:    model.Short,
			entry:   1000,
			adverse: 1020,
			exit:    980,
			pct:     -3,
			stop:    1030,
			ret:     2,
			pnl:     20,
		},
		"flat": {
			side:    model.Flat,
			entry:   1000,
			adverse: 900,
			exit:    1100,
			pct:     -3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			o := SimulateSide(tt.side, tt.entry, tt.adverse, tt.exit, tt.pct)
			assert.InDelta(t, tt.stop, o.StopPrice, 1e-9)
			assert.Equal(t, tt.triggered, o.Triggered)
			assert.InDelta(t, tt.ret, o.ReturnPct, 1e-9)
			assert.InDelta(t, tt.pnl, o.PnL, 1e-9)
		})
	}
}

func TestPosition_Simulate(t *testing.T) {
	p := Position{Instrument: "7203", Side: model.Long, Entry: 1000, Low: 965, High: 1015, Exit: 1010, Lot: 100}
	require.NoError(t, p.Validate())

	r := p.Simulate(-3)
	assert.True(t, r.Triggered)
	assert.Equal(t, -3.0, r.RealizedReturnPct)
	assert.InDelta(t, -3000, r.RealizedPnL, 1e-9)
	assert.InDelta(t, 1000, r.NoStopPnL, 1e-9)
	assert.InDelta(t, -4000, r.OpportunityLoss, 1e-9)

	// stop protects a losing position : no opportunity loss
	p.Exit = 950
	r = p.Simulate(-3)
	assert.True(t, r.Triggered)
	assert.InDelta(t, -5000, r.NoStopPnL, 1e-9)
	assert.Equal(t, 0.0, r.OpportunityLoss)

	// not triggered : no opportunity loss
	r = p.Simulate(-5)
	assert.False(t, r.Triggered)
	assert.Equal(t, 0.0, r.OpportunityLoss)
	assert.InDelta(t, r.NoStopPnL, r.RealizedPnL, 1e-9)
}

func TestPosition_Validate(t *testing.T) {

	type test struct {
		position Position
		err      error
	}

	tests := map[string]test{
		"flat": {
			position: Position{Entry: 1000, Low: 990, High: 1010, Exit: 1000},
			err:      model.ErrInvalidData,
		},
		"no-entry": {
			position: Position{Side: model.Long, Low: 990, High: 1010, Exit: 1000},
			err:      model.ErrMissingData,
		},
		"inverted-range": {
			position: Position{Side: model.Short, Entry: 1000, Low: 1010, High: 990, Exit: 1000},
			err:      model.ErrInvalidData,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, tt.position.Validate(), tt.err)
		})
	}
}

func randomPositions(r *rand.Rand, n int) []Position {
	positions := make([]Position, n)
	for i := range positions {
		entry := 500 + r.Float64()*5000
		exit := entry * (1 + r.NormFloat64()*0.03)
		low := entry * (1 - r.Float64()*0.08)
		high := entry * (1 + r.Float64()*0.08)
		if exit < low {
			low = exit
		}
		if exit > high {
			high = exit
		}
		side := model.Long
		if r.Intn(2) == 0 {
			side = model.Short
		}
		positions[i] = Position{Instrument: "X", Side: side, Entry: entry, Low: low, High: high, Exit: exit, Lot: 100}
	}
	return positions
}

func TestSimulate_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for _, p := range randomPositions(r, 1000) {
		for _, pct := range []float64{-1, -2, -3, -5} {
			res := p.Simulate(pct)
			assert.LessOrEqual(t, res.OpportunityLoss, 0.0)
			if res.Triggered {
				assert.Equal(t, pct, res.RealizedReturnPct)
			} else {
				assert.Equal(t, 0.0, res.OpportunityLoss)
				assert.InDelta(t, res.NoStopPnL, res.RealizedPnL, 1e-6)
			}
			if res.NoStopPnL <= 0 {
				assert.Equal(t, 0.0, res.OpportunityLoss)
			}
		}
	}
}

func TestTiers_Validate(t *testing.T) {

	type test struct {
		tiers Tiers
		ok    bool
	}

	tests := map[string]test{
		"valid":      {tiers: Tiers{-1, -2, -3, -5}, ok: true},
		"empty":      {tiers: Tiers{}},
		"positive":   {tiers: Tiers{-1, 2}},
		"zero":       {tiers: Tiers{0}},
		"unordered":  {tiers: Tiers{-1, -3, -2}},
		"duplicated": {tiers: Tiers{-1, -1}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.tiers.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, model.ErrInvalidConfig)
			}
		})
	}
}

func TestSweep(t *testing.T) {
	positions := []Position{
		// triggered at -3 with a positive close : opportunity loss
		{Instrument: "A", Side: model.Long, Entry: 1000, Low: 965, High: 1015, Exit: 1010},
		// triggered at -3 and at -5 , saves the loss
		{Instrument: "B", Side: model.Long, Entry: 1000, Low: 900, High: 1000, Exit: 920},
		// never triggered
		{Instrument: "C", Side: model.Short, Entry: 1000, Low: 980, High: 1010, Exit: 990},
		// draw
		{Instrument: "D", Side: model.Long, Entry: 1000, Low: 990, High: 1010, Exit: 1000},
	}

	results, summaries, err := Sweep(positions, Tiers{-3, -5})
	require.NoError(t, err)
	require.Equal(t, 8, len(results))
	require.Equal(t, 2, len(summaries))

	s := summaries[0]
	assert.Equal(t, -3.0, s.StopLossPct)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 2, s.Triggered)
	assert.InDelta(t, 50, s.TriggerRate, 1e-9)
	// -30 -30 +10 0
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Draws)
	assert.Equal(t, 2, s.Losses)
	assert.InDelta(t, 100.0/3.0, s.WinRate, 1e-9)
	assert.InDelta(t, -50, s.TotalPnL, 1e-9)
	assert.InDelta(t, -12.5, s.AvgPnL, 1e-9)
	// +10 -80 +10 0
	assert.InDelta(t, -60, s.BaselinePnL, 1e-9)
	assert.InDelta(t, 10, s.PnLDelta, 1e-9)
	assert.InDelta(t, 200.0/3.0, s.BaselineWinRate, 1e-9)
	assert.Equal(t, 1, s.OpportunityCases)
	assert.InDelta(t, -40, s.OpportunityLoss, 1e-9)
	assert.InDelta(t, -40, s.AvgOpportunityLoss, 1e-9)
	// (-40 + 50) / 2
	assert.InDelta(t, 5, s.AvgLossReduction, 1e-9)

	s = summaries[1]
	assert.Equal(t, 1, s.Triggered)
	// +10 -50 +10 0
	assert.InDelta(t, -30, s.TotalPnL, 1e-9)
	assert.InDelta(t, 30, s.PnLDelta, 1e-9)
	assert.Equal(t, 0, s.OpportunityCases)

	assert.Equal(t, summaries, Summarize(results, Tiers{-3, -5}))

	_, _, err = Sweep(positions, Tiers{})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}
