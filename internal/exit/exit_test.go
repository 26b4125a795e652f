package exit

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakos74/tradescore/internal/model"
)

var labels = []string{"10:00", "11:30", "14:00", "close"}

func path(side model.Side, entry float64, date time.Time, prices ...float64) model.ExitPath {
	checkpoints := make([]model.Checkpoint, len(labels))
	for i, l := range labels {
		checkpoints[i] = model.Checkpoint{Label: l}
		if i < len(prices) && prices[i] > 0 {
			checkpoints[i].Price = prices[i]
			checkpoints[i].Valid = true
		}
	}
	return model.ExitPath{
		Instrument:  "7203",
		Date:        date,
		Side:        side,
		Entry:       entry,
		Lot:         1,
		Checkpoints: checkpoints,
		Attributes:  map[string]float64{"entry": entry},
		Indicators:  map[string]map[string]float64{},
	}
}

// 2025-11-04 is a Tuesday.
var tuesday = time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC)

func TestOptimizer_Best(t *testing.T) {

	type test struct {
		path  model.ExitPath
		from  string
		best  string
		pay   float64
		count int
		ok    bool
	}

	tests := map[string]test{
		"hold-to-close": {
			path:  path(model.Long, 1000, tuesday, 1010, 1020, 1015, 1030),
			from:  "10:00",
			best:  "close",
			pay:   30,
			count: 4,
			ok:    true,
		},
		"exit-now": {
			path:  path(model.Long, 1000, tuesday, 1010, 1020, 1015, 1030),
			from:  "close",
			best:  "close",
			pay:   30,
			count: 1,
			ok:    true,
		},
		"short": {
			path:  path(model.Short, 1000, tuesday, 1010, 980, 990, 1000),
			from:  "10:00",
			best:  "11:30",
			pay:   20,
			count: 4,
			ok:    true,
		},
		"tie-goes-to-earliest": {
			path:  path(model.Long, 1000, tuesday, 1010, 1020, 1020, 1020),
			from:  "10:00",
			best:  "11:30",
			pay:   20,
			count: 4,
			ok:    true,
		},
		"missing-prices-are-skipped": {
			path:  path(model.Long, 1000, tuesday, 1010, 0, 1040, 0),
			from:  "10:00",
			best:  "14:00",
			pay:   40,
			count: 2,
			ok:    true,
		},
		"checkpoint-without-price": {
			path: path(model.Long, 1000, tuesday, 0, 1020),
			from: "10:00",
		},
		"unknown-checkpoint": {
			path: path(model.Long, 1000, tuesday, 1010),
			from: "09:00",
		},
	}

	o := NewOptimizer(0)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			choice, ok := o.Best(tt.path, tt.from)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.best, choice.Best.Label)
			assert.InDelta(t, tt.pay, choice.Best.Payoff, 1e-9)
			assert.Equal(t, tt.count, len(choice.Options))
			assert.Equal(t, tt.from, choice.Options[0].Label)
		})
	}
}

func TestOptimizer_BestProperties(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	o := NewOptimizer(0)
	for i := 0; i < 500; i++ {
		prices := make([]float64, len(labels))
		for j := range prices {
			// coarse prices to produce ties
			prices[j] = 1000 + float64(r.Intn(5))*10
		}
		side := model.Long
		if r.Intn(2) == 0 {
			side = model.Short
		}
		p := path(side, 1000, tuesday, prices...)
		for _, from := range labels {
			choice, ok := o.Best(p, from)
			require.True(t, ok)
			// best exit is one of the options and none is strictly better
			first := -1
			for k, opt := range choice.Options {
				assert.LessOrEqual(t, opt.Payoff, choice.Best.Payoff)
				if first < 0 && opt.Payoff == choice.Best.Payoff {
					first = k
				}
			}
			require.GreaterOrEqual(t, first, 0)
			assert.Equal(t, choice.Options[first].Label, choice.Best.Label)
		}
	}
}

func TestOptimizer_Analyze(t *testing.T) {
	wednesday := tuesday.AddDate(0, 0, 1)
	paths := []model.ExitPath{
		path(model.Long, 1000, tuesday, 1010, 1020, 1015, 1030),
		path(model.Long, 1000, tuesday, 990, 980, 1000, 970),
		path(model.Short, 3000, wednesday, 2990, 3010, 2950, 2980),
	}
	paths[0].Indicators["10:00"] = map[string]float64{"rsi": 75}
	paths[1].Indicators["10:00"] = map[string]float64{"rsi": 25}

	o := NewOptimizer(1,
		All{},
		NewWeekday(time.UTC),
		NewBracket("price", "entry", 2000),
		NewIndicatorBracket("rsi", "rsi", 30, 70),
	)
	rows := o.Analyze(paths)

	find := func(segmenter, segment, checkpoint string) Row {
		for _, row := range rows {
			if row.Segmenter == segmenter && row.Segment == segment && row.Checkpoint == checkpoint {
				return row
			}
		}
		require.Fail(t, "row not found", "%s %s %s", segmenter, segment, checkpoint)
		return Row{}
	}

	all := find("all", "all", "10:00")
	assert.Equal(t, 3, all.Count)
	require.Equal(t, 4, len(all.Options))
	// 10:00 payoffs : 10 -10 10
	assert.Equal(t, "10:00", all.Options[0].Label)
	assert.InDelta(t, 10, all.Options[0].Total, 1e-9)
	assert.InDelta(t, 10, all.Options[0].Median, 1e-9)
	assert.InDelta(t, 200.0/3.0, all.Options[0].WinRate, 1e-9)
	// 14:00 payoffs : 15 0 50
	assert.Equal(t, "14:00", all.BestExit)
	assert.InDelta(t, 65, all.BestTotal, 1e-9)
	// best per path : close 14:00 14:00
	chosen := 0
	for _, opt := range all.Options {
		chosen += opt.Chosen
	}
	assert.Equal(t, 3, chosen)

	tue := find("weekday", "Tuesday", "10:00")
	assert.Equal(t, 2, tue.Count)
	wed := find("weekday", "Wednesday", "close")
	assert.Equal(t, 1, wed.Count)
	assert.Equal(t, "close", wed.BestExit)
	assert.InDelta(t, 20, wed.BestTotal, 1e-9)

	high := find("price", ">=2000", "11:30")
	assert.Equal(t, 1, high.Count)
	low := find("price", "<2000", "11:30")
	assert.Equal(t, 2, low.Count)

	hot := find("rsi", ">=70", "10:00")
	assert.Equal(t, 1, hot.Count)
	assert.Equal(t, "close", hot.BestExit)
	cold := find("rsi", "<30", "10:00")
	assert.Equal(t, "14:00", cold.BestExit)
	for _, row := range rows {
		// the rsi is only known at 10:00
		if row.Segmenter == "rsi" {
			assert.Equal(t, "10:00", row.Checkpoint)
		}
	}

	// rows are sorted and analysis is repeatable
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i-1].Segmenter, rows[i].Segmenter)
	}
	assert.Equal(t, rows, o.Analyze(paths))
	assert.Equal(t, 1010.0, paths[0].Checkpoints[0].Price)
}

func TestOptimizer_MinCount(t *testing.T) {
	paths := []model.ExitPath{
		path(model.Long, 1000, tuesday, 1010, 1020, 1015, 1030),
		path(model.Long, 1000, tuesday.AddDate(0, 0, 1), 990, 980, 1000, 970),
	}
	rows := NewOptimizer(2, All{}, NewWeekday(time.UTC)).Analyze(paths)
	for _, row := range rows {
		assert.Equal(t, "all", row.Segmenter)
	}
	assert.Equal(t, 4, len(rows))
	assert.Equal(t, []Row{}, NewOptimizer(0).Analyze(nil))
}

func TestNewSegmenter(t *testing.T) {

	type test struct {
		cfg  SegmentConfig
		name string
		err  bool
	}

	tests := map[string]test{
		"all":       {cfg: SegmentConfig{Kind: AllSegment}, name: "all"},
		"weekday":   {cfg: SegmentConfig{Kind: WeekdaySegment}, name: "weekday"},
		"attribute": {cfg: SegmentConfig{Name: "volatility", Kind: AttributeSegment, Key: "atr_pct", Edges: []float64{3, 8}}, name: "volatility"},
		"indicator": {cfg: SegmentConfig{Kind: IndicatorSegment, Key: "rsi", Edges: []float64{30, 70}}, name: "indicator"},
		"no-key":    {cfg: SegmentConfig{Kind: AttributeSegment}, err: true},
		"bad-edges": {cfg: SegmentConfig{Kind: AttributeSegment, Key: "x", Edges: []float64{3, 1}}, err: true},
		"unknown":   {cfg: SegmentConfig{Kind: "month"}, err: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := NewSegmenter(tt.cfg, time.UTC)
			if tt.err {
				assert.ErrorIs(t, err, model.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, s.Name())
		})
	}
}
