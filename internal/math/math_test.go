package math

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drakos74/tradescore/internal/model"
)

func TestFormat(t *testing.T) {

	type test struct {
		input  float64
		output string
	}

	tests := map[string]test{
		"0": {
			input:  0,
			output: "0.00",
		},
		"-1": {
			input:  -1,
			output: "-1.00",
		},
		"5": {
			input:  1.556,
			output: "1.56",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.output, Format(tt.input))
		})
	}
}

func TestRSI(t *testing.T) {

	type test struct {
		closes []float64
		period int
		rsi    float64
		ok     bool
	}

	tests := map[string]test{
		"fewer-deltas-than-period": {
			// deltas +2 -1 +3 -2 +1
			closes: []float64{10, 12, 11, 14, 12, 13},
			period: 14,
			rsi:    100 * 6.0 / 9.0,
			ok:     true,
		},
		"window-uses-last-period-deltas": {
			// deltas -5 +1 +1 , only the last two count
			closes: []float64{10, 5, 6, 7},
			period: 2,
			rsi:    100,
			ok:     true,
		},
		"no-movement": {
			closes: []float64{10, 10, 10},
			period: 9,
			rsi:    50,
			ok:     true,
		},
		"only-losses": {
			closes: []float64{10, 9, 8},
			period: 9,
			rsi:    0,
			ok:     true,
		},
		"single-close": {
			closes: []float64{10},
			period: 9,
		},
		"empty": {
			closes: []float64{},
			period: 9,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rsi, ok := RSI(tt.closes, tt.period)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.rsi, rsi, 1e-9)
		})
	}
}

func TestRSI_Range(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n := 2 + r.Intn(40)
		closes := make([]float64, n)
		price := 1000.0
		for j := range closes {
			price += r.NormFloat64() * 10
			closes[j] = price
		}
		rsi, ok := RSI(closes, 1+r.Intn(20))
		assert.True(t, ok)
		assert.GreaterOrEqual(t, rsi, 0.0)
		assert.LessOrEqual(t, rsi, 100.0)
	}
}

func TestTrueRange(t *testing.T) {
	bars := []model.PriceBar{
		{High: 105, Low: 95, Close: 100},
		// gap up : high - prev close dominates
		{High: 120, Low: 110, Close: 115},
		// gap down : prev close - low dominates
		{High: 100, Low: 90, Close: 95},
	}
	assert.Equal(t, []float64{10, 20, 25}, TrueRange(bars))
}

func TestATRPct(t *testing.T) {

	constant := func(n int) []model.PriceBar {
		bars := make([]model.PriceBar, n)
		for i := range bars {
			bars[i] = model.PriceBar{High: 102, Low: 98, Close: 100}
		}
		return bars
	}

	type test struct {
		bars   []model.PriceBar
		period int
		atr    float64
		ok     bool
	}

	tests := map[string]test{
		"constant-range": {
			bars:   constant(20),
			period: 14,
			atr:    4,
			ok:     true,
		},
		"exact-period": {
			bars:   constant(14),
			period: 14,
			atr:    4,
			ok:     true,
		},
		"not-enough-bars": {
			bars:   constant(5),
			period: 14,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			atr, ok := ATRPct(tt.bars, tt.period)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.atr, atr, 1e-9)
		})
	}
}

func TestSMA(t *testing.T) {
	sma, ok := SMA([]float64{1, 2, 3, 4, 5}, 5)
	assert.True(t, ok)
	assert.InDelta(t, 3.0, sma, 1e-9)

	sma, ok = SMA([]float64{1, 2, 3, 4, 5, 6}, 2)
	assert.True(t, ok)
	assert.InDelta(t, 5.5, sma, 1e-9)

	_, ok = SMA([]float64{1, 2}, 5)
	assert.False(t, ok)
}

func TestDeviationPct(t *testing.T) {
	dev, ok := DeviationPct([]float64{100, 100, 100, 100, 110}, 5)
	assert.True(t, ok)
	// avg 102 , last 110
	assert.InDelta(t, (110.0/102.0-1)*100, dev, 1e-9)
}

func TestVolumeRatio(t *testing.T) {
	ratio, ok := VolumeRatio([]float64{10, 10, 10, 30}, 3)
	assert.True(t, ok)
	assert.InDelta(t, 3.0, ratio, 1e-9)

	_, ok = VolumeRatio([]float64{10, 30}, 3)
	assert.False(t, ok)

	_, ok = VolumeRatio([]float64{0, 0, 0, 30}, 3)
	assert.False(t, ok)
}

func TestChangePct(t *testing.T) {
	c, ok := ChangePct(1000, 970)
	assert.True(t, ok)
	assert.InDelta(t, -3.0, c, 1e-9)

	_, ok = ChangePct(0, 970)
	assert.False(t, ok)
}
