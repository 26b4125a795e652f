package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_Push(t *testing.T) {

	type test struct {
		input   []float64
		count   int
		sum     float64
		avg     float64
		wins    int
		draws   int
		losses  int
		winRate float64
		// win rate with draws in the denominator
		rawWinRate float64
	}

	tests := map[string]test{
		"empty": {
			input: []float64{},
		},
		"mixed": {
			input:      []float64{10, -5, 0, 20},
			count:      4,
			sum:        25,
			avg:        6.25,
			wins:       2,
			draws:      1,
			losses:     1,
			winRate:    100 * 2.0 / 3.0,
			rawWinRate: 50,
		},
		"all-losses": {
			input:  []float64{-1, -2, -3},
			count:  3,
			sum:    -6,
			avg:    -2,
			losses: 3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewStats()
			for _, v := range tt.input {
				s.Push(v)
			}
			assert.Equal(t, tt.count, s.Count())
			assert.InDelta(t, tt.sum, s.Sum(), 1e-9)
			assert.InDelta(t, tt.avg, s.Avg(), 1e-9)
			assert.Equal(t, tt.wins, s.Wins())
			assert.Equal(t, tt.draws, s.Draws())
			assert.Equal(t, tt.losses, s.Losses())
			assert.InDelta(t, tt.winRate, s.WinRate(true), 1e-9)
			assert.InDelta(t, tt.rawWinRate, s.WinRate(false), 1e-9)
		})
	}
}

func TestStats_MinMax(t *testing.T) {
	s := NewStats()
	assert.Equal(t, 0.0, s.Min())
	assert.Equal(t, 0.0, s.Max())
	for _, v := range []float64{3, -7, 12} {
		s.Push(v)
	}
	assert.Equal(t, -7.0, s.Min())
	assert.Equal(t, 12.0, s.Max())
	assert.True(t, s.StDev() > 0)
}
