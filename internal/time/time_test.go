package time

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakos74/tradescore/internal/model"
)

func TestClock(t *testing.T) {

	type test struct {
		input   string
		minutes int
		err     bool
	}

	tests := map[string]test{
		"morning": {
			input:   "09:05",
			minutes: 545,
		},
		"morning-close": {
			input:   "11:30",
			minutes: 690,
		},
		"close": {
			input:   "15:30",
			minutes: 930,
		},
		"invalid": {
			input: "25:99",
			err:   true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := ParseClock(tt.input)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.minutes, int(c))
			assert.Equal(t, tt.input, c.String())
		})
	}
}

func TestSessions(t *testing.T) {
	loc, err := Location("Asia/Tokyo")
	require.NoError(t, err)

	day1 := time.Date(2025, 11, 4, 9, 0, 0, 0, loc)
	day2 := time.Date(2025, 11, 5, 9, 0, 0, 0, loc)

	bars := []model.PriceBar{
		{Time: day1, Close: 1},
		{Time: day1.Add(5 * time.Minute), Close: 2},
		{Time: day2, Close: 3},
	}

	sessions := Sessions(bars, loc)
	require.Len(t, sessions, 2)
	assert.Equal(t, "2025-11-04", sessions[0].Day)
	assert.Len(t, sessions[0].Bars, 2)
	assert.Equal(t, "2025-11-05", sessions[1].Day)

	i, ok := Index(sessions, "2025-11-05")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = Index(sessions, "2025-11-06")
	assert.False(t, ok)

	assert.Equal(t, "Tuesday", Weekday(day1, loc))
}
