package concurrent

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {

	type test struct {
		workers int
		inputs  []int
	}

	tests := map[string]test{
		"single-worker": {
			workers: 1,
			inputs:  []int{1, 2, 3, 4, 5},
		},
		"many-workers": {
			workers: 8,
			inputs:  []int{5, 4, 3, 2, 1, 0, 9, 8, 7, 6},
		},
		"default-workers": {
			inputs: []int{1, 2, 3},
		},
		"empty": {
			workers: 2,
			inputs:  []int{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			results, err := Map(context.Background(), tt.workers, tt.inputs, func(ctx context.Context, in int) (string, error) {
				time.Sleep(time.Duration(in) * time.Millisecond)
				return fmt.Sprintf("%d", in*in), nil
			})
			require.NoError(t, err)
			require.Equal(t, len(tt.inputs), len(results))
			for i, in := range tt.inputs {
				assert.NoError(t, results[i].Err)
				assert.Equal(t, fmt.Sprintf("%d", in*in), results[i].Value)
			}
		})
	}
}

func TestMap_UnitErrors(t *testing.T) {
	fail := errors.New("no bars")
	results, err := Map(context.Background(), 3, []int{1, 2, 3, 4, 5, 6}, func(ctx context.Context, in int) (int, error) {
		if in%2 == 0 {
			return 0, fail
		}
		return in, nil
	})
	require.NoError(t, err)
	for i, r := range results {
		if (i+1)%2 == 0 {
			assert.ErrorIs(t, r.Err, fail)
		} else {
			assert.NoError(t, r.Err)
			assert.Equal(t, i+1, r.Value)
		}
	}
}

func TestMap_Limit(t *testing.T) {
	var running, max int64
	inputs := make([]int, 20)
	_, err := Map(context.Background(), 3, inputs, func(ctx context.Context, in int) (int, error) {
		n := atomic.AddInt64(&running, 1)
		for {
			m := atomic.LoadInt64(&max)
			if n <= m || atomic.CompareAndSwapInt64(&max, m, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt64(&running, -1)
		return in, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt64(&max), int64(3))
}

func TestMap_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int64
	inputs := make([]int, 100)
	_, err := Map(ctx, 1, inputs, func(ctx context.Context, in int) (int, error) {
		if atomic.AddInt64(&calls, 1) == 5 {
			cancel()
		}
		return in, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, atomic.LoadInt64(&calls), int64(100))
}

func TestCounter(t *testing.T) {
	c := NewCounter(3)
	assert.Equal(t, 1, c.Track(nil))
	assert.Equal(t, 2, c.Track(errors.New("fail")))
	assert.Equal(t, 2, c.Get())
	assert.Equal(t, 1, c.Failed())
	assert.Equal(t, 3, c.Total())
}
