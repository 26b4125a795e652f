package concurrent

import (
	"context"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a single unit of work.
type Result[T any] struct {
	Value T
	Err   error
}

// Map runs fn over all inputs with at most workers concurrent calls.
// Results are returned in the order of the inputs.
// The error of a unit is kept in its result and does not affect the other units,
// only a cancelled context stops the whole run.
func Map[I, O any](ctx context.Context, workers int, inputs []I, fn func(ctx context.Context, in I) (O, error)) ([]Result[O], error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result[O], len(inputs))
	counter := NewCounter(len(inputs))
	step := len(inputs) / 10
	if step == 0 {
		step = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(gctx, in)
			results[i] = Result[O]{Value: v, Err: err}
			if n := counter.Track(err); n%step == 0 {
				log.Debug().
					Int("done", n).
					Int("failed", counter.Failed()).
					Int("total", counter.Total()).
					Msg("progress")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
