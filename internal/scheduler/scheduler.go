// Package scheduler fans work for a list of names out over a bounded number
// of goroutines and returns results in input order.
package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Func produces the result for one name.
type Func[T any] func(ctx context.Context, name string) (T, error)

// Run calls fn once per name with at most maxConcurrency calls in flight.
// results[i] always belongs to names[i], whatever order calls complete in.
// With a limit of one or a single name the calls run sequentially on the
// caller's goroutine. The first error cancels the remaining calls and is
// returned.
func Run[T any](ctx context.Context, names []string, maxConcurrency int, fn Func[T]) ([]T, error) {
	results := make([]T, len(names))
	if maxConcurrency <= 1 || len(names) <= 1 {
		for i, name := range names {
			res, err := fn(ctx, name)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	sem := semaphore.NewWeighted(int64(maxConcurrency))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		if err := sem.Acquire(gctx, 1); err != nil {
			// Cancelled; Wait reports the cause.
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			res, err := fn(gctx, name)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
