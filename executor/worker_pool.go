package executor

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool fans independent executions out across a bounded number of
// goroutines, preserving input order in its results slice. Built on
// errgroup, which gives first-error cancellation of the remaining jobs for
// free instead of a hand-rolled error slice.
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a pool with workerCount goroutines; 0 or negative
// defaults to runtime.NumCPU().
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &WorkerPool{workerCount: workerCount}
}

// ExecuteParallel runs operation once per element of inputs, at most
// workerCount at a time, and returns results in input order. If any
// operation returns an error, the group's context is cancelled for the
// remaining in-flight operations and the first error is returned with a nil
// results slice.
func ExecuteParallel[I any, O any](ctx context.Context, pool *WorkerPool, inputs []I, operation func(context.Context, I) (O, error)) ([]O, error) {
	results := make([]O, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pool.workerCount)

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			out, err := operation(gctx, input)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
