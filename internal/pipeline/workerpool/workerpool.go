// Package workerpool provides the fan-out/fan-in helper the pipeline
// stages use to run several sequential workers against one shuffle
// partition set, ported from the teacher's
// internal/repository/worker_group.go.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunWorkers runs count instances of workerFunc using an errgroup.Group,
// cancelling the group's derived context on the first error. After all
// workers have terminated, finalFunc runs unconditionally (typically to
// close a downstream channel), then the first worker error, if any, is
// returned.
func RunWorkers(ctx context.Context, count int, workerFunc func(ctx context.Context) error, finalFunc func()) error {
	wg, ctx := errgroup.WithContext(ctx)

	for i := 0; i < count; i++ {
		wg.Go(func() error {
			return workerFunc(ctx)
		})
	}

	err := wg.Wait()
	finalFunc()
	return err
}

// WorkerSlots returns the number of worker slots to run per stage,
// mirroring the teacher's runtime.GOMAXPROCS(0)-based sizing in
// internal/repository/index_parallel.go.
func WorkerSlots() int {
	return numCPU()
}
