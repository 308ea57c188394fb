package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// barrier groups the jobs of one analysis on the shared pool so that a request
// waits only for its own work.
type barrier struct {
	pool *WorkerPool
	wg   sync.WaitGroup

	mu  sync.Mutex
	err error
}

func newBarrier(pool *WorkerPool) *barrier {
	return &barrier{pool: pool}
}

// Go schedules job on the pool, or runs it inline once the pool is closed.
// A job still queued when ctx ends is skipped.
func (b *barrier) Go(ctx context.Context, job func()) {
	b.wg.Add(1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				b.fail(fmt.Errorf("analysis job panicked: %v", r))
			}
			b.wg.Done()
		}()
		if err := ctx.Err(); err != nil {
			b.fail(err)
			return
		}
		job()
	}

	switch err := b.pool.Submit(ctx, task); {
	case err == nil:
	case errors.Is(err, ErrPoolClosed):
		task()
	default:
		b.fail(err)
		b.wg.Done()
	}
}

func (b *barrier) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
}

// Wait returns once every job is done or ctx is cancelled, whichever comes first.
func (b *barrier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}
