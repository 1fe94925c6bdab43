package workerpool

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

const defaultSize = 4

// Pool bounds how many CPU-bound jobs run at once across all pipelines.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// New creates a pool with size slots; non-positive sizes fall back to 4.
func New(size int) *Pool {
	if size <= 0 {
		size = defaultSize
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return p.size
}

// Do runs job once a slot is free. It returns ctx's error if the context ends
// while waiting. A nil pool runs job inline.
func (p *Pool) Do(ctx context.Context, job func() error) error {
	if p == nil {
		return job()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire worker: %w", err)
	}
	defer p.sem.Release(1)
	return job()
}

// Run is Do for jobs that produce a value.
func Run[T any](ctx context.Context, p *Pool, job func() (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func() error {
		var jobErr error
		out, jobErr = job()
		return jobErr
	})
	return out, err
}
