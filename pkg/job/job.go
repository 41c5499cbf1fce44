// Package job runs one encode in the background with progress reporting and
// cancellation.
package job

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/user/gifcap/pkg/ports"
)

// Func is the work a job performs.
type Func[T any] func(ctx context.Context, progress ports.ProgressFunc) (T, error)

// Job is a handle to background work producing a T.
type Job[T any] struct {
	id       string
	cancel   context.CancelFunc
	progress chan float64
	done     chan struct{}

	mu     sync.Mutex
	latest float64
	result T
	err    error
}

// Start runs fn on its own goroutine. Cancelling ctx or calling Cancel
// cancels the context passed to fn.
func Start[T any](ctx context.Context, fn Func[T]) *Job[T] {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job[T]{
		id:       uuid.NewString(),
		cancel:   cancel,
		progress: make(chan float64, 1),
		done:     make(chan struct{}),
	}

	go func() {
		defer cancel()
		result, err := fn(ctx, j.publish)

		j.mu.Lock()
		j.result, j.err = result, err
		j.mu.Unlock()

		close(j.progress)
		close(j.done)
	}()
	return j
}

// publish keeps only the newest value in the channel so the worker never
// blocks on a slow reader.
func (j *Job[T]) publish(p float64) {
	j.mu.Lock()
	if p < j.latest {
		p = j.latest
	}
	j.latest = p
	j.mu.Unlock()

	select {
	case j.progress <- p:
		return
	default:
	}
	select {
	case <-j.progress:
	default:
	}
	select {
	case j.progress <- p:
	default:
	}
}

// ID returns the job's unique identifier.
func (j *Job[T]) ID() string {
	return j.id
}

// Progress returns a channel of progress values in [0,1]. Intermediate
// values may be skipped. The channel is closed when the job finishes.
func (j *Job[T]) Progress() <-chan float64 {
	return j.progress
}

// Latest returns the most recent progress value.
func (j *Job[T]) Latest() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.latest
}

// Done is closed when the job finishes.
func (j *Job[T]) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes or ctx is done.
func (j *Job[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-j.done:
		j.mu.Lock()
		defer j.mu.Unlock()
		return j.result, j.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel requests cancellation. The job still finishes through Done.
func (j *Job[T]) Cancel() {
	j.cancel()
}
