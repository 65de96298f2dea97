package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrQueueClosed is returned by Put once the queue has been closed or aborted.
var ErrQueueClosed = errors.New("queue closed")

// DefaultCapacity returns the default queue bound: ten slots per available CPU.
func DefaultCapacity() int {
	return 10 * runtime.GOMAXPROCS(0)
}

// Queue is a bounded FIFO connecting one producer to one consumer.
//
// Put blocks while the queue is full and Take blocks while it is empty and open.
// Close marks the end of production: the consumer still drains what is buffered and
// then sees end-of-stream. Abort is a terminal failure: buffered items are dropped
// and the consumer stops at its next Take.
type Queue[T any] struct {
	items  chan T
	closed chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

// NewQueue creates a queue holding at most capacity items.
// Panics if capacity < 1.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		panic(fmt.Sprintf("Queue: capacity must be > 0, got %d", capacity))
	}
	return &Queue[T]{
		items:  make(chan T, capacity),
		closed: make(chan struct{}),
	}
}

// Put appends v, blocking while the queue is full.
// Returns ErrQueueClosed after Close or Abort, or ctx.Err() if ctx ends first.
func (q *Queue[T]) Put(ctx context.Context, v T) error {
	select {
	case <-q.closed:
		return ErrQueueClosed
	default:
	}
	select {
	case q.items <- v:
		return nil
	case <-q.closed:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take removes the oldest item, blocking while the queue is empty and open.
// Returns false at end-of-stream (closed and drained) or after a failure; Err
// tells the two apart. A cancelled ctx aborts the queue with ctx.Err().
func (q *Queue[T]) Take(ctx context.Context) (T, bool) {
	var zero T
	if q.Err() != nil {
		return zero, false
	}
	select {
	case v := <-q.items:
		return v, true
	case <-q.closed:
		if q.Err() != nil {
			return zero, false
		}
		select {
		case v := <-q.items:
			return v, true
		default:
			return zero, false
		}
	case <-ctx.Done():
		q.Abort(ctx.Err())
		return zero, false
	}
}

// Close stops further Puts. Safe to call more than once.
func (q *Queue[T]) Close() {
	q.once.Do(func() { close(q.closed) })
}

// Abort closes the queue with a terminal failure.
// Only the first non-nil cause is kept.
func (q *Queue[T]) Abort(err error) {
	if err != nil {
		q.mu.Lock()
		if q.err == nil {
			q.err = err
		}
		q.mu.Unlock()
	}
	q.Close()
}

// Err returns the cause passed to the first Abort, or nil.
func (q *Queue[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int { return len(q.items) }

// Cap returns the queue bound.
func (q *Queue[T]) Cap() int { return cap(q.items) }
