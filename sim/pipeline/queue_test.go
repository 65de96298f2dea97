package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueue_ZeroCapacity_Panics(t *testing.T) {
	assert.PanicsWithValue(t,
		"Queue: capacity must be > 0, got 0",
		func() { NewQueue[int](0) })
}

func TestDefaultCapacity_IsPositive(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultCapacity(), 10)
}

func TestQueue_FIFO(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[int](8)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Put(ctx, i))
	}
	q.Close()

	var got []int
	for {
		v, ok := q.Take(ctx)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.NoError(t, q.Err())
}

func TestQueue_Backpressure_ProducerBlocksAtBound(t *testing.T) {
	// GIVEN a queue bounded at 2 and a producer trying to publish 5 items
	ctx := context.Background()
	q := NewQueue[int](2)
	var published atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			if err := q.Put(ctx, i); err != nil {
				return
			}
			published.Add(1)
		}
	}()

	// THEN the producer stops at the bound
	require.Eventually(t, func() bool { return published.Load() == 2 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return published.Load() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, 2, q.Len())

	// WHEN the slow consumer takes one item
	v, ok := q.Take(ctx)
	require.True(t, ok)
	assert.Equal(t, 0, v)

	// THEN exactly one more put goes through
	require.Eventually(t, func() bool { return published.Load() == 3 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return published.Load() > 3 }, 50*time.Millisecond, 5*time.Millisecond)

	// drain the rest
	for i := 1; i < 5; i++ {
		v, ok := q.Take(ctx)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	<-done
}

func TestQueue_SlowConsumerStress(t *testing.T) {
	// GIVEN a tiny bound and many items
	ctx := context.Background()
	q := NewQueue[int](3)
	const n = 500
	var maxDepth atomic.Int32
	go func() {
		for i := 0; i < n; i++ {
			if err := q.Put(ctx, i); err != nil {
				return
			}
			if d := int32(q.Len()); d > maxDepth.Load() {
				maxDepth.Store(d)
			}
		}
		q.Close()
	}()

	// WHEN a consumer drains slowly
	next := 0
	for {
		v, ok := q.Take(ctx)
		if !ok {
			break
		}
		require.Equal(t, next, v, "items must arrive in order")
		next++
		if next%50 == 0 {
			time.Sleep(time.Millisecond)
		}
	}

	// THEN every item arrives and the buffer never exceeds its bound
	assert.Equal(t, n, next)
	assert.LessOrEqual(t, maxDepth.Load(), int32(3))
}

func TestQueue_DoubleClose_IsNoOp(t *testing.T) {
	q := NewQueue[int](1)
	assert.NotPanics(t, func() {
		q.Close()
		q.Close()
	})
	assert.ErrorIs(t, q.Put(context.Background(), 1), ErrQueueClosed)
}

func TestQueue_Close_ConsumerDrainsBufferedItems(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[string](4)
	require.NoError(t, q.Put(ctx, "a"))
	require.NoError(t, q.Put(ctx, "b"))
	q.Close()

	v, ok := q.Take(ctx)
	require.True(t, ok)
	assert.Equal(t, "a", v)
	v, ok = q.Take(ctx)
	require.True(t, ok)
	assert.Equal(t, "b", v)
	_, ok = q.Take(ctx)
	assert.False(t, ok)
}

func TestQueue_Close_UnblocksWaitingProducer(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[int](1)
	require.NoError(t, q.Put(ctx, 1))

	errCh := make(chan error, 1)
	go func() { errCh <- q.Put(ctx, 2) }()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("producer still blocked after Close")
	}
}

func TestQueue_Close_UnblocksWaitingConsumer(t *testing.T) {
	q := NewQueue[int](1)
	okCh := make(chan bool, 1)
	go func() {
		_, ok := q.Take(context.Background())
		okCh <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-okCh:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("consumer still blocked after Close")
	}
}

func TestQueue_Abort_DropsBufferAndKeepsFirstCause(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[int](4)
	require.NoError(t, q.Put(ctx, 1))

	first := errors.New("malformed household record")
	q.Abort(first)
	q.Abort(errors.New("second"))

	_, ok := q.Take(ctx)
	assert.False(t, ok)
	assert.Equal(t, first, q.Err())
	assert.ErrorIs(t, q.Put(ctx, 2), ErrQueueClosed)
}

func TestQueue_Put_ContextCancelled(t *testing.T) {
	q := NewQueue[int](1)
	require.NoError(t, q.Put(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Put(ctx, 2), context.DeadlineExceeded)
}

func TestQueue_Take_ContextCancelledAbortsQueue(t *testing.T) {
	q := NewQueue[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := q.Take(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, q.Err(), context.Canceled)
}
