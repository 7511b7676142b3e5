package queue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Capacity(t *testing.T) {
	assert.Equal(t, 8, New[int](8).Cap())
	assert.Equal(t, Unbounded, New[int](0).Cap())
	assert.Equal(t, Unbounded, New[int](-3).Cap())
}

func TestBounded_FIFO(t *testing.T) {
	q := New[int](10)
	for i := range 10 {
		requirePush(t, q, i)
	}
	require.Equal(t, 10, q.Len())

	for i := range 10 {
		v, _, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 0, q.Len())
}

func TestBounded_TryPushFull(t *testing.T) {
	q := New[string](2)
	requirePush(t, q, "a")
	requirePush(t, q, "b")

	start := time.Now()
	_, err := q.TryPush("c")
	require.ErrorIs(t, err, ErrFull)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, 2, q.Len())

	v, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, "a", v)
	requirePush(t, q, "c")
}

func TestBounded_TryPushClosed(t *testing.T) {
	q := New[int](4)
	requirePush(t, q, 1)
	require.True(t, q.Close())

	_, err := q.TryPush(2)
	require.ErrorIs(t, err, ErrClosed)
	assert.True(t, q.Closed())
	assert.Equal(t, 1, q.Len())
}

func TestBounded_ClosedTakesPrecedenceOverFull(t *testing.T) {
	q := New[int](1)
	requirePush(t, q, 1)
	q.Close()

	_, err := q.TryPush(2)
	require.ErrorIs(t, err, ErrClosed)
}

func TestBounded_CloseOnlyOnce(t *testing.T) {
	q := New[int](1)
	assert.True(t, q.Close())
	assert.False(t, q.Close())
	assert.False(t, q.Close())
}

func TestBounded_PopBlocksUntilPush(t *testing.T) {
	q := New[int](1)
	got := make(chan int, 1)

	go func() {
		v, _, ok := q.Pop()
		if ok {
			got <- v
		}
	}()

	select {
	case <-got:
		t.Fatal("Pop returned before anything was pushed")
	case <-time.After(50 * time.Millisecond):
	}

	requirePush(t, q, 42)

	select {
	case v := <-got:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after push")
	}
}

func TestBounded_CloseWakesAllConsumers(t *testing.T) {
	q := New[int](1)
	const consumers = 5

	var exited atomic.Int32
	var wg sync.WaitGroup
	for range consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, ok := q.Pop(); !ok {
				exited.Add(1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	q.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumers still blocked after Close")
	}
	assert.Equal(t, int32(consumers), exited.Load())
}

func TestBounded_DrainAfterClose(t *testing.T) {
	q := New[int](0)
	for i := range 5 {
		requirePush(t, q, i)
	}
	q.Close()

	for i := range 5 {
		v, _, ok := q.Pop()
		require.True(t, ok, "item %d lost after close", i)
		assert.Equal(t, i, v)
	}

	_, _, ok := q.Pop()
	assert.False(t, ok)
	_, ok = q.TryPop()
	assert.False(t, ok)
}

func TestBounded_ConcurrentProducersRespectCapacity(t *testing.T) {
	const capacity = 10
	q := New[int](capacity)

	var accepted, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := q.TryPush(i); err != nil {
				assert.ErrorIs(t, err, ErrFull)
				rejected.Add(1)
				return
			}
			accepted.Add(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(capacity), accepted.Load())
	assert.Equal(t, int32(90), rejected.Load())
	assert.Equal(t, capacity, q.Len())
}

func TestBounded_ConcurrentProducersConsumers(t *testing.T) {
	q := New[int](0)
	const producers, perProducer, consumers = 8, 250, 4

	var sum atomic.Int64
	var popped atomic.Int32
	var cwg sync.WaitGroup
	for range consumers {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				v, _, ok := q.Pop()
				if !ok {
					return
				}
				sum.Add(int64(v))
				popped.Add(1)
			}
		}()
	}

	var pwg sync.WaitGroup
	for range producers {
		pwg.Add(1)
		go func() {
			defer pwg.Done()
			for i := 1; i <= perProducer; i++ {
				_, err := q.TryPush(i)
				assert.NoError(t, err)
			}
		}()
	}
	pwg.Wait()
	q.Close()
	cwg.Wait()

	assert.Equal(t, int32(producers*perProducer), popped.Load())
	assert.Equal(t, int64(producers*perProducer*(perProducer+1)/2), sum.Load())
}

func requirePush[T any](t *testing.T, q *Bounded[T], item T) {
	t.Helper()
	_, err := q.TryPush(item)
	require.NoError(t, err)
}

func TestBounded_ReportsDepth(t *testing.T) {
	q := New[int](3)

	for want := 1; want <= 3; want++ {
		n, err := q.TryPush(want)
		require.NoError(t, err)
		assert.Equal(t, want, n, "length after push")
	}

	n, err := q.TryPush(4)
	require.ErrorIs(t, err, ErrFull)
	assert.Zero(t, n)

	for want := 2; want >= 0; want-- {
		_, remaining, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, remaining, "length after pop")
	}
}
