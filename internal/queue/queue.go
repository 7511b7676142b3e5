// Package queue provides the bounded FIFO buffer shared by the pool's workers.
//
// A single mutex guards both the buffered items and the closed flag, and a
// condition variable parks consumers while the queue is empty. A consumer
// sees "empty for now" and "empty forever" under the same lock.
package queue

import (
	"errors"
	"math"
	"sync"

	"github.com/gammazero/deque"
)

// Unbounded is the capacity used when no explicit limit is configured.
const Unbounded = math.MaxInt

var (
	ErrFull   = errors.New("queue is full")
	ErrClosed = errors.New("queue is closed")
)

// Bounded is a FIFO queue with a fixed maximum length.
//
// Producers never block: TryPush fails fast when the queue is full or closed.
// Consumers block in Pop until an item arrives or the queue is closed and
// fully drained.
type Bounded[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	items    deque.Deque[T]
	capacity int
	closed   bool
}

// New creates a queue holding at most capacity items.
// A non-positive capacity yields an Unbounded queue.
func New[T any](capacity int) *Bounded[T] {
	if capacity <= 0 {
		capacity = Unbounded
	}

	q := &Bounded[T]{capacity: capacity}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// TryPush appends item to the tail of the queue and wakes one waiting consumer.
// On success it returns the queue length including item.
//
// Returns ErrClosed once Close has been called and ErrFull when the queue is
// at capacity. The closed check, the capacity check and the append happen in
// one critical section, so concurrent producers can never overfill the queue.
func (q *Bounded[T]) TryPush(item T) (int, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0, ErrClosed
	}
	if q.items.Len() >= q.capacity {
		q.mu.Unlock()
		return 0, ErrFull
	}
	q.items.PushBack(item)
	n := q.items.Len()
	q.mu.Unlock()

	q.notEmpty.Signal()
	return n, nil
}

// Pop removes and returns the oldest item, blocking while the queue is empty.
// remaining is the queue length left behind by this pop.
//
// It returns ok=false only when the queue is closed and nothing is left to
// drain; items pushed before Close are always handed out first.
func (q *Bounded[T]) Pop() (item T, remaining int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Len() == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	if q.items.Len() == 0 {
		return item, 0, false
	}
	item = q.items.PopFront()
	return item, q.items.Len(), true
}

// TryPop is the non-blocking form of Pop. It reports ok=false when the queue
// is currently empty, whether or not it has been closed.
func (q *Bounded[T]) TryPop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.items.Len() == 0 {
		return item, false
	}
	return q.items.PopFront(), true
}

// Close stops the queue from accepting new items and wakes every consumer so
// each can re-evaluate the stop condition. Buffered items remain poppable.
// Only the first call returns true.
func (q *Bounded[T]) Close() bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.closed = true
	q.mu.Unlock()

	q.notEmpty.Broadcast()
	return true
}

// Closed reports whether Close has been called.
func (q *Bounded[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of buffered items.
func (q *Bounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Cap returns the maximum number of items the queue can hold.
func (q *Bounded[T]) Cap() int {
	return q.capacity
}
