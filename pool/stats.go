package pool

import (
	"sync/atomic"
	"time"
)

// Task outcomes reported to Metrics.RecordTaskOutcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePanic   = "panic"
)

// Rejection reasons reported to Metrics.RecordTaskRejected.
const (
	RejectQueueFull = "queue_full"
	RejectStopped   = "stopped"
)

// Metrics receives pool events as they happen. Implementations must be safe
// for concurrent use; they are called from workers and submitters alike.
type Metrics interface {
	// RecordTaskDuration records how long a task ran on its worker.
	RecordTaskDuration(pool string, d time.Duration)

	// RecordTaskOutcome records one of OutcomeSuccess, OutcomeFailure or OutcomePanic.
	RecordTaskOutcome(pool string, outcome string)

	// RecordTaskRejected records a refused submission, with RejectQueueFull or RejectStopped.
	RecordTaskRejected(pool string, reason string)

	// RecordQueueDepth records the number of queued tasks after an enqueue or dequeue.
	RecordQueueDepth(pool string, depth int)
}

// Stats is a point-in-time snapshot of pool activity.
//
// Counters are read without stopping the pool, so under concurrent load the
// fields may be mutually inconsistent by a few tasks.
//
// Example:
//
//	s := p.Stats()
//	fmt.Printf("%d/%d queued, %d failed\n", s.QueueDepth, s.QueueCapacity, s.Failed)
type Stats struct {
	// Workers is the fixed number of worker goroutines.
	Workers int

	// QueueCapacity is the maximum number of waiting tasks.
	QueueCapacity int

	// QueueDepth is the number of tasks waiting to be picked up.
	QueueDepth int

	// Active is the number of tasks currently executing.
	Active int

	// Accepted counts submissions that were queued.
	Accepted uint64

	// RejectedFull counts submissions refused with ErrQueueFull.
	RejectedFull uint64

	// RejectedStopped counts submissions refused with ErrPoolStopped.
	RejectedStopped uint64

	// Completed counts tasks that have finished, successfully or not.
	Completed uint64

	// Failed counts completed tasks whose Future holds an error, panics included.
	Failed uint64

	// Panicked counts completed tasks that panicked.
	Panicked uint64

	// LatencyAvg is the mean execution time of completed tasks.
	LatencyAvg time.Duration

	// LatencyMax is the longest execution time observed.
	LatencyMax time.Duration

	// Stopping reports whether Shutdown has begun.
	Stopping bool
}

// counters holds the atomics behind Stats.
type counters struct {
	accepted        atomic.Uint64
	rejectedFull    atomic.Uint64
	rejectedStopped atomic.Uint64
	completed       atomic.Uint64
	failed          atomic.Uint64
	panicked        atomic.Uint64
	active          atomic.Int64
	latencySum      atomic.Int64
	latencyMax      atomic.Int64
}

func (c *counters) recordLatency(d time.Duration) {
	c.latencySum.Add(int64(d))
	for {
		cur := c.latencyMax.Load()
		if int64(d) <= cur || c.latencyMax.CompareAndSwap(cur, int64(d)) {
			return
		}
	}
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Active:          int(c.active.Load()),
		Accepted:        c.accepted.Load(),
		RejectedFull:    c.rejectedFull.Load(),
		RejectedStopped: c.rejectedStopped.Load(),
		Completed:       c.completed.Load(),
		Failed:          c.failed.Load(),
		Panicked:        c.panicked.Load(),
		LatencyMax:      time.Duration(c.latencyMax.Load()),
	}
	if s.Completed > 0 {
		s.LatencyAvg = time.Duration(c.latencySum.Load() / int64(s.Completed))
	}
	return s
}
