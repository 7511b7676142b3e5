// Package pool provides a fixed-size worker pool with a bounded FIFO queue
// and one-shot result handles.
//
// The primary type is ThreadPool: a set of long-lived workers created up
// front and fed from a single shared queue. Submitting a task returns a
// Future through which the task's value, or its failure, reaches the caller.
//
// # Basic Usage
//
//	p := pool.NewThreadPool(pool.WithWorkerCount(4))
//	defer p.Close()
//
//	future, err := pool.Submit(p, func() (string, error) {
//	    return "hello", nil
//	})
//	if err != nil {
//	    // ErrQueueFull or ErrPoolStopped
//	}
//	greeting, err := future.Get()
//
// # Backpressure
//
// The queue can be bounded with WithQueueCapacity. Submit never blocks: when
// the queue is full it returns ErrQueueFull at once and the caller decides
// whether to drop the task, retry later, or use SubmitWithBackoff.
//
//	p := pool.NewThreadPool(pool.WithWorkerCount(2), pool.WithQueueCapacity(64))
//	if _, err := pool.Submit(p, work); errors.Is(err, pool.ErrQueueFull) {
//	    // shed load
//	}
//
// # Failures
//
// An error returned by a task, or a panic inside it, is captured into that
// task's Future and surfaces only when the Future is read. Panics arrive as
// *PanicError. The worker that ran the task carries on with the next one.
//
// # Shutdown
//
// Shutdown refuses new tasks with ErrPoolStopped, lets the workers finish
// every task already queued, and returns once they have all exited:
//
//	p.Shutdown()                       // wait for the drain
//	err := p.ShutdownWithTimeout(time.Second) // or bound the wait
//
// # Configuration Options
//
//   - WithWorkerCount(n): number of workers (default: GOMAXPROCS)
//   - WithQueueCapacity(n): maximum queued tasks (default: unbounded)
//   - WithName(s): label used in logs and metrics
//   - WithLogger(l): *slog.Logger for lifecycle and failure records
//   - WithRateLimit(rps, burst): throttle task starts
//   - WithOSThreads(), WithCPUAffinity(): dedicated, optionally pinned, OS threads
//   - WithPanicHandler(h): observe task panics
//   - WithBeforeTaskStart(h), WithOnTaskEnd(h): per-task lifecycle hooks keyed by task ID
//   - WithMetrics(m): export pool events
package pool
