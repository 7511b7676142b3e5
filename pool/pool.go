package pool

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/taskpool/internal/queue"
	"golang.org/x/sync/errgroup"
)

// ThreadPool is a fixed-size pool of workers fed by one bounded FIFO queue.
//
// Workers start in NewThreadPool and live until Shutdown. Submissions never
// block: they are either queued, returning a Future, or refused at once with
// ErrQueueFull or ErrPoolStopped. Shutdown stops intake, lets the workers
// drain everything already queued, and returns once all of them have exited.
//
// A ThreadPool is safe for concurrent use.
type ThreadPool struct {
	conf   *config
	log    *slog.Logger
	queue  *queue.Bounded[runnable]
	group  errgroup.Group
	done   chan struct{} // Closed when all workers have finished
	nextID atomic.Int64
	stats  counters
}

// NewThreadPool creates a pool and starts its workers immediately. They
// wait idle on the empty queue until work arrives.
//
// Default configuration:
//   - workerCount: runtime.GOMAXPROCS(0)
//   - queueCapacity: effectively unbounded
//   - logger: discards everything
//
// Example:
//
//	p := pool.NewThreadPool(
//	    pool.WithWorkerCount(4),
//	    pool.WithQueueCapacity(128),
//	)
//	defer p.Close()
func NewThreadPool(opts ...Option) *ThreadPool {
	cfg := newConfig(opts...)

	p := &ThreadPool{
		conf:  cfg,
		log:   cfg.logger.With("pool", cfg.name),
		queue: queue.New[runnable](cfg.queueCapacity),
		done:  make(chan struct{}),
	}

	for i := range cfg.workerCount {
		p.startWorker(i)
	}

	go func() {
		defer close(p.done)
		if err := p.group.Wait(); err != nil {
			p.log.Error("worker exited with error", "error", err)
		}
	}()

	p.log.Info("pool started", "workers", cfg.workerCount, "capacity", cfg.queueCapacity)
	return p
}

func (p *ThreadPool) startWorker(id int) {
	w := newWorker(id, p)
	p.group.Go(w.run)
}

// Submit queues fn for execution and returns the Future its result will be
// written to. Arguments are bound by closing over them.
//
// Returns ErrNilTask for a nil fn, ErrPoolStopped once Shutdown has begun and
// ErrQueueFull when the queue is at capacity. It never blocks.
//
// Example:
//
//	a, b := 10, 20
//	future, err := pool.Submit(p, func() (int, error) {
//	    return a + b, nil
//	})
//	if err != nil {
//	    return err
//	}
//	sum, err := future.Get()
func Submit[R any](p *ThreadPool, fn func() (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	return SubmitTask[R](p, TaskFunc[R](fn))
}

// SubmitTask is Submit for values implementing Task.
func SubmitTask[R any](p *ThreadPool, task Task[R]) (*Future[R], error) {
	if task == nil {
		return nil, ErrNilTask
	}

	st := newSubmittedTask(p.nextID.Add(1), task)
	if err := p.enqueue(st); err != nil {
		return nil, err
	}
	return st.future, nil
}

// Execute queues a task that produces no value. The returned Future
// resolves to the error fn returned, if any.
func (p *ThreadPool) Execute(fn func() error) (*Future[struct{}], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	return Submit(p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// enqueue performs the stopped check, the capacity check and the push as
// one critical section inside the queue, then maps queue errors onto the
// pool's.
func (p *ThreadPool) enqueue(t runnable) error {
	depth, err := p.queue.TryPush(t)
	switch {
	case err == nil:
		p.stats.accepted.Add(1)
		p.observeQueueDepth(p.log, depth)
		return nil

	case errors.Is(err, queue.ErrClosed):
		p.stats.rejectedStopped.Add(1)
		p.observeRejection(RejectStopped)
		return ErrPoolStopped

	case errors.Is(err, queue.ErrFull):
		p.stats.rejectedFull.Add(1)
		p.observeRejection(RejectQueueFull)
		return ErrQueueFull

	default:
		return err
	}
}

// Shutdown stops the pool from accepting tasks, wakes every idle worker and
// blocks until all workers have exited. Tasks queued before the call are
// still executed, so every Future handed out by Submit gets resolved.
//
// Shutdown may be called repeatedly and concurrently; every call waits for
// the drain to finish. Calling it from inside a task deadlocks.
func (p *ThreadPool) Shutdown() {
	_ = p.ShutdownWithTimeout(0)
}

// ShutdownWithTimeout is Shutdown with an upper bound on the wait.
// It returns ErrShutdownTimeout if workers are still draining after timeout;
// they keep draining in the background. A non-positive timeout waits forever.
//
// Example:
//
//	if err := p.ShutdownWithTimeout(5 * time.Second); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
func (p *ThreadPool) ShutdownWithTimeout(timeout time.Duration) error {
	if p.queue.Close() {
		p.log.Info("pool shutting down", "queued", p.queue.Len())
	}

	if err := waitUntil(p.done, timeout); err != nil {
		return err
	}

	p.log.Debug("pool stopped")
	return nil
}

// Close implements io.Closer. It is Shutdown, suitable for defer.
func (p *ThreadPool) Close() error {
	p.Shutdown()
	return nil
}

// Done returns a channel closed once every worker has exited after Shutdown.
func (p *ThreadPool) Done() <-chan struct{} {
	return p.done
}

// IsStopping reports whether Shutdown has begun.
func (p *ThreadPool) IsStopping() bool {
	return p.queue.Closed()
}

// WorkerCount returns the fixed number of workers.
func (p *ThreadPool) WorkerCount() int {
	return p.conf.workerCount
}

// QueueCapacity returns the maximum number of tasks that may wait in the queue.
func (p *ThreadPool) QueueCapacity() int {
	return p.queue.Cap()
}

// QueueLen returns the number of tasks waiting to be picked up.
func (p *ThreadPool) QueueLen() int {
	return p.queue.Len()
}

// Name returns the label configured with WithName.
func (p *ThreadPool) Name() string {
	return p.conf.name
}

// Stats returns a snapshot of the pool's counters.
func (p *ThreadPool) Stats() Stats {
	s := p.stats.snapshot()
	s.Workers = p.conf.workerCount
	s.QueueCapacity = p.queue.Cap()
	s.QueueDepth = p.queue.Len()
	s.Stopping = p.queue.Closed()
	return s
}

// observeQueueDepth reports depth, the queue length seen by the push or pop
// that just happened.
func (p *ThreadPool) observeQueueDepth(log *slog.Logger, depth int) {
	if m := p.conf.metrics; m != nil {
		callHook(log, "metrics", func() { m.RecordQueueDepth(p.conf.name, depth) })
	}
}

func (p *ThreadPool) observeRejection(reason string) {
	if m := p.conf.metrics; m != nil {
		callHook(p.log, "metrics", func() { m.RecordTaskRejected(p.conf.name, reason) })
	}
}
