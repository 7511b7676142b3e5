package pool

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/utkarsh5026/taskpool/internal/cpu"
)

// worker is one of the pool's long-lived executors. It loops between
// waiting on the shared queue and running exactly one task, and returns
// only once the queue is closed and drained.
type worker struct {
	id   int
	pool *ThreadPool
	log  *slog.Logger
}

func newWorker(id int, p *ThreadPool) *worker {
	return &worker{
		id:   id,
		pool: p,
		log:  p.log.With("worker", id),
	}
}

// run is the worker loop. Task failures never end it: invoke captures
// errors and panics into the task's Future. If a task kills the goroutine
// with runtime.Goexit, a replacement worker with the same id is started so
// the pool keeps its size.
func (w *worker) run() error {
	conf := w.pool.conf
	if conf.lockOSThread {
		release, err := cpu.Bind(w.id, conf.pinCPU)
		defer release()
		if err != nil {
			w.log.Warn("cpu pinning failed, running unpinned", "error", err)
		}
	}

	drained := false
	defer func() {
		if !drained {
			w.log.Error("worker goroutine exited mid-task, starting replacement")
			w.pool.startWorker(w.id)
		}
	}()

	w.log.Debug("worker started")
	for {
		t, depth, ok := w.pool.queue.Pop()
		if !ok {
			drained = true
			w.log.Debug("worker stopped")
			return nil
		}
		w.pool.observeQueueDepth(w.log, depth)
		w.execute(t)
	}
}

// execute runs a single dequeued task and records its outcome.
func (w *worker) execute(t runnable) {
	if lim := w.pool.conf.rateLimiter; lim != nil {
		// Wait only fails for a burst below 1, which WithRateLimit rules out.
		if err := lim.Wait(context.Background()); err != nil {
			w.log.Warn("rate limiter wait failed", "task", t.taskID(), "error", err)
		}
	}

	if hook := w.pool.conf.beforeTaskStart; hook != nil {
		callHook(w.log, "before_task_start", func() { hook(t.taskID()) })
	}

	stats := &w.pool.stats
	stats.active.Add(1)
	start := time.Now()
	err := ErrTaskExited

	defer func() {
		stats.active.Add(-1)
		w.pool.recordOutcome(w, t.taskID(), time.Since(start), err)
	}()

	err = t.invoke()
}

// recordOutcome updates counters and metrics after a task finishes and
// hands the outcome to the configured hooks.
func (p *ThreadPool) recordOutcome(w *worker, id int64, elapsed time.Duration, err error) {
	p.stats.completed.Add(1)
	p.stats.recordLatency(elapsed)

	outcome := OutcomeSuccess
	if err != nil {
		p.stats.failed.Add(1)
		outcome = OutcomeFailure

		var pe *PanicError
		if errors.As(err, &pe) {
			p.stats.panicked.Add(1)
			outcome = OutcomePanic
			w.log.Error("task panicked", "task", id, "panic", pe.Value)
			if h := p.conf.panicHandler; h != nil {
				callHook(w.log, "panic_handler", func() { h(pe.Value) })
			}
		} else {
			w.log.Debug("task failed", "task", id, "error", err)
		}
	}

	if m := p.conf.metrics; m != nil {
		callHook(w.log, "metrics", func() {
			m.RecordTaskDuration(p.conf.name, elapsed)
			m.RecordTaskOutcome(p.conf.name, outcome)
		})
	}

	if hook := p.conf.onTaskEnd; hook != nil {
		callHook(w.log, "on_task_end", func() { hook(id, err) })
	}
}

// callHook runs user-supplied code so that a panic in it is logged instead
// of killing the calling goroutine.
func callHook(log *slog.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("hook panicked", "hook", name, "panic", r)
		}
	}()
	fn()
}
