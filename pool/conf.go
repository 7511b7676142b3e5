package pool

import (
	"log/slog"
	"runtime"

	"github.com/utkarsh5026/taskpool/internal/queue"
	"golang.org/x/time/rate"
)

const defaultName = "taskpool"

// Option is a functional option for configuring a ThreadPool.
type Option func(*config)

type config struct {
	name          string
	workerCount   int
	queueCapacity int
	logger        *slog.Logger
	rateLimiter   *rate.Limiter
	lockOSThread  bool
	pinCPU        bool
	panicHandler  func(any)
	metrics       Metrics

	beforeTaskStart func(id int64)
	onTaskEnd       func(id int64, err error)
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		name:          defaultName,
		workerCount:   runtime.GOMAXPROCS(0),
		queueCapacity: queue.Unbounded,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}

// WithWorkerCount sets the number of workers started by NewThreadPool.
// If not specified, defaults to runtime.GOMAXPROCS(0). Non-positive values are ignored.
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		if count > 0 {
			cfg.workerCount = count
		}
	}
}

// WithQueueCapacity bounds the number of tasks waiting to be picked up.
// Tasks being executed do not count against it. Once the queue holds
// capacity tasks, Submit returns ErrQueueFull until a worker dequeues one.
// If not specified the queue is effectively unbounded. Non-positive values are ignored.
func WithQueueCapacity(capacity int) Option {
	return func(cfg *config) {
		if capacity > 0 {
			cfg.queueCapacity = capacity
		}
	}
}

// WithName labels the pool in log records and metrics. Empty names are ignored.
func WithName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithLogger sets the structured logger used for worker lifecycle and task
// failure records. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithRateLimit caps how many tasks per second the pool starts, across all
// workers. burst is the number of tasks that may start back to back.
// Workers wait for a token before running a dequeued task; submission is
// never throttled. If not specified, no rate limiting is applied.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithOSThreads locks every worker to its own OS thread for its whole
// lifetime, for tasks that rely on thread-local state (cgo, syscalls that
// act on the calling thread).
func WithOSThreads() Option {
	return func(cfg *config) {
		cfg.lockOSThread = true
	}
}

// WithCPUAffinity implies WithOSThreads and additionally pins worker i to
// core i % NumCPU where the platform supports it. Pinning failures are
// logged and the worker keeps running unpinned.
func WithCPUAffinity() Option {
	return func(cfg *config) {
		cfg.lockOSThread = true
		cfg.pinCPU = true
	}
}

// WithPanicHandler installs a hook invoked on the worker with the recovered
// value of any task panic, after the panic has been recorded in the task's Future.
// A panic raised by the handler itself is logged and swallowed.
func WithPanicHandler(h func(any)) Option {
	return func(cfg *config) {
		cfg.panicHandler = h
	}
}

// WithBeforeTaskStart sets a hook called on the worker right before a task
// runs, with the ID its Future reports.
// A panic in the hook is logged and does not affect the task.
//
// Example:
//
//	WithBeforeTaskStart(func(id int64) {
//	    log.Printf("starting task %d", id)
//	})
func WithBeforeTaskStart(hook func(id int64)) Option {
	return func(cfg *config) {
		cfg.beforeTaskStart = hook
	}
}

// WithOnTaskEnd sets a hook called on the worker after a task finished and
// its Future was resolved. err is the failure stored in the Future, or nil.
// A panic in the hook is logged and does not affect the worker.
func WithOnTaskEnd(hook func(id int64, err error)) Option {
	return func(cfg *config) {
		cfg.onTaskEnd = hook
	}
}

// WithMetrics reports task durations, outcomes, rejections and queue depth
// to m. See the observability/prometheus package for a Prometheus-backed implementation.
func WithMetrics(m Metrics) Option {
	return func(cfg *config) {
		cfg.metrics = m
	}
}
