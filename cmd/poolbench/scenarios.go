package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/taskpool/pool"
)

// scenario is one self-checking run against a fresh pool.
type scenario struct {
	name        string
	description string
	run         func(cfg Config, base []pool.Option) (string, error)
}

var scenarios = []scenario{
	{"fifo", "tasks start in submission order on one worker", runFIFO},
	{"parallelism", "one slow task per worker overlaps", runParallelism},
	{"backpressure", "a full queue refuses at once", runBackpressure},
	{"drain", "shutdown runs every queued task", runDrain},
	{"isolation", "errors and panics stay in their futures", runIsolation},
	{"throughput", "heavy load through a bounded queue", runThroughput},
}

func findScenario(name string) *scenario {
	for i := range scenarios {
		if scenarios[i].name == name {
			return &scenarios[i]
		}
	}
	return nil
}

func scenarioNames() []string {
	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.name
	}
	return names
}

func withOpts(base []pool.Option, extra ...pool.Option) []pool.Option {
	opts := make([]pool.Option, 0, len(base)+len(extra))
	opts = append(opts, base...)
	return append(opts, extra...)
}

func runFIFO(_ Config, base []pool.Option) (string, error) {
	p := pool.NewThreadPool(withOpts(base, pool.WithName("fifo"), pool.WithWorkerCount(1))...)
	defer p.Close()

	const n = 50
	var (
		mu    sync.Mutex
		order []int
	)
	futures := make([]*pool.Future[int], 0, n)
	for i := range n {
		f, err := pool.Submit(p, func() (int, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		})
		if err != nil {
			return "", err
		}
		futures = append(futures, f)
	}
	for _, f := range futures {
		if _, err := f.Get(); err != nil {
			return "", err
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			return "", fmt.Errorf("position %d ran task %d", i, v)
		}
	}
	return fmt.Sprintf("%d tasks in order", n), nil
}

func runParallelism(cfg Config, base []pool.Option) (string, error) {
	p := pool.NewThreadPool(withOpts(base, pool.WithName("parallelism"), pool.WithWorkerCount(cfg.Workers))...)
	defer p.Close()

	start := time.Now()
	futures := make([]*pool.Future[struct{}], 0, cfg.Workers)
	for range cfg.Workers {
		f, err := p.Execute(func() error {
			time.Sleep(cfg.TaskDuration)
			return nil
		})
		if err != nil {
			return "", err
		}
		futures = append(futures, f)
	}
	for _, f := range futures {
		if _, err := f.Get(); err != nil {
			return "", err
		}
	}

	elapsed := time.Since(start)
	if limit := cfg.TaskDuration * 5 / 2; elapsed >= limit {
		return "", fmt.Errorf("%d tasks of %v took %v, want < %v", cfg.Workers, cfg.TaskDuration, elapsed, limit)
	}
	return fmt.Sprintf("%d x %v in %v", cfg.Workers, cfg.TaskDuration, elapsed.Round(time.Millisecond)), nil
}

func runBackpressure(_ Config, base []pool.Option) (string, error) {
	p := pool.NewThreadPool(withOpts(base, pool.WithName("backpressure"), pool.WithWorkerCount(1), pool.WithQueueCapacity(1))...)
	defer p.Close()

	started, release := make(chan struct{}), make(chan struct{})
	defer close(release)

	if _, err := p.Execute(func() error {
		close(started)
		<-release
		return nil
	}); err != nil {
		return "", err
	}
	<-started

	if _, err := p.Execute(func() error { return nil }); err != nil {
		return "", fmt.Errorf("second task should queue: %w", err)
	}

	start := time.Now()
	_, err := p.Execute(func() error { return nil })
	elapsed := time.Since(start)
	if !errors.Is(err, pool.ErrQueueFull) {
		return "", fmt.Errorf("third task: got %v, want %v", err, pool.ErrQueueFull)
	}
	return fmt.Sprintf("rejected in %v", elapsed), nil
}

func runDrain(_ Config, base []pool.Option) (string, error) {
	p := pool.NewThreadPool(withOpts(base, pool.WithName("drain"), pool.WithWorkerCount(2))...)

	const n = 50
	var counter atomic.Int32
	for range n {
		if _, err := p.Execute(func() error {
			time.Sleep(time.Millisecond)
			counter.Add(1)
			return nil
		}); err != nil {
			return "", err
		}
	}

	if err := p.ShutdownWithTimeout(10 * time.Second); err != nil {
		return "", err
	}
	if got := counter.Load(); got != n {
		return "", fmt.Errorf("%d of %d tasks ran before shutdown returned", got, n)
	}
	if _, err := p.Execute(func() error { return nil }); !errors.Is(err, pool.ErrPoolStopped) {
		return "", fmt.Errorf("submit after shutdown: got %v, want %v", err, pool.ErrPoolStopped)
	}
	return fmt.Sprintf("%d/%d drained", counter.Load(), n), nil
}

func runIsolation(_ Config, base []pool.Option) (string, error) {
	p := pool.NewThreadPool(withOpts(base, pool.WithName("isolation"), pool.WithWorkerCount(1))...)
	defer p.Close()

	errBoom := errors.New("boom")
	failing, err := pool.Submit(p, func() (int, error) { return 0, errBoom })
	if err != nil {
		return "", err
	}
	panicking, err := pool.Submit(p, func() (int, error) { panic("bench panic") })
	if err != nil {
		return "", err
	}

	healthy := make([]*pool.Future[int], 0, 10)
	for i := range 10 {
		f, err := pool.Submit(p, func() (int, error) { return i, nil })
		if err != nil {
			return "", err
		}
		healthy = append(healthy, f)
	}

	if _, err := failing.Get(); !errors.Is(err, errBoom) {
		return "", fmt.Errorf("failing task: got %v", err)
	}
	var pe *pool.PanicError
	if _, err := panicking.Get(); !errors.As(err, &pe) {
		return "", fmt.Errorf("panicking task: got %v", err)
	}
	for i, f := range healthy {
		if v, err := f.Get(); err != nil || v != i {
			return "", fmt.Errorf("healthy task %d: got (%d, %v)", i, v, err)
		}
	}
	return "1 error, 1 panic, 10 ok", nil
}

func runThroughput(cfg Config, base []pool.Option) (string, error) {
	p := pool.NewThreadPool(withOpts(base,
		pool.WithName("throughput"),
		pool.WithWorkerCount(cfg.Workers),
		pool.WithQueueCapacity(cfg.Capacity),
	)...)
	defer p.Close()

	start := time.Now()
	futures := make([]*pool.Future[int], 0, cfg.Tasks)
	for i := range cfg.Tasks {
		// Tasks may outnumber the queue's capacity; wait for room instead of dropping.
		f, err := pool.SubmitWithBackoff(context.Background(), p, func() (int, error) { return i * 2, nil })
		if err != nil {
			return "", fmt.Errorf("task %d: %w", i, err)
		}
		futures = append(futures, f)
	}

	sum := 0
	for _, f := range futures {
		v, err := f.Get()
		if err != nil {
			return "", err
		}
		sum += v
	}
	elapsed := time.Since(start)

	if want := cfg.Tasks * (cfg.Tasks - 1); sum != want {
		return "", fmt.Errorf("sum %d, want %d", sum, want)
	}
	rate := float64(cfg.Tasks) / elapsed.Seconds()
	return fmt.Sprintf("%d tasks, %s tasks/sec", cfg.Tasks, formatNumber(int(rate))), nil
}
