package benchmarks

import (
	"errors"
	"testing"
	"time"

	"github.com/utkarsh5026/taskpool/pool"
)

// cpuBoundWork simulates a CPU-intensive operation.
func cpuBoundWork(iterations, task int) func() (int, error) {
	return func() (int, error) {
		result := 0
		for i := 0; i < iterations; i++ {
			result += i * task
		}
		return result, nil
	}
}

// ioBoundWork simulates an I/O operation with a delay.
func ioBoundWork(delay time.Duration, task int) func() (int, error) {
	return func() (int, error) {
		time.Sleep(delay)
		return task * 2, nil
	}
}

// mixedWork simulates a realistic workload with variable processing time.
func mixedWork(task int) func() (int, error) {
	return func() (int, error) {
		time.Sleep(time.Duration(task%10) * 100 * time.Microsecond)
		result := 0
		for i := 0; i < 1000; i++ {
			result += i
		}
		return result + task, nil
	}
}

// runBatch submits n tasks built by mk and waits for every result.
// Tasks refused for a full queue are resubmitted until accepted.
func runBatch(b *testing.B, p *pool.ThreadPool, n int, mk func(i int) func() (int, error)) {
	b.Helper()
	futures := make([]*pool.Future[int], 0, n)
	for i := range n {
		for {
			f, err := pool.Submit(p, mk(i))
			if err == nil {
				futures = append(futures, f)
				break
			}
			if !errors.Is(err, pool.ErrQueueFull) {
				b.Fatalf("submit: %v", err)
			}
			time.Sleep(10 * time.Microsecond)
		}
	}
	for _, f := range futures {
		if _, err := f.Get(); err != nil {
			b.Fatalf("task failed: %v", err)
		}
	}
}
