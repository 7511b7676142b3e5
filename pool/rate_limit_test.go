package pool

import (
	"testing"
	"time"
)

func runRateLimited(t *testing.T, numTasks int, opts ...Option) time.Duration {
	t.Helper()
	p := newTestPool(t, opts...)

	start := time.Now()
	futures := make([]*Future[int], 0, numTasks)
	for i := range numTasks {
		f, err := Submit(p, func() (int, error) { return i * 2, nil })
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		futures = append(futures, f)
	}
	for i, f := range futures {
		v, err := getWithin(t, f, 5*time.Second)
		if err != nil {
			t.Fatalf("task %d: %v", i, err)
		}
		if v != i*2 {
			t.Errorf("task %d: expected %d, got %d", i, i*2, v)
		}
	}
	return time.Since(start)
}

func TestThreadPool_RateLimit_BasicThroughput(t *testing.T) {
	// 25 tasks at 10/sec with a burst of 5: the burst starts at once, the
	// remaining 20 need about 2 seconds.
	elapsed := runRateLimited(t, 25, WithWorkerCount(10), WithRateLimit(10, 5))

	if elapsed < 1900*time.Millisecond {
		t.Errorf("expected at least ~2s, got %v (rate limiting not applied)", elapsed)
	}
	if elapsed > 3*time.Second {
		t.Errorf("took too long: %v", elapsed)
	}
}

func TestThreadPool_RateLimit_BurstBehavior(t *testing.T) {
	elapsed := runRateLimited(t, 10, WithWorkerCount(10), WithRateLimit(5, 10))

	if elapsed > 500*time.Millisecond {
		t.Errorf("burst should allow fast processing, took %v", elapsed)
	}
}

func TestThreadPool_RateLimit_InvalidIgnored(t *testing.T) {
	for _, tc := range []struct {
		name  string
		rate  float64
		burst int
	}{
		{"zero rate", 0, 5},
		{"negative rate", -1, 5},
		{"zero burst", 10, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			elapsed := runRateLimited(t, 100, WithWorkerCount(4), WithRateLimit(tc.rate, tc.burst))
			if elapsed > time.Second {
				t.Errorf("invalid limit should be ignored, took %v", elapsed)
			}
		})
	}
}

func TestThreadPool_RateLimit_SubmitNotThrottled(t *testing.T) {
	p := newTestPool(t, WithWorkerCount(1), WithRateLimit(1, 1))

	start := time.Now()
	for range 3 {
		if _, err := Submit(p, func() (int, error) { return 0, nil }); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("submission should not wait for tokens, took %v", elapsed)
	}
}
