package pool

import (
	"context"
	"errors"
	"time"

	"github.com/utkarsh5026/taskpool/internal/algorithms"
)

// BackoffType selects how SubmitWithBackoff spaces out its attempts.
type BackoffType = algorithms.Kind

const (
	// BackoffExponential doubles the pause after every rejection.
	BackoffExponential = algorithms.Exponential
	// BackoffJittered doubles the pause and spreads it by a random factor (default).
	BackoffJittered = algorithms.Jittered
	// BackoffDecorrelated draws each pause between the base and 3x the previous one.
	BackoffDecorrelated = algorithms.Decorrelated
)

// BackoffOption configures SubmitWithBackoff.
type BackoffOption func(*backoffConfig)

type backoffConfig struct {
	kind        BackoffType
	base        time.Duration
	ceiling     time.Duration
	jitter      float64
	maxAttempts int
}

// WithBackoff sets the algorithm and the bounds of the pause between attempts.
// Defaults: BackoffJittered, 1ms base, 100ms ceiling.
func WithBackoff(kind BackoffType, base, ceiling time.Duration) BackoffOption {
	return func(cfg *backoffConfig) {
		cfg.kind = kind
		if base > 0 {
			cfg.base = base
		}
		if ceiling > 0 {
			cfg.ceiling = ceiling
		}
	}
}

// WithJitter sets the spread used by BackoffJittered, clamped to [0, 1]. Default 0.2.
func WithJitter(factor float64) BackoffOption {
	return func(cfg *backoffConfig) {
		cfg.jitter = factor
	}
}

// WithMaxAttempts limits the number of submission attempts. After the last
// rejection SubmitWithBackoff returns ErrQueueFull. Zero, the default, keeps
// trying until ctx is done.
func WithMaxAttempts(n int) BackoffOption {
	return func(cfg *backoffConfig) {
		if n >= 0 {
			cfg.maxAttempts = n
		}
	}
}

// SubmitWithBackoff is Submit for producers that prefer to wait out a full
// queue rather than handle ErrQueueFull themselves. Each rejection for a full
// queue is followed by a pause from the configured backoff; any other outcome,
// including ErrPoolStopped, is returned immediately.
//
// Only submission is retried. fn itself still runs at most once.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(ctx, time.Second)
//	defer cancel()
//	future, err := pool.SubmitWithBackoff(ctx, p, fetch,
//	    pool.WithBackoff(pool.BackoffExponential, 5*time.Millisecond, 200*time.Millisecond),
//	)
func SubmitWithBackoff[R any](
	ctx context.Context,
	p *ThreadPool,
	fn func() (R, error),
	opts ...BackoffOption,
) (*Future[R], error) {
	cfg := &backoffConfig{
		kind:    BackoffJittered,
		base:    time.Millisecond,
		ceiling: 100 * time.Millisecond,
		jitter:  0.2,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	backoff := algorithms.New(cfg.kind, cfg.base, cfg.ceiling, cfg.jitter)

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		future, err := Submit(p, fn)
		if !errors.Is(err, ErrQueueFull) {
			return future, err
		}

		if cfg.maxAttempts > 0 && attempt+1 >= cfg.maxAttempts {
			return nil, err
		}

		timer := time.NewTimer(backoff.Next(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
