package algorithms

import (
	"math/rand/v2"
	"sync"
	"time"
)

// maxShift keeps 1<<attempt from overflowing int64.
const maxShift = 62

// exponential waits base * 2^attempt, capped at ceiling.
type exponential struct {
	base, ceiling time.Duration
}

func (e *exponential) Next(attempt int) time.Duration {
	return grow(attempt, e.base, e.ceiling)
}

func (e *exponential) Reset() {}

// jittered spreads the exponential delay by ±factor so producers rejected
// at the same instant do not come back in lockstep.
type jittered struct {
	base, ceiling time.Duration
	factor        float64
}

func (j *jittered) Next(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}

	d := grow(attempt, j.base, j.ceiling)
	spread := 1 + (rand.Float64()*2-1)*j.factor // #nosec G404 -- timing jitter only
	return clamp(time.Duration(float64(d)*spread), 0, j.ceiling)
}

func (j *jittered) Reset() {}

// decorrelated implements "decorrelated jitter":
//
//	delay = min(ceiling, random(base, prev*3))
//
// Each delay depends on the previous one rather than on the attempt number.
type decorrelated struct {
	base, ceiling time.Duration

	mu   sync.Mutex
	prev time.Duration
}

func (d *decorrelated) Next(attempt int) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	if attempt <= 0 {
		d.prev = d.base
		return d.base
	}

	upper := min(d.prev*3, d.ceiling)
	if upper <= d.base {
		d.prev = d.base
		return d.base
	}

	d.prev = d.base + time.Duration(rand.Int64N(int64(upper-d.base))) // #nosec G404 -- timing jitter only
	return d.prev
}

func (d *decorrelated) Reset() {
	d.mu.Lock()
	d.prev = d.base
	d.mu.Unlock()
}

func grow(attempt int, base, ceiling time.Duration) time.Duration {
	if attempt < 0 {
		return 0
	}
	if attempt >= maxShift || base > ceiling>>uint(attempt) {
		return ceiling
	}
	return base << uint(attempt)
}

func clamp[N ~int64 | ~float64](v, lo, hi N) N {
	return max(lo, min(v, hi))
}
