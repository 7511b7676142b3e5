package algorithms

import "time"

// Kind selects the algorithm used to space out resubmission attempts.
type Kind int

const (
	// Exponential doubles the delay on every attempt. It is also the fallback for unknown kinds.
	Exponential Kind = iota
	// Jittered is Exponential with a random ±factor spread.
	Jittered
	// Decorrelated picks each delay at random between base and 3x the previous delay.
	Decorrelated
)

// Backoff computes how long a producer waits before trying again after the
// pool rejected a submission.
type Backoff interface {
	// Next returns the pause before attempt+1. attempt is 0-indexed.
	Next(attempt int) time.Duration

	// Reset clears any state carried between attempts.
	Reset()
}

// New builds the Backoff for kind. Non-positive delays fall back to 1ms base
// and a ceiling equal to the base; jitter is clamped to [0, 1].
func New(kind Kind, base, ceiling time.Duration, jitter float64) Backoff {
	if base <= 0 {
		base = time.Millisecond
	}
	if ceiling < base {
		ceiling = base
	}

	switch kind {
	case Jittered:
		return &jittered{base: base, ceiling: ceiling, factor: clamp(jitter, 0, 1)}
	case Decorrelated:
		return &decorrelated{base: base, ceiling: ceiling, prev: base}
	default:
		return &exponential{base: base, ceiling: ceiling}
	}
}
