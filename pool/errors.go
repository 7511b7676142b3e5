package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolStopped is returned by Submit once Shutdown has begun. Tasks
	// accepted before that point still run to completion.
	ErrPoolStopped = errors.New("pool is stopped")

	// ErrQueueFull is returned by Submit when the task queue is at capacity.
	// Submission never blocks; the caller decides whether to retry or drop.
	ErrQueueFull = errors.New("task queue is full")

	// ErrNilTask is returned when a nil function or Task is submitted.
	ErrNilTask = errors.New("task is nil")

	// ErrShutdownTimeout is returned by ShutdownWithTimeout when the workers
	// are still draining after the timeout elapsed.
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")

	// ErrTaskExited is stored in a task's Future when the task terminated its
	// goroutine with runtime.Goexit instead of returning.
	ErrTaskExited = errors.New("task exited without returning")
)

// PanicError is the failure recorded in a Future when its task panicked.
// Value holds whatever was passed to panic and Stack the goroutine stack at
// the point of recovery.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panic: %v\nstack trace:\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when it was itself an error, so
// errors.Is(err, io.EOF) works for panic(io.EOF).
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
