package pool

// Future is the write-once, read-many handle through which a task's outcome
// reaches its submitter.
//
// Exactly one worker resolves a Future, after running its task. Any number
// of goroutines may read it; every read observes the same value and error,
// and reading never runs the task again.
//
// Type parameters:
//   - R: The type of the value produced by the task
type Future[R any] struct {
	id    int64
	done  chan struct{}
	value R
	err   error
}

func newFuture[R any](id int64) *Future[R] {
	return &Future[R]{
		id:   id,
		done: make(chan struct{}),
	}
}

// resolve stores the outcome and releases every blocked reader.
// It must be called at most once.
func (f *Future[R]) resolve(value R, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Get blocks until the task has run and returns its value, or the failure it
// produced. A panicking task yields a *PanicError.
//
// Example:
//
//	future, err := pool.Submit(p, func() (int, error) { return 6 * 7, nil })
//	if err != nil {
//	    return err
//	}
//	answer, err := future.Get()
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// TryGet returns the outcome without blocking. ready is false while the task
// is still queued or running, in which case value and err are zero.
func (f *Future[R]) TryGet() (value R, ready bool, err error) {
	select {
	case <-f.done:
		return f.value, true, f.err
	default:
		return value, false, nil
	}
}

// Done returns a channel that is closed once the outcome is available.
// It lets callers wait on several futures, or on a future and a deadline,
// in a single select.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the outcome has been written.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// ID returns the identifier the pool assigned to the task at submission.
// IDs start at 1 and increase with every submission attempt.
func (f *Future[R]) ID() int64 {
	return f.id
}
