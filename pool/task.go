package pool

import "runtime"

// Task is a unit of work producing a value of type R. The pool calls Call
// exactly once, on one of its workers.
type Task[R any] interface {
	Call() (R, error)
}

// TaskFunc adapts an ordinary function to the Task interface.
type TaskFunc[R any] func() (R, error)

// Call invokes f.
func (f TaskFunc[R]) Call() (R, error) {
	return f()
}

// runnable is the type-erased view of a submitted task held by the queue,
// so tasks of any result type share one queue and one set of workers.
type runnable interface {
	// invoke runs the task and resolves its future. It never panics.
	invoke() error
	taskID() int64
}

// submittedTask pairs a task with the future its outcome is written to.
type submittedTask[R any] struct {
	id     int64
	task   Task[R]
	future *Future[R]
}

func newSubmittedTask[R any](id int64, task Task[R]) *submittedTask[R] {
	return &submittedTask[R]{
		id:     id,
		task:   task,
		future: newFuture[R](id),
	}
}

func (s *submittedTask[R]) taskID() int64 {
	return s.id
}

// invoke calls the task inside a recovery boundary and resolves the future
// with whatever came out: the returned value and error, a *PanicError, or
// ErrTaskExited if the task called runtime.Goexit.
func (s *submittedTask[R]) invoke() (err error) {
	var value R
	returned := false

	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			value, err = *new(R), &PanicError{Value: r, Stack: buf[:n]}
		} else if !returned {
			err = ErrTaskExited
		}
		s.future.resolve(value, err)
	}()

	value, err = s.task.Call()
	returned = true
	return err
}
