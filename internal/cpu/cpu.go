// Package cpu binds pool workers to dedicated OS threads and, where the
// platform allows it, to a single CPU core.
package cpu

import (
	"errors"
	"runtime"
)

// ErrPinUnsupported is returned by Bind when core pinning is not available
// on the current platform. The thread lock is still held in that case.
var ErrPinUnsupported = errors.New("cpu: core pinning not supported on " + runtime.GOOS)

// Bind locks the calling goroutine to its current OS thread. When pin is
// true the thread is additionally restricted to core workerID % NumCPU.
//
// The returned release func undoes the thread lock and must be called from
// the same goroutine, typically via defer. It is never nil, even when err is
// non-nil: a failed pin leaves the goroutine locked but unpinned.
func Bind(workerID int, pin bool) (release func(), err error) {
	runtime.LockOSThread()
	release = runtime.UnlockOSThread

	if pin {
		err = pinToCore(coreFor(workerID))
	}
	return release, err
}

// NumCPU returns the number of logical CPUs usable by the process.
func NumCPU() int {
	return runtime.NumCPU()
}

func coreFor(workerID int) int {
	n := runtime.NumCPU()
	if workerID < 0 {
		workerID = -workerID
	}
	return workerID % n
}
