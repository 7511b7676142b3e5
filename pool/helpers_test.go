package pool

import (
	"sync"
	"testing"
	"time"
)

// newTestPool creates a pool that is shut down when the test ends.
func newTestPool(t *testing.T, opts ...Option) *ThreadPool {
	t.Helper()
	p := NewThreadPool(opts...)
	t.Cleanup(func() {
		if err := p.ShutdownWithTimeout(5 * time.Second); err != nil {
			t.Errorf("cleanup shutdown: %v", err)
		}
	})
	return p
}

// gate is a task that parks its worker until released.
type gate struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gate) task() (int, error) {
	close(g.started)
	<-g.release
	return 0, nil
}

// open lets the parked task finish. Safe to call more than once.
func (g *gate) open() {
	g.once.Do(func() { close(g.release) })
}

// occupy submits g and waits until a worker has picked it up.
func (g *gate) occupy(t *testing.T, p *ThreadPool) *Future[int] {
	t.Helper()
	f, err := Submit(p, g.task)
	if err != nil {
		t.Fatalf("submit blocking task: %v", err)
	}
	t.Cleanup(g.open)

	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("blocking task never started")
	}
	return f
}

// waitFor polls cond until it holds or timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(time.Millisecond)
	}
}

// getWithin reads f, failing the test if it is not resolved in time.
func getWithin[R any](t *testing.T, f *Future[R], timeout time.Duration) (R, error) {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(timeout):
		t.Fatalf("future %d not resolved within %v", f.ID(), timeout)
	}
	return f.Get()
}
