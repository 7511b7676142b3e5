package pool_test

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/utkarsh5026/taskpool/pool"
)

func ExampleSubmit() {
	p := pool.NewThreadPool(pool.WithWorkerCount(2))
	defer p.Close()

	a, b := 10, 20
	future, err := pool.Submit(p, func() (int, error) {
		return a + b, nil
	})
	if err != nil {
		fmt.Println("submit:", err)
		return
	}

	sum, err := future.Get()
	fmt.Println(sum, err)
	// Output: 30 <nil>
}

func ExampleThreadPool_Shutdown() {
	p := pool.NewThreadPool(pool.WithWorkerCount(2))

	var (
		mu   sync.Mutex
		seen []int
	)
	for i := range 5 {
		_, _ = p.Execute(func() error {
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
			return nil
		})
	}

	p.Shutdown()

	_, err := p.Execute(func() error { return nil })
	sort.Ints(seen)
	fmt.Println(seen)
	fmt.Println(errors.Is(err, pool.ErrPoolStopped))
	// Output:
	// [0 1 2 3 4]
	// true
}

func ExampleWithQueueCapacity() {
	p := pool.NewThreadPool(pool.WithWorkerCount(1), pool.WithQueueCapacity(1))
	defer p.Close()

	started, release := make(chan struct{}), make(chan struct{})
	_, _ = p.Execute(func() error {
		close(started)
		<-release
		return nil
	})
	<-started

	_, err1 := p.Execute(func() error { return nil })
	_, err2 := p.Execute(func() error { return nil })
	close(release)

	fmt.Println(err1)
	fmt.Println(err2)
	// Output:
	// <nil>
	// task queue is full
}

func ExampleFuture_Get_panic() {
	p := pool.NewThreadPool(pool.WithWorkerCount(1))
	defer p.Close()

	future, _ := pool.Submit(p, func() (string, error) {
		panic("bad input")
	})

	_, err := future.Get()
	var pe *pool.PanicError
	if errors.As(err, &pe) {
		fmt.Println("recovered:", pe.Value)
	}
	// Output: recovered: bad input
}
