// Package parallel fans independent tuning trials out over a bounded set of
// worker goroutines. Trials share no mutable state, so the only coordination
// needed is handing out indices and waiting for completion.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultWorkers returns a worker count sized to the machine.
func DefaultWorkers() int { return runtime.NumCPU() }

// Trials executes f(i) for every i in [0, n). With workers at most 1, or a
// single trial, it runs sequentially on the calling goroutine; otherwise it
// feeds indices to up to workers goroutines and blocks until all complete.
// Each f(i) must be independent of the others.
func Trials(n, workers int, f func(i int)) {
	if workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	next := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				f(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		next <- i
	}
	close(next)
	wg.Wait()
}
