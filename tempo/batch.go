package tempo

import (
	"fmt"
	"runtime"
	"sync"
)

// EstimateAll runs Estimate over several independent activation signals
// with a bounded worker pool. The estimator holds no cross-call state, so
// the calls need no coordination beyond collecting their results; results
// are returned in input order. The first failing signal aborts the batch
// with its error.
func (e *Estimator) EstimateAll(signals [][]float64) ([]Result, error) {
	results := make([]Result, len(signals))
	errs := make([]error, len(signals))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(signals) {
		workers = len(signals)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = e.Estimate(signals[i])
			}
		}()
	}
	for i := range signals {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("activation signal %d: %w", i, err)
		}
	}
	return results, nil
}
