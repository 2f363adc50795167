package sim

import (
	"context"
	"fmt"
	"sync"
)

// Ensemble runs independent worlds concurrently. Each run gets its own
// Runner from the factory, so no physics state is shared between goroutines.
type Ensemble struct {
	factory func(idx int) (*Runner, error)
	numRuns int
}

func NewEnsemble(numRuns int, factory func(idx int) (*Runner, error)) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			r, err := e.factory(idx)
			if err != nil {
				errs[idx] = fmt.Errorf("run %d: %w", idx, err)
				return
			}
			results[idx], errs[idx] = r.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
