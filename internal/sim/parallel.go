package sim

import (
	"sync"
	"time"
)

// Compare integrates every run concurrently, one goroutine per run.
// Outcomes come back in input order; a failing run does not affect the
// others.
func Compare(runs []Run) []Outcome {
	out := make([]Outcome, len(runs))

	var wg sync.WaitGroup
	for i := range runs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			start := time.Now()
			tr, err := IntegrateWith(runs[idx])
			out[idx] = Outcome{
				Run:        runs[idx],
				Trajectory: tr,
				Err:        err,
				Elapsed:    time.Since(start),
			}
		}(i)
	}

	wg.Wait()
	return out
}

// Failed returns the outcomes that ended in an error.
func Failed(outcomes []Outcome) []Outcome {
	var bad []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			bad = append(bad, o)
		}
	}
	return bad
}
