package app

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"adsight/domain/core"
	"adsight/domain/evidence"
	"adsight/domain/hypothesis"
	"adsight/domain/run"
	"adsight/internal/engine"
)

// DefaultMaxParallel bounds concurrent hypothesis evaluations. Runs
// typically carry single-digit hypothesis counts, so a small bound keeps
// the fan-out predictable without queueing.
const DefaultMaxParallel = 4

// RunService evaluates a batch of hypotheses against shared evidence.
// Each hypothesis is evaluated independently - no evaluation reads or
// mutates state produced by another - so the fan-out needs no locking
// beyond result collection.
type RunService struct {
	engine      *engine.Engine
	maxParallel int64
}

// NewRunService creates a run service around a validation engine
func NewRunService(eng *engine.Engine) *RunService {
	return &RunService{engine: eng, maxParallel: DefaultMaxParallel}
}

// WithMaxParallel overrides the evaluation concurrency bound
func (s *RunService) WithMaxParallel(n int64) *RunService {
	if n > 0 {
		s.maxParallel = n
	}
	return s
}

// Execute evaluates every hypothesis and assembles a run summary. A
// fatal contract violation on one hypothesis is recorded as a failure
// and never aborts its siblings. Results are tagged with the run ID and
// returned in a stable order (by hypothesis ID).
func (s *RunService) Execute(ctx context.Context, hypotheses []hypothesis.Hypothesis, ev evidence.Evidence) run.Summary {
	runID := core.NewRunID()
	startedAt := time.Now().UTC()
	log.Printf("[RunService] run %s: evaluating %d hypotheses", runID, len(hypotheses))

	var (
		mu       sync.Mutex
		results  []evidence.ValidationResult
		failures []run.Failure
	)

	sem := semaphore.NewWeighted(s.maxParallel)
	var wg sync.WaitGroup
	for _, hyp := range hypotheses {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			failures = append(failures, run.Failure{HypothesisID: hyp.ID, Error: err.Error()})
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(hyp hypothesis.Hypothesis) {
			defer wg.Done()
			defer sem.Release(1)

			result, err := s.engine.Validate(ctx, hyp, ev)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[RunService] run %s: hypothesis %s failed: %v", runID, hyp.ID, err)
				failures = append(failures, run.Failure{HypothesisID: hyp.ID, Error: err.Error()})
				return
			}
			result.RunID = runID
			results = append(results, result)
		}(hyp)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].HypothesisID < results[j].HypothesisID
	})
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].HypothesisID < failures[j].HypothesisID
	})

	summary := run.Summary{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Results:    results,
		Failures:   failures,
	}
	log.Printf("[RunService] run %s: %d results, %d failures", runID, len(results), len(failures))
	return summary
}
