package testkit

import (
	"context"
	"sort"
	"sync"

	"adsight/domain/core"
	"adsight/domain/run"
	"adsight/ports"
)

// InMemoryResultRepository is a map-backed result store for tests and
// the CLI's no-database mode.
type InMemoryResultRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]run.Summary
}

var _ ports.ResultRepositoryPort = (*InMemoryResultRepository)(nil)

// NewInMemoryResultRepository creates an empty in-memory repository
func NewInMemoryResultRepository() *InMemoryResultRepository {
	return &InMemoryResultRepository{runs: make(map[core.RunID]run.Summary)}
}

// SaveRun stores a run summary
func (r *InMemoryResultRepository) SaveRun(_ context.Context, summary run.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[summary.RunID] = summary
	return nil
}

// GetRun loads one run summary
func (r *InMemoryResultRepository) GetRun(_ context.Context, id core.RunID) (run.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summary, ok := r.runs[id]
	if !ok {
		return run.Summary{}, core.ErrRunNotFound
	}
	return summary, nil
}

// ListRuns returns stored runs, newest first
func (r *InMemoryResultRepository) ListRuns(_ context.Context, limit int) ([]run.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]run.Summary, 0, len(r.runs))
	for _, summary := range r.runs {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartedAt.After(summaries[j].StartedAt)
	})

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
