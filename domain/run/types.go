package run

import (
	"time"

	"adsight/domain/core"
	"adsight/domain/evidence"
)

// Failure records a hypothesis whose evaluation stopped on a contract
// violation. Failures never abort sibling evaluations in the same run.
type Failure struct {
	HypothesisID core.HypothesisID `json:"hypothesis_id"`
	Error        string            `json:"error"`
}

// Summary aggregates the outcome of one validation run
type Summary struct {
	RunID      core.RunID                  `json:"run_id"`
	StartedAt  time.Time                   `json:"started_at"`
	FinishedAt time.Time                   `json:"finished_at"`
	Results    []evidence.ValidationResult `json:"results"`
	Failures   []Failure                   `json:"failures"`
}

// ResultFor returns the result for a hypothesis, if one was produced
func (s Summary) ResultFor(id core.HypothesisID) (evidence.ValidationResult, bool) {
	for _, r := range s.Results {
		if r.HypothesisID == id {
			return r, true
		}
	}
	return evidence.ValidationResult{}, false
}
