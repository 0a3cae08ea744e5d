package evidence

import (
	"fmt"
	"time"

	"adsight/domain/core"
)

// Status is the terminal verdict for one hypothesis evaluation
type Status string

const (
	StatusValidated    Status = "VALIDATED"
	StatusRefuted      Status = "REFUTED"
	StatusInconclusive Status = "INCONCLUSIVE"
)

// SamplePair holds the baseline and test observations for one metric.
// Sizes are recorded separately so they survive even if the raw
// sequences are discarded after analysis.
type SamplePair struct {
	Metric    core.MetricKey
	Baseline  []float64
	Test      []float64
	BaselineN int
	TestN     int
}

// NewSamplePair builds a SamplePair, enforcing the non-empty invariant
func NewSamplePair(metric core.MetricKey, baseline, test []float64) (SamplePair, error) {
	if len(baseline) == 0 {
		return SamplePair{}, fmt.Errorf("%w: empty baseline for metric %s", core.ErrInsufficientData, metric)
	}
	if len(test) == 0 {
		return SamplePair{}, fmt.Errorf("%w: empty test window for metric %s", core.ErrInsufficientData, metric)
	}
	return SamplePair{
		Metric:    metric,
		Baseline:  baseline,
		Test:      test,
		BaselineN: len(baseline),
		TestN:     len(test),
	}, nil
}

// Point is one observation in a metric time series
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// TimeSeries is an ordered sequence of observations for one metric,
// strictly increasing in timestamp. Used only for change-point detection.
type TimeSeries struct {
	Metric core.MetricKey
	Points []Point
}

// Validate checks the strictly-increasing timestamp invariant
func (ts TimeSeries) Validate() error {
	for i := 1; i < len(ts.Points); i++ {
		if !ts.Points[i].Timestamp.After(ts.Points[i-1].Timestamp) {
			return fmt.Errorf("time series for %s not strictly increasing at index %d", ts.Metric, i)
		}
	}
	return nil
}

// Values returns the ordered observation values
func (ts TimeSeries) Values() []float64 {
	values := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		values[i] = p.Value
	}
	return values
}

// Evidence is the materialized input for one engine invocation: sample
// pairs keyed by metric, optional time series keyed by metric, and
// references to the artifacts the data was drawn from.
type Evidence struct {
	Samples map[core.MetricKey]SamplePair
	Series  map[core.MetricKey]TimeSeries
	Refs    []string
}

// SampleFor looks up the sample pair for a metric
func (e Evidence) SampleFor(metric core.MetricKey) (SamplePair, bool) {
	pair, ok := e.Samples[metric]
	return pair, ok
}

// SeriesFor looks up the optional time series for a metric
func (e Evidence) SeriesFor(metric core.MetricKey) (TimeSeries, bool) {
	series, ok := e.Series[metric]
	return series, ok
}

// ValidationBlock carries the statistical evidence for one metric
// comparison. Field names are the published contract for downstream
// report generation and must remain stable.
type ValidationBlock struct {
	Metric             string   `json:"metric"`
	BaselineMean       float64  `json:"baseline_mean"`
	TestMean           float64  `json:"test_mean"`
	RelativeChangePct  *float64 `json:"relative_change_pct"`
	PValue             float64  `json:"p_value"`
	EffectSize         float64  `json:"effect_size"`
	SampleSizeBaseline int      `json:"sample_size_baseline"`
	SampleSizeTest     int      `json:"sample_size_test"`
	ChangePoint        *int     `json:"change_point"`
}

// ValidationResult is the single output entity for one hypothesis
// evaluation. Created once per evaluation call, never mutated after
// assembly, owned by the caller.
type ValidationResult struct {
	HypothesisID    core.HypothesisID `json:"hypothesis_id"`
	Validation      ValidationBlock   `json:"validation"`
	ConfidenceFinal float64           `json:"confidence_final"`
	Status          Status            `json:"status"`
	Notes           string            `json:"notes"`
	EvidenceRefs    []string          `json:"evidence_refs"`

	// RunID is an opaque tag attached by the orchestration layer for
	// persistence; it is not part of the published result contract.
	RunID core.RunID `json:"-"`
}
