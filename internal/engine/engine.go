package engine

import (
	"context"
	"fmt"
	"log"

	"adsight/domain/core"
	"adsight/domain/evidence"
	"adsight/domain/hypothesis"
	"adsight/internal/stattest"
)

// Config bundles the tunable constants for one engine instance
type Config struct {
	Compare     stattest.CompareConfig
	ChangePoint stattest.ChangePointConfig
	Calibration stattest.CalibrationConfig
}

// DefaultConfig returns the standard engine constants
func DefaultConfig() Config {
	return Config{
		Compare:     stattest.DefaultCompareConfig(),
		ChangePoint: stattest.DefaultChangePointConfig(),
		Calibration: stattest.DefaultCalibrationConfig(),
	}
}

// Engine assembles one ValidationResult per hypothesis by driving the
// comparator, effect size calculator, change-point detector, and
// confidence calibrator in fixed order. Stateless; evaluations of
// different hypotheses share nothing and may run concurrently.
type Engine struct {
	cfg Config
}

// New creates an engine with the default constants
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an engine with explicit constants
func NewWithConfig(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Validate evaluates one hypothesis against the materialized evidence.
// Statistical edge cases are folded into the result; a structural
// contract violation on the hypothesis is returned as an error and must
// not abort sibling evaluations. Either a complete result is returned
// or an error - never a partial result.
func (e *Engine) Validate(ctx context.Context, hyp hypothesis.Hypothesis, ev evidence.Evidence) (evidence.ValidationResult, error) {
	if err := hyp.Validate(); err != nil {
		return evidence.ValidationResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return evidence.ValidationResult{}, err
	}

	pair, ok := ev.SampleFor(hyp.TargetMetric)
	if !ok {
		log.Printf("[Engine] hypothesis %s: no sample pair for metric %s", hyp.ID, hyp.TargetMetric)
		return e.missingInputResult(hyp, ev), nil
	}

	compared := stattest.Compare(pair.Baseline, pair.Test, e.cfg.Compare)
	effect := stattest.EffectSize(pair.Baseline, pair.Test)

	var changePoint *int
	if series, found := ev.SeriesFor(hyp.TargetMetric); found && len(series.Points) > 0 {
		changePoint = stattest.DetectChangePoint(series.Values(), e.cfg.ChangePoint)
	}

	calibrated := stattest.Calibrate(
		hyp.PriorConfidence,
		compared.PValue,
		effect.CohensD,
		pair.BaselineN,
		pair.TestN,
		e.cfg.Calibration,
	)

	notes := fmt.Sprintf("evaluated driver=%s on metric %s using %s", hyp.Driver, hyp.TargetMetric, compared.Method)
	if compared.Note != "" {
		notes += "; " + compared.Note
	}
	if effect.RelativeChangePct == nil {
		notes += "; relative change undefined (baseline mean is zero)"
	}

	return evidence.ValidationResult{
		HypothesisID: hyp.ID,
		Validation: evidence.ValidationBlock{
			Metric:             hyp.TargetMetric.String(),
			BaselineMean:       compared.BaselineMean,
			TestMean:           compared.TestMean,
			RelativeChangePct:  effect.RelativeChangePct,
			PValue:             compared.PValue,
			EffectSize:         effect.CohensD,
			SampleSizeBaseline: pair.BaselineN,
			SampleSizeTest:     pair.TestN,
			ChangePoint:        changePoint,
		},
		ConfidenceFinal: calibrated.ConfidenceFinal,
		Status:          calibrated.Status,
		Notes:           notes,
		EvidenceRefs:    ev.Refs,
	}, nil
}

// missingInputResult reports an absent sample pair as an INCONCLUSIVE
// verdict naming the missing input. A reported condition, not a fatal one.
func (e *Engine) missingInputResult(hyp hypothesis.Hypothesis, ev evidence.Evidence) evidence.ValidationResult {
	err := core.NewMissingInputError(hyp.ID, hyp.TargetMetric)
	return evidence.ValidationResult{
		HypothesisID: hyp.ID,
		Validation: evidence.ValidationBlock{
			Metric: hyp.TargetMetric.String(),
			PValue: 1.0,
		},
		ConfidenceFinal: 0.2,
		Status:          evidence.StatusInconclusive,
		Notes:           err.Error(),
		EvidenceRefs:    ev.Refs,
	}
}
