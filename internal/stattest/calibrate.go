package stattest

import (
	"math"

	"adsight/domain/evidence"
)

// CalibrationConfig holds the tunable constants for confidence
// calibration. The defaults are validated against the worked CTR-drop
// example in the engine tests; they are deliberate tunables, not law.
type CalibrationConfig struct {
	StrongP        float64 // p-value band edges for statistical support
	ModerateP      float64
	StrongWeight   float64 // support weights per band
	ModerateWeight float64
	WeakWeight     float64

	EffectSaturation float64 // |d| at which effect scaling saturates
	EffectFloor      float64 // minimum effect scale, keeps weight positive

	MinReliableN       int     // below this in either group, penalize
	SmallSamplePenalty float64 // multiplicative penalty for small samples

	StatBlend float64 // share of the blend given to statistical evidence

	ValidateConfidence float64 // status decision thresholds
	RefuteConfidence   float64
	MinEffect          float64
}

// DefaultCalibrationConfig returns the standard calibration constants
func DefaultCalibrationConfig() CalibrationConfig {
	return CalibrationConfig{
		StrongP:            0.01,
		ModerateP:          0.05,
		StrongWeight:       1.0,
		ModerateWeight:     0.6,
		WeakWeight:         0.2,
		EffectSaturation:   0.8,
		EffectFloor:        0.1,
		MinReliableN:       10,
		SmallSamplePenalty: 0.5,
		StatBlend:          0.7,
		ValidateConfidence: 0.6,
		RefuteConfidence:   0.4,
		MinEffect:          0.2,
	}
}

// CalibrationResult is the blended confidence and terminal status
type CalibrationResult struct {
	ConfidenceFinal float64
	Status          evidence.Status
}

// Calibrate combines the prior confidence stated by the hypothesis with
// the empirical statistical evidence into one final confidence score and
// a terminal status. Deterministic, bit-for-bit reproducible:
//  1. p-value maps to a banded support weight (strong/moderate/weak).
//  2. The weight scales with effect magnitude, saturating at
//     EffectSaturation; a near-zero effect caps confidence low no matter
//     how small the p-value.
//  3. Small samples in either group penalize the weight.
//  4. Statistical weight and prior blend StatBlend/(1-StatBlend),
//     clipped to [0,1].
//  5. Ambiguous evidence always resolves to INCONCLUSIVE.
func Calibrate(prior, pValue, effectSize float64, baselineN, testN int, cfg CalibrationConfig) CalibrationResult {
	support := cfg.WeakWeight
	if pValue < cfg.StrongP {
		support = cfg.StrongWeight
	} else if pValue < cfg.ModerateP {
		support = cfg.ModerateWeight
	}

	absEffect := math.Abs(effectSize)
	effectScale := absEffect / cfg.EffectSaturation
	effectScale = math.Max(cfg.EffectFloor, math.Min(1.0, effectScale))

	weight := support * effectScale
	if min(baselineN, testN) < cfg.MinReliableN {
		weight *= cfg.SmallSamplePenalty
	}

	confidence := cfg.StatBlend*weight + (1-cfg.StatBlend)*prior
	confidence = clampUnit(confidence)

	status := evidence.StatusInconclusive
	switch {
	case confidence >= cfg.ValidateConfidence && pValue < cfg.ModerateP && absEffect >= cfg.MinEffect:
		status = evidence.StatusValidated
	case pValue >= cfg.ModerateP && absEffect < cfg.MinEffect && confidence < cfg.RefuteConfidence:
		status = evidence.StatusRefuted
	}

	return CalibrationResult{
		ConfidenceFinal: confidence,
		Status:          status,
	}
}
