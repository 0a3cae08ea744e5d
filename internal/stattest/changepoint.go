package stattest

import (
	"math"

	"github.com/montanaflynn/stats"
)

// ChangePointConfig holds the tunable constants for regime-shift detection
type ChangePointConfig struct {
	MinSegment int     // minimum points on each side of a candidate split
	MinScore   float64 // best split must reach this score to be reported
}

// DefaultChangePointConfig returns the standard detection constants
func DefaultChangePointConfig() ChangePointConfig {
	return ChangePointConfig{
		MinSegment: 5,
		MinScore:   3.0,
	}
}

// DetectChangePoint scans an ordered series for the split index where
// the statistical regime most plausibly shifts. Each candidate split is
// scored by the difference in segment means normalized by pooled segment
// variance, so the score grows monotonically with a genuine mean shift
// and stays small on same-distribution noise. Returns nil when the
// series is too short for attribution or the best score does not clear
// the gate. Deterministic for identical input.
func DetectChangePoint(values []float64, cfg ChangePointConfig) *int {
	n := len(values)
	if n < 2*cfg.MinSegment {
		return nil
	}

	bestScore := 0.0
	bestIdx := -1
	for idx := cfg.MinSegment; idx <= n-cfg.MinSegment; idx++ {
		score := splitScore(values[:idx], values[idx:])
		if score > bestScore {
			bestScore = score
			bestIdx = idx
		}
	}

	if bestIdx < 0 || bestScore < cfg.MinScore {
		return nil
	}
	return &bestIdx
}

// splitScore is a two-segment Welch-style statistic: the absolute mean
// difference scaled by the pooled segment variance. A clean step on
// zero-variance segments scores +Inf; identical constant segments score 0.
func splitScore(left, right []float64) float64 {
	nL := float64(len(left))
	nR := float64(len(right))

	meanL, _ := stats.Mean(left)
	meanR, _ := stats.Mean(right)

	varL, _ := stats.SampleVariance(left)
	varR, _ := stats.SampleVariance(right)

	pooledVar := ((nL-1)*varL + (nR-1)*varR) / (nL + nR - 2)
	if pooledVar == 0 {
		if meanL == meanR {
			return 0
		}
		return math.Inf(1)
	}

	return math.Abs(meanL-meanR) / math.Sqrt(pooledVar*(1/nL+1/nR))
}
