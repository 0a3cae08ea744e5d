package stattest

import (
	"math"

	"github.com/montanaflynn/stats"
)

// EffectResult carries the standardized effect size and the relative
// percentage change between the two windows. RelativeChangePct is nil
// when the baseline mean is zero, signalling missing evidence rather
// than failing the validation.
type EffectResult struct {
	CohensD           float64
	RelativeChangePct *float64
}

// EffectSize computes Cohen's d with pooled standard deviation and the
// relative change of the test mean against the baseline mean. Constant
// data yields an effect size of 0.0 instead of a division by zero.
func EffectSize(baseline, test []float64) EffectResult {
	result := EffectResult{CohensD: cohensD(baseline, test)}

	baselineMean, _ := stats.Mean(baseline)
	testMean, _ := stats.Mean(test)
	if baselineMean != 0 {
		pct := (testMean - baselineMean) / baselineMean * 100.0
		result.RelativeChangePct = &pct
	}
	return result
}

func cohensD(baseline, test []float64) float64 {
	n1 := float64(len(baseline))
	n2 := float64(len(test))
	if n1+n2-2 <= 0 {
		return 0.0
	}

	var1 := 0.0
	if n1 > 1 {
		var1, _ = stats.SampleVariance(baseline)
	}
	var2 := 0.0
	if n2 > 1 {
		var2, _ = stats.SampleVariance(test)
	}

	pooledSD := math.Sqrt(((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2))
	if pooledSD == 0 {
		return 0.0
	}

	mean1, _ := stats.Mean(baseline)
	mean2, _ := stats.Mean(test)
	return (mean2 - mean1) / pooledSD
}
