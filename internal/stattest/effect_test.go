package stattest

import (
	"math"
	"testing"
)

func TestEffectSize_IdenticalSamples(t *testing.T) {
	sample := symmetricSample(10, 2, 20)

	result := EffectSize(sample, sample)
	if result.CohensD != 0.0 {
		t.Errorf("Cohen's d = %v, want exactly 0.0 for identical samples", result.CohensD)
	}
	if result.RelativeChangePct == nil {
		t.Fatal("relative change should be defined for non-zero baseline mean")
	}
	if *result.RelativeChangePct != 0.0 {
		t.Errorf("relative change = %v, want 0.0", *result.RelativeChangePct)
	}
}

func TestEffectSize_SignMatchesMeanDifference(t *testing.T) {
	tests := []struct {
		name         string
		baselineMean float64
		testMean     float64
	}{
		{"test above baseline", 10, 14},
		{"test below baseline", 14, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseline := symmetricSample(tt.baselineMean, 1, 20)
			test := symmetricSample(tt.testMean, 1, 20)

			result := EffectSize(baseline, test)
			meanDiff := tt.testMean - tt.baselineMean

			if math.Signbit(result.CohensD) != math.Signbit(meanDiff) {
				t.Errorf("Cohen's d = %v, sign should match mean difference %v", result.CohensD, meanDiff)
			}
			if result.RelativeChangePct == nil {
				t.Fatal("relative change should be defined")
			}
			if math.Signbit(*result.RelativeChangePct) != math.Signbit(meanDiff) {
				t.Errorf("relative change = %v, sign should match mean difference %v", *result.RelativeChangePct, meanDiff)
			}
		})
	}
}

func TestEffectSize_ConstantDataYieldsZero(t *testing.T) {
	result := EffectSize(symmetricSample(5, 0, 10), symmetricSample(5, 0, 10))
	if result.CohensD != 0.0 {
		t.Errorf("Cohen's d = %v, want 0.0 for constant data", result.CohensD)
	}
}

func TestEffectSize_ZeroBaselineMeanIsUndefined(t *testing.T) {
	baseline := symmetricSample(0, 1, 10)
	test := symmetricSample(3, 1, 10)

	result := EffectSize(baseline, test)
	if result.RelativeChangePct != nil {
		t.Errorf("relative change = %v, want nil sentinel for zero baseline mean", *result.RelativeChangePct)
	}
	if result.CohensD == 0 {
		t.Error("Cohen's d should still be computed when only the relative change is undefined")
	}
}

func TestEffectSize_KnownMagnitude(t *testing.T) {
	// Means 0.045 vs 0.030 with matched spread 0.02074 puts the pooled
	// SD near 0.02083, so d should land close to -0.72.
	baseline := symmetricSample(0.045, 0.02074, 100)
	test := symmetricSample(0.030, 0.02074, 120)

	result := EffectSize(baseline, test)
	if math.Abs(result.CohensD-(-0.72)) > 0.02 {
		t.Errorf("Cohen's d = %v, want about -0.72", result.CohensD)
	}
	if result.RelativeChangePct == nil {
		t.Fatal("relative change should be defined")
	}
	if math.Abs(*result.RelativeChangePct-(-33.33)) > 0.1 {
		t.Errorf("relative change = %v%%, want about -33.33%%", *result.RelativeChangePct)
	}
}

func TestEffectSize_SingleElementSamples(t *testing.T) {
	result := EffectSize([]float64{1}, []float64{2})
	if result.CohensD != 0.0 {
		t.Errorf("Cohen's d = %v, want 0.0 when degrees of freedom run out", result.CohensD)
	}
}
