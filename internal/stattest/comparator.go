package stattest

import (
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Method identifies which significance test produced a p-value
type Method string

const (
	MethodTTest     Method = "t_test"
	MethodBootstrap Method = "bootstrap"
)

// CompareConfig holds the tunable constants for metric comparison
type CompareConfig struct {
	MinSamplesForTTest int   // below this in either group, fall back to bootstrap
	BootstrapIters     int   // resampling iterations for the bootstrap path
	Seed               int64 // explicit seed so bootstrap p-values are reproducible
}

// DefaultCompareConfig returns the standard comparison constants
func DefaultCompareConfig() CompareConfig {
	return CompareConfig{
		MinSamplesForTTest: 30,
		BootstrapIters:     2000,
		Seed:               42,
	}
}

// CompareResult is the outcome of comparing one metric across two windows
type CompareResult struct {
	PValue       float64
	BaselineMean float64
	TestMean     float64
	Method       Method
	Note         string // non-empty when the test was uninformative
}

// Compare selects and runs the appropriate significance test for a
// baseline/test sample pair. Welch's t-test when both groups have at
// least MinSamplesForTTest observations, seeded bootstrap otherwise.
// Degenerate inputs never fail; they yield p=1.0 with an explanatory
// note. Pure function: inputs are not mutated, and the bootstrap RNG
// is created per invocation from the configured seed.
func Compare(baseline, test []float64, cfg CompareConfig) CompareResult {
	baselineMean, _ := stats.Mean(baseline)
	testMean, _ := stats.Mean(test)

	result := CompareResult{
		PValue:       1.0,
		BaselineMean: baselineMean,
		TestMean:     testMean,
	}

	if min(len(baseline), len(test)) >= cfg.MinSamplesForTTest {
		result.Method = MethodTTest
		result.PValue, result.Note = welchPValue(baseline, test)
		return result
	}

	result.Method = MethodBootstrap
	if len(baseline) < 2 || len(test) < 2 {
		result.Note = "test uninformative: single-element sample"
		return result
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	result.PValue = bootstrapPValue(baseline, test, cfg.BootstrapIters, rng)
	return result
}

// welchPValue computes the two-sided p-value of Welch's unequal-variance
// t-test using the Student's t distribution with Welch-Satterthwaite
// degrees of freedom.
func welchPValue(baseline, test []float64) (float64, string) {
	n1 := float64(len(baseline))
	n2 := float64(len(test))

	var1, _ := stats.SampleVariance(baseline)
	var2, _ := stats.SampleVariance(test)

	se := math.Sqrt(var1/n1 + var2/n2)
	if se == 0 {
		return 1.0, "test uninformative: zero variance in both samples"
	}

	mean1, _ := stats.Mean(baseline)
	mean2, _ := stats.Mean(test)
	tStat := (mean2 - mean1) / se

	// Welch-Satterthwaite degrees of freedom
	df := math.Pow(var1/n1+var2/n2, 2) /
		(math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue := 2 * dist.CDF(-math.Abs(tStat))
	return clampUnit(pValue), ""
}

// bootstrapPValue estimates a two-sided empirical p-value by resampling
// the combined samples with replacement and measuring how often the
// resampled mean difference is at least as extreme as the observed one.
// The result is floored at 1/iterations so an exact zero is never reported.
func bootstrapPValue(baseline, test []float64, iterations int, rng *rand.Rand) float64 {
	combined := make([]float64, 0, len(baseline)+len(test))
	combined = append(combined, baseline...)
	combined = append(combined, test...)

	nBaseline := len(baseline)
	baselineMean, _ := stats.Mean(baseline)
	testMean, _ := stats.Mean(test)
	observed := math.Abs(testMean - baselineMean)

	resample := make([]float64, len(combined))
	extremeCount := 0
	for i := 0; i < iterations; i++ {
		for j := range resample {
			resample[j] = combined[rng.Intn(len(combined))]
		}
		leftMean, _ := stats.Mean(resample[:nBaseline])
		rightMean, _ := stats.Mean(resample[nBaseline:])
		if math.Abs(rightMean-leftMean) >= observed {
			extremeCount++
		}
	}

	pValue := float64(extremeCount) / float64(iterations)
	epsilon := 1.0 / float64(iterations)
	return math.Max(pValue, epsilon)
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
