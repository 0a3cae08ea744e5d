package testkit

import (
	"math/rand"
	"time"

	"adsight/domain/core"
	"adsight/domain/evidence"
)

// MetricsGeneratorConfig configures the synthetic ad-metrics generator
type MetricsGeneratorConfig struct {
	Metric        core.MetricKey `json:"metric"`
	BaselineMean  float64        `json:"baseline_mean"`
	TestMean      float64        `json:"test_mean"`
	NoiseStdDev   float64        `json:"noise_std_dev"`
	BaselineDays  int            `json:"baseline_days"`
	TestDays      int            `json:"test_days"`
	StartDate     time.Time      `json:"start_date"`
	Seed          int64          `json:"seed"`
}

// DefaultMetricsConfig returns a CTR-drop scenario: healthy CTR that
// degrades in the test window.
func DefaultMetricsConfig() MetricsGeneratorConfig {
	return MetricsGeneratorConfig{
		Metric:       "ctr",
		BaselineMean: 0.045,
		TestMean:     0.030,
		NoiseStdDev:  0.004,
		BaselineDays: 28,
		TestDays:     14,
		StartDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Seed:         42,
	}
}

// MetricsGenerator produces deterministic synthetic metric evidence
type MetricsGenerator struct {
	config MetricsGeneratorConfig
	rng    *rand.Rand
}

// NewMetricsGenerator creates a generator seeded from its config
func NewMetricsGenerator(config MetricsGeneratorConfig) *MetricsGenerator {
	return &MetricsGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateEvidence builds a sample pair and daily series for the
// configured metric, with a mean shift at the baseline/test boundary.
func (g *MetricsGenerator) GenerateEvidence() evidence.Evidence {
	cfg := g.config

	baseline := g.window(cfg.BaselineMean, cfg.BaselineDays)
	test := g.window(cfg.TestMean, cfg.TestDays)

	points := make([]evidence.Point, 0, cfg.BaselineDays+cfg.TestDays)
	day := cfg.StartDate
	for _, value := range baseline {
		points = append(points, evidence.Point{Timestamp: day, Value: value})
		day = day.AddDate(0, 0, 1)
	}
	for _, value := range test {
		points = append(points, evidence.Point{Timestamp: day, Value: value})
		day = day.AddDate(0, 0, 1)
	}

	pair := evidence.SamplePair{
		Metric:    cfg.Metric,
		Baseline:  baseline,
		Test:      test,
		BaselineN: len(baseline),
		TestN:     len(test),
	}

	return evidence.Evidence{
		Samples: map[core.MetricKey]evidence.SamplePair{cfg.Metric: pair},
		Series:  map[core.MetricKey]evidence.TimeSeries{cfg.Metric: {Metric: cfg.Metric, Points: points}},
		Refs:    []string{"synthetic:" + cfg.Metric.String()},
	}
}

func (g *MetricsGenerator) window(mean float64, days int) []float64 {
	values := make([]float64, days)
	for i := range values {
		values[i] = mean + g.rng.NormFloat64()*g.config.NoiseStdDev
	}
	return values
}
