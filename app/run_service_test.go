package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsight/domain/core"
	"adsight/domain/evidence"
	"adsight/domain/hypothesis"
	"adsight/internal/engine"
)

func shiftedPair(t *testing.T, metric core.MetricKey, baselineMean, testMean float64) evidence.SamplePair {
	t.Helper()

	makeSample := func(mean float64) []float64 {
		values := make([]float64, 40)
		for i := 0; i < 40; i += 2 {
			values[i] = mean - 0.5
			values[i+1] = mean + 0.5
		}
		return values
	}

	pair, err := evidence.NewSamplePair(metric, makeSample(baselineMean), makeSample(testMean))
	require.NoError(t, err)
	return pair
}

func TestRunService_SiblingIsolation(t *testing.T) {
	svc := NewRunService(engine.New())

	ev := evidence.Evidence{
		Samples: map[core.MetricKey]evidence.SamplePair{
			"ctr": shiftedPair(t, "ctr", 10, 6),
		},
		Refs: []string{"dataset:test"},
	}

	hypotheses := []hypothesis.Hypothesis{
		{ID: "a", Driver: hypothesis.DriverCTRDrop, PriorConfidence: 0.6, TargetMetric: "ctr"},
		// Contract violation: confidence out of range.
		{ID: "b", Driver: hypothesis.DriverSpendShift, PriorConfidence: 2.0, TargetMetric: "ctr"},
		// Missing sample pair: reported, not fatal.
		{ID: "c", Driver: hypothesis.DriverCPMIncrease, PriorConfidence: 0.5, TargetMetric: "cpm"},
	}

	summary := svc.Execute(context.Background(), hypotheses, ev)

	require.Len(t, summary.Results, 2, "one fatal hypothesis must not abort siblings")
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, core.HypothesisID("b"), summary.Failures[0].HypothesisID)
	assert.NotEmpty(t, summary.Failures[0].Error)

	validated, ok := summary.ResultFor("a")
	require.True(t, ok)
	assert.Equal(t, evidence.StatusValidated, validated.Status)
	assert.Equal(t, summary.RunID, validated.RunID)

	missing, ok := summary.ResultFor("c")
	require.True(t, ok)
	assert.Equal(t, evidence.StatusInconclusive, missing.Status)
	assert.NotEmpty(t, missing.Notes)
}

func TestRunService_ConcurrentEvaluationsMatchSequential(t *testing.T) {
	ev := evidence.Evidence{
		Samples: map[core.MetricKey]evidence.SamplePair{
			"ctr": shiftedPair(t, "ctr", 10, 6),
		},
	}

	hypotheses := make([]hypothesis.Hypothesis, 6)
	for i := range hypotheses {
		hypotheses[i] = hypothesis.Hypothesis{
			ID:              core.HypothesisID(string(rune('a' + i))),
			Driver:          hypothesis.DriverCTRDrop,
			PriorConfidence: 0.6,
			TargetMetric:    "ctr",
		}
	}

	parallel := NewRunService(engine.New()).Execute(context.Background(), hypotheses, ev)
	sequential := NewRunService(engine.New()).WithMaxParallel(1).Execute(context.Background(), hypotheses, ev)

	require.Len(t, parallel.Results, len(hypotheses))
	require.Len(t, sequential.Results, len(hypotheses))
	for i := range parallel.Results {
		// Identical statistical output regardless of scheduling: the
		// bootstrap seed is per-invocation, never shared state.
		assert.Equal(t, sequential.Results[i].Validation, parallel.Results[i].Validation)
		assert.Equal(t, sequential.Results[i].ConfidenceFinal, parallel.Results[i].ConfidenceFinal)
		assert.Equal(t, sequential.Results[i].Status, parallel.Results[i].Status)
	}
}

func TestRunService_EmptyBatch(t *testing.T) {
	summary := NewRunService(engine.New()).Execute(context.Background(), nil, evidence.Evidence{})
	assert.Empty(t, summary.Results)
	assert.Empty(t, summary.Failures)
	assert.False(t, summary.RunID == "")
}
