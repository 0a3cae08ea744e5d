package evidence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The marshalled result is the published contract for downstream
// report generation; field names and types must not drift.
func TestValidationResult_ContractShape(t *testing.T) {
	relChange := -32.1
	changePoint := 14

	result := ValidationResult{
		HypothesisID: "H1",
		Validation: ValidationBlock{
			Metric:             "ctr",
			BaselineMean:       0.045,
			TestMean:           0.030,
			RelativeChangePct:  &relChange,
			PValue:             0.004,
			EffectSize:         -0.72,
			SampleSizeBaseline: 100,
			SampleSizeTest:     120,
			ChangePoint:        &changePoint,
		},
		ConfidenceFinal: 0.78,
		Status:          StatusValidated,
		Notes:           "evaluated driver=ctr_drop on metric ctr using t_test",
		EvidenceRefs:    []string{"dataset:fb_ads_daily.csv"},
		RunID:           "run-internal-tag",
	}

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	require.JSONEq(t, `{
		"hypothesis_id": "H1",
		"validation": {
			"metric": "ctr",
			"baseline_mean": 0.045,
			"test_mean": 0.030,
			"relative_change_pct": -32.1,
			"p_value": 0.004,
			"effect_size": -0.72,
			"sample_size_baseline": 100,
			"sample_size_test": 120,
			"change_point": 14
		},
		"confidence_final": 0.78,
		"status": "VALIDATED",
		"notes": "evaluated driver=ctr_drop on metric ctr using t_test",
		"evidence_refs": ["dataset:fb_ads_daily.csv"]
	}`, string(raw))
}

func TestValidationResult_NullSentinels(t *testing.T) {
	result := ValidationResult{
		HypothesisID: "H2",
		Validation: ValidationBlock{
			Metric:             "roas",
			PValue:             1.0,
			SampleSizeBaseline: 3,
			SampleSizeTest:     3,
		},
		ConfidenceFinal: 0.2,
		Status:          StatusInconclusive,
		Notes:           "required sample data missing: metric roas for hypothesis H2",
		EvidenceRefs:    []string{},
	}

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	validation := decoded["validation"].(map[string]any)
	assert.Nil(t, validation["relative_change_pct"], "undefined relative change must serialize as null")
	assert.Nil(t, validation["change_point"], "absent change point must serialize as null")
}

func TestNewSamplePair(t *testing.T) {
	t.Run("records declared sizes", func(t *testing.T) {
		pair, err := NewSamplePair("ctr", []float64{1, 2, 3}, []float64{4, 5})
		require.NoError(t, err)
		assert.Equal(t, 3, pair.BaselineN)
		assert.Equal(t, 2, pair.TestN)
	})

	t.Run("rejects empty baseline", func(t *testing.T) {
		_, err := NewSamplePair("ctr", nil, []float64{1})
		require.Error(t, err)
	})

	t.Run("rejects empty test window", func(t *testing.T) {
		_, err := NewSamplePair("ctr", []float64{1}, nil)
		require.Error(t, err)
	})
}

func TestTimeSeries_Validate(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("strictly increasing passes", func(t *testing.T) {
		series := TimeSeries{Metric: "ctr", Points: []Point{
			{Timestamp: start, Value: 1},
			{Timestamp: start.AddDate(0, 0, 1), Value: 2},
		}}
		assert.NoError(t, series.Validate())
	})

	t.Run("duplicate timestamp fails", func(t *testing.T) {
		series := TimeSeries{Metric: "ctr", Points: []Point{
			{Timestamp: start, Value: 1},
			{Timestamp: start, Value: 2},
		}}
		assert.Error(t, series.Validate())
	})
}
