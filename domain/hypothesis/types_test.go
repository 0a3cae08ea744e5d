package hypothesis

import (
	"encoding/json"
	"testing"

	"adsight/domain/core"
)

func validHypothesis() Hypothesis {
	return Hypothesis{
		ID:              "H1",
		Statement:       "CTR dropped because the main creative fatigued",
		Driver:          DriverCreativeFatigue,
		PriorConfidence: 0.6,
		TargetMetric:    "ctr",
	}
}

func TestHypothesis_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Hypothesis)
		wantErr bool
	}{
		{"valid", func(h *Hypothesis) {}, false},
		{"empty driver allowed", func(h *Hypothesis) { h.Driver = "" }, false},
		{"prior at bounds", func(h *Hypothesis) { h.PriorConfidence = 1.0 }, false},
		{"empty id", func(h *Hypothesis) { h.ID = "" }, true},
		{"whitespace id", func(h *Hypothesis) { h.ID = "   " }, true},
		{"empty target metric", func(h *Hypothesis) { h.TargetMetric = "" }, true},
		{"prior below zero", func(h *Hypothesis) { h.PriorConfidence = -0.1 }, true},
		{"prior above one", func(h *Hypothesis) { h.PriorConfidence = 1.1 }, true},
		{"unknown driver", func(h *Hypothesis) { h.Driver = "gremlins" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHypothesis()
			tt.mutate(&h)
			err := h.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
			if tt.wantErr && !core.IsInvalidHypothesisError(err) {
				t.Fatalf("expected invalid hypothesis error, got %v", err)
			}
		})
	}
}

func TestHypothesis_JSONFieldNames(t *testing.T) {
	raw := `{
		"id": "H2",
		"hypothesis": "spend moved to a colder audience",
		"driver": "spend_shift",
		"initial_confidence": 0.5,
		"target_metric": "cpm"
	}`

	var h Hypothesis
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if h.ID != "H2" || h.Driver != DriverSpendShift || h.TargetMetric != "cpm" {
		t.Fatalf("unexpected decode: %+v", h)
	}
	if h.PriorConfidence != 0.5 {
		t.Fatalf("initial_confidence not mapped: %v", h.PriorConfidence)
	}
	if err := h.Validate(); err != nil {
		t.Fatalf("decoded hypothesis should validate: %v", err)
	}
}

func TestDriver_IsKnown(t *testing.T) {
	for _, driver := range KnownDrivers {
		if !driver.IsKnown() {
			t.Errorf("driver %s should be known", driver)
		}
	}
	if Driver("not_a_driver").IsKnown() {
		t.Error("unrecognized driver reported as known")
	}
}
