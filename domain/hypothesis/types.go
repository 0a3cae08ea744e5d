package hypothesis

import (
	"strings"

	"adsight/domain/core"
)

// Driver categorizes the suspected cause behind a metric change
type Driver string

const (
	DriverCreativeFatigue Driver = "creative_fatigue"
	DriverAudienceFatigue Driver = "audience_fatigue"
	DriverSpendShift      Driver = "spend_shift"
	DriverCPMIncrease     Driver = "cpm_increase"
	DriverCTRDrop         Driver = "ctr_drop"
	DriverConversionDrop  Driver = "conversion_drop"
	DriverPlatformIssue   Driver = "platform_issue"
	DriverCountryShift    Driver = "country_shift"
	DriverSeasonalEffect  Driver = "seasonal_effect"
	DriverOther           Driver = "other"
)

// KnownDrivers lists every recognized driver category
var KnownDrivers = []Driver{
	DriverCreativeFatigue,
	DriverAudienceFatigue,
	DriverSpendShift,
	DriverCPMIncrease,
	DriverCTRDrop,
	DriverConversionDrop,
	DriverPlatformIssue,
	DriverCountryShift,
	DriverSeasonalEffect,
	DriverOther,
}

// IsKnown reports whether the driver is one of the recognized categories
func (d Driver) IsKnown() bool {
	for _, known := range KnownDrivers {
		if d == known {
			return true
		}
	}
	return false
}

// Hypothesis is a proposed explanation for a metric change, produced upstream.
// The engine only reads it; it is never mutated after creation.
type Hypothesis struct {
	ID              core.HypothesisID `json:"id"`
	Statement       string            `json:"hypothesis"`
	Driver          Driver            `json:"driver"`
	PriorConfidence float64           `json:"initial_confidence"`
	TargetMetric    core.MetricKey    `json:"target_metric"`
	RequiredChecks  []string          `json:"required_checks"`
}

// Validate enforces the structural contract the engine depends on.
// A violation here is an upstream bug, not an evidence condition.
func (h Hypothesis) Validate() error {
	if strings.TrimSpace(h.ID.String()) == "" {
		return core.NewInvalidHypothesisError(h.ID, "id", "must not be empty")
	}
	if strings.TrimSpace(h.TargetMetric.String()) == "" {
		return core.NewInvalidHypothesisError(h.ID, "target_metric", "must not be empty")
	}
	if h.PriorConfidence < 0 || h.PriorConfidence > 1 {
		return core.NewInvalidHypothesisError(h.ID, "initial_confidence", "must be within [0,1]")
	}
	if h.Driver != "" && !h.Driver.IsKnown() {
		return core.NewInvalidHypothesisError(h.ID, "driver", "unrecognized driver category")
	}
	return nil
}
