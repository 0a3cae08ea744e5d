package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrHypothesisNotFound = fmt.Errorf("%w: hypothesis", ErrNotFound)
	ErrRunNotFound        = fmt.Errorf("%w: run", ErrNotFound)
	ErrMetricNotFound     = fmt.Errorf("%w: metric", ErrNotFound)

	// Contract violations (fatal for the offending hypothesis)
	ErrInvalidHypothesis = errors.New("invalid hypothesis")

	// Evidence conditions (resolved locally, folded into results)
	ErrMissingInput     = errors.New("required sample data missing")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrDegenerateData   = errors.New("degenerate sample data")
)

// Error constructors with context

func NewInvalidHypothesisError(id HypothesisID, field, reason string) error {
	return fmt.Errorf("%w %s: field %s: %s", ErrInvalidHypothesis, id, field, reason)
}

func NewMissingInputError(id HypothesisID, metric MetricKey) error {
	return fmt.Errorf("%w: metric %s for hypothesis %s", ErrMissingInput, metric, id)
}

// Error checking helpers

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidHypothesisError(err error) bool {
	return errors.Is(err, ErrInvalidHypothesis)
}

func IsMissingInputError(err error) bool {
	return errors.Is(err, ErrMissingInput)
}
