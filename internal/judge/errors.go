package judge

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedMetric = errors.New("unsupported metric")
	ErrMissingPayload    = errors.New("missing metric payload")
	ErrMissingInput      = errors.New("missing explain input")
	ErrInvalidVerdict    = errors.New("invalid judge verdict")
)

// UnsupportedMetricError reports a metric name the registry does not know.
type UnsupportedMetricError struct {
	Metric string
}

func (e *UnsupportedMetricError) Error() string {
	return fmt.Sprintf("Unsupported metric: %s", e.Metric)
}

func (e *UnsupportedMetricError) Is(target error) bool { return target == ErrUnsupportedMetric }

// MissingPayloadError reports that the explain inputs carry nothing for a
// metric.
type MissingPayloadError struct {
	Metric string
}

func (e *MissingPayloadError) Error() string {
	return fmt.Sprintf("Runtime ExplainInputs is missing payload for metric '%s'.", e.Metric)
}

func (e *MissingPayloadError) Is(target error) bool { return target == ErrMissingPayload }

// MissingInputError names a required key absent from a metric payload.
type MissingInputError struct {
	Key string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("Missing required explain input '%s'.", e.Key)
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }
