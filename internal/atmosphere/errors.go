package atmosphere

import (
	"errors"
	"fmt"
)

var (
	// ErrAltitudeOutOfBounds indicates a query outside the model's domain.
	// It is recoverable: the caller decides whether to hold, clamp or flag.
	ErrAltitudeOutOfBounds = errors.New("atmosphere: altitude out of bounds")

	// ErrNumeric indicates a NaN, infinite or non-positive model result.
	// It never occurs for in-domain altitudes and signals a formula defect.
	ErrNumeric = errors.New("atmosphere: numeric error")
)

type AltitudeOutOfBoundsError struct {
	Altitude float64
	Min      float64
	Max      float64
}

func (e *AltitudeOutOfBoundsError) Error() string {
	return fmt.Sprintf("atmosphere: altitude %gm is out of bounds (min: %gm, max: %gm)", e.Altitude, e.Min, e.Max)
}

func (e *AltitudeOutOfBoundsError) Unwrap() error {
	return ErrAltitudeOutOfBounds
}

type NumericError struct {
	Altitude float64
	Quantity string
	Value    float64
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("atmosphere: invalid %s %g at altitude %gm", e.Quantity, e.Value, e.Altitude)
}

func (e *NumericError) Unwrap() error {
	return ErrNumeric
}
