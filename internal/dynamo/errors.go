package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration and post-processing.
var (
	// ErrInvalidInterval indicates a time window with End <= Start.
	ErrInvalidInterval = errors.New("dynamo: invalid interval (end must be after start)")

	// ErrUnsupportedMethod indicates an unknown integration method selector.
	ErrUnsupportedMethod = errors.New("dynamo: unsupported integration method")

	// ErrIntegrationDivergence indicates the solver could not meet its tolerances.
	ErrIntegrationDivergence = errors.New("dynamo: integration diverged")

	// ErrSampleOutOfRange indicates a sample time or frame outside the trajectory.
	ErrSampleOutOfRange = errors.New("dynamo: sample outside trajectory interval")

	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrNewtonFailure indicates an implicit solver could not converge its
	// nonlinear system.
	ErrNewtonFailure = errors.New("dynamo: newton iteration failed to converge")

	// ErrTooManySteps indicates the step budget ran out before the interval end.
	ErrTooManySteps = errors.New("dynamo: step budget exhausted")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

type IntervalError struct {
	Start, End float64
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("%v: start=%g end=%g", ErrInvalidInterval, e.Start, e.End)
}

func (e *IntervalError) Unwrap() error { return ErrInvalidInterval }

type MethodError struct {
	Method string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnsupportedMethod, e.Method)
}

func (e *MethodError) Unwrap() error { return ErrUnsupportedMethod }

// DivergenceError reports where a solver gave up. Partial holds every step
// accepted before the failure.
type DivergenceError struct {
	Method  string
	Step    int
	Time    float64
	State   State
	Partial *Trajectory
	Wrapped error
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%v: %s step %d (t=%.6g): %v", ErrIntegrationDivergence, e.Method, e.Step, e.Time, e.Wrapped)
}

func (e *DivergenceError) Unwrap() error { return e.Wrapped }

func (e *DivergenceError) Is(target error) bool {
	return target == ErrIntegrationDivergence
}

type SampleError struct {
	Time       float64
	Start, End float64
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("%v: t=%g not in [%g, %g]", ErrSampleOutOfRange, e.Time, e.Start, e.End)
}

func (e *SampleError) Unwrap() error { return ErrSampleOutOfRange }

type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s=%g (%s)", ErrParameterBounds, e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrParameterBounds }
