package integrators

import (
	"fmt"
	"math"
)

// Options are the tolerances and step limits shared by every method.
// Zero values for FirstStep, MaxStep and MaxSteps mean "automatic",
// "unbounded" and "unlimited".
type Options struct {
	RelTol    float64 `json:"rtol" yaml:"rtol"`
	AbsTol    float64 `json:"atol" yaml:"atol"`
	FirstStep float64 `json:"first_step,omitempty" yaml:"first_step,omitempty"`
	MaxStep   float64 `json:"max_step,omitempty" yaml:"max_step,omitempty"`
	MaxSteps  int     `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
}

func DefaultOptions() Options {
	return Options{
		RelTol:   1e-3,
		AbsTol:   1e-6,
		MaxSteps: 10_000_000,
	}
}

func (o Options) Validate() error {
	if !(o.RelTol > 0) || math.IsInf(o.RelTol, 0) {
		return fmt.Errorf("rtol must be positive, got %g", o.RelTol)
	}
	if !(o.AbsTol > 0) || math.IsInf(o.AbsTol, 0) {
		return fmt.Errorf("atol must be positive, got %g", o.AbsTol)
	}
	if o.FirstStep < 0 || math.IsNaN(o.FirstStep) {
		return fmt.Errorf("first_step must be non-negative, got %g", o.FirstStep)
	}
	if o.MaxStep < 0 || math.IsNaN(o.MaxStep) {
		return fmt.Errorf("max_step must be non-negative, got %g", o.MaxStep)
	}
	if o.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative, got %d", o.MaxSteps)
	}
	return nil
}

// normalized raises rtol to the floor below which the error test is
// dominated by rounding.
func (o Options) normalized() Options {
	if floor := 100 * epsilon; o.RelTol < floor {
		o.RelTol = floor
	}
	return o
}
