package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is a first-order ODE dx/dt = f(t, x). Derive must be pure: solvers
// call it at repeated and non-monotonic times while adjusting a step.
type System interface {
	Derive(t float64, x State) State
	StateDim() int
}

// Jacobian is implemented by systems that can supply df/dx analytically.
// Implicit solvers fall back to finite differences otherwise.
type Jacobian interface {
	Jacobian(t float64, x State) *mat.Dense
}

type Hamiltonian interface {
	Energy(t float64, x State) float64
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Interval is the closed integration window [Start, End].
type Interval struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

func (iv Interval) Validate() error {
	if math.IsNaN(iv.Start) || math.IsNaN(iv.End) ||
		math.IsInf(iv.Start, 0) || math.IsInf(iv.End, 0) || iv.End <= iv.Start {
		return &IntervalError{Start: iv.Start, End: iv.End}
	}
	return nil
}

func (iv Interval) Span() float64 { return iv.End - iv.Start }

func (iv Interval) Contains(t float64) bool {
	return t >= iv.Start && t <= iv.End
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%g, %g]", iv.Start, iv.End)
}

// Stats counts solver work for one integration run.
type Stats struct {
	Steps          int `json:"steps"`
	Rejected       int `json:"rejected"`
	Evaluations    int `json:"evaluations"`
	JacobianEvals  int `json:"jacobian_evals"`
	Decompositions int `json:"decompositions"`
	Switches       int `json:"switches"`
}

func (s Stats) String() string {
	return fmt.Sprintf("steps=%d rejected=%d nfev=%d njev=%d nlu=%d switches=%d",
		s.Steps, s.Rejected, s.Evaluations, s.JacobianEvals, s.Decompositions, s.Switches)
}
