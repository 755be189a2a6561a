package integrators

import (
	"math"

	"github.com/san-kum/kapitza/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(t float64, x dynamo.State) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Jacobian(t float64, x dynamo.State) *mat.Dense {
	return mat.NewDense(2, 2, []float64{0, 1, -1, 0})
}

func (h *harmonicOscillator) Energy(t float64, x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

// relaxation pulls y towards cos(t) at rate lambda(t). Large rates make it
// stiff.
type relaxation struct {
	lambda func(t float64) float64
}

func constantRate(l float64) *relaxation {
	return &relaxation{lambda: func(float64) float64 { return l }}
}

func (r *relaxation) StateDim() int { return 1 }

func (r *relaxation) Derive(t float64, x dynamo.State) dynamo.State {
	return dynamo.State{-r.lambda(t) * (x[0] - math.Cos(t))}
}

func (r *relaxation) Jacobian(t float64, x dynamo.State) *mat.Dense {
	return mat.NewDense(1, 1, []float64{-r.lambda(t)})
}

// nonlinearPendulum has no analytic Jacobian, so implicit methods fall back
// to finite differences.
type nonlinearPendulum struct{}

func (p *nonlinearPendulum) StateDim() int { return 2 }

func (p *nonlinearPendulum) Derive(t float64, x dynamo.State) dynamo.State {
	return dynamo.State{x[1], -9.81 * math.Sin(x[0])}
}

// blowUp is y' = y², singular at t = 1 for y(0) = 1.
type blowUp struct{}

func (b *blowUp) StateDim() int { return 1 }

func (b *blowUp) Derive(t float64, x dynamo.State) dynamo.State {
	return dynamo.State{x[0] * x[0]}
}

func tightOptions() Options {
	return Options{RelTol: 1e-8, AbsTol: 1e-10}
}
