package analysis

import (
	"math"

	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/integrators"
	"github.com/san-kum/kapitza/internal/physics"
	"gonum.org/v1/gonum/floats"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Integrate the reference and a copy displaced by perturbation in phi
// 2. After each window, accumulate ln(|δx|/δ0)
// 3. Pull the copy back to distance δ0 along the same direction
//
// λ ≈ Σ ln(|δx|/δ0) / (t_end - t_start)
func LyapunovExponent(
	params physics.Params,
	x0 dynamo.State,
	iv dynamo.Interval,
	method integrators.Method,
	opts integrators.Options,
	perturbation, window float64,
) (float64, error) {
	if err := iv.Validate(); err != nil {
		return 0, err
	}
	if !(perturbation > 0) {
		return 0, &dynamo.ParameterError{Name: "perturbation", Value: perturbation, Reason: "must be positive"}
	}
	if !(window > 0) {
		return 0, &dynamo.ParameterError{Name: "window", Value: window, Reason: "must be positive"}
	}
	pend, err := physics.NewPendulum(params)
	if err != nil {
		return 0, err
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation

	sumLog := 0.0
	t := iv.Start
	for iv.End-t > 1e-12*iv.Span() {
		seg := dynamo.Interval{Start: t, End: math.Min(t+window, iv.End)}

		ref, err := integrators.Integrate(pend, x, seg, method, opts)
		if err != nil {
			return 0, err
		}
		pert, err := integrators.Integrate(pend, xp, seg, method, opts)
		if err != nil {
			return 0, err
		}
		x, xp = ref.Final(), pert.Final()

		sep := floats.Distance(xp, x, 2)
		if sep > 0 {
			sumLog += math.Log(sep / perturbation)
			// Renormalize to keep the separation linear
			scale := perturbation / sep
			for i := range xp {
				xp[i] = x[i] + (xp[i]-x[i])*scale
			}
		}
		t = seg.End
	}

	return sumLog / iv.Span(), nil
}
