// Package dynamo provides core primitives shared by the trajectory engine.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(t, X))
//   - [Jacobian]: optional analytic df/dX for implicit solvers
//   - [Interval]: closed integration window
//   - [Trajectory]: accepted steps plus a dense evaluator
//
// # Errors
//
// Failures are reported as structured values ([IntervalError],
// [MethodError], [DivergenceError], [SampleError], [ParameterError]) that
// unwrap to the package sentinels, so callers branch with errors.Is:
//
//	tr, err := integrators.Integrate(sys, x0, iv, method, opts)
//	var div *dynamo.DivergenceError
//	if errors.As(err, &div) {
//	    // div.Partial holds the steps accepted before the failure
//	}
//
// # Thread Safety
//
// A Trajectory is read-only once returned and may be shared between
// goroutines. Recorder is not safe for concurrent use.
package dynamo
