package integrators

import (
	"fmt"

	"github.com/san-kum/kapitza/internal/dynamo"
)

// Integrate solves dx/dt = sys.Derive(t, x) from x0 at iv.Start to iv.End.
//
// The returned trajectory starts exactly at (iv.Start, x0) and its last
// accepted step lands exactly on iv.End. When the solver gives up, the error
// is a *dynamo.DivergenceError carrying every step accepted so far.
func Integrate(sys dynamo.System, x0 dynamo.State, iv dynamo.Interval, method Method, opts Options) (*dynamo.Trajectory, error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}
	build, ok := registry[method]
	if !ok {
		return nil, &dynamo.MethodError{Method: string(method)}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != sys.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system expects %d",
			dynamo.ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	if !x0.IsValid() {
		return nil, dynamo.ErrInvalidState
	}

	opts = opts.normalized()
	prob := newProblem(sys)
	rec := dynamo.NewRecorder(method.String(), iv, x0)

	st := build(prob, iv.Start, x0, iv.End, opts)
	for st.time() < iv.End {
		if opts.MaxSteps > 0 && rec.Steps() >= opts.MaxSteps {
			return nil, diverged(method, rec, prob, st, dynamo.ErrTooManySteps)
		}
		if err := st.step(); err != nil {
			return nil, diverged(method, rec, prob, st, err)
		}
		x := st.state()
		if !x.IsValid() {
			return nil, diverged(method, rec, prob, st, dynamo.ErrInvalidState)
		}
		rec.Append(st.time(), x, st.segment())
	}

	prob.stats.Steps = rec.Steps()
	return rec.Finish(*prob.stats), nil
}

func diverged(method Method, rec *dynamo.Recorder, prob *problem, st stepper, cause error) error {
	steps := rec.Steps()
	prob.stats.Steps = steps
	partial := rec.Finish(*prob.stats)
	return &dynamo.DivergenceError{
		Method:  method.String(),
		Step:    steps + 1,
		Time:    st.time(),
		State:   st.state().Clone(),
		Partial: partial,
		Wrapped: cause,
	}
}
