package dynamo

import "sort"

// Segment is one piece of a solver's continuous extension, valid on
// [t0, t1] of a single accepted step.
type Segment interface {
	Bounds() (t0, t1 float64)
	At(t float64) State
}

// Trajectory is the output of one integration run: the accepted step grid
// plus a dense evaluator built from the solver's per-step interpolants.
// Values are never modified after the integrator hands it back.
type Trajectory struct {
	Method   string
	Interval Interval
	Times    []float64
	States   []State
	Stats    Stats

	segments []Segment
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Covered is the span actually integrated. It equals Interval for complete
// runs and ends early for the partial trajectory of a diverged run.
func (tr *Trajectory) Covered() Interval {
	if len(tr.Times) == 0 {
		return Interval{Start: tr.Interval.Start, End: tr.Interval.Start}
	}
	return Interval{Start: tr.Times[0], End: tr.Times[len(tr.Times)-1]}
}

func (tr *Trajectory) Final() State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1].Clone()
}

// Segment returns the interpolant of step i, covering [Times[i], Times[i+1]].
func (tr *Trajectory) Segment(i int) Segment {
	if i < 0 || i >= len(tr.segments) {
		return nil
	}
	return tr.segments[i]
}

// At evaluates the dense output at t. The initial state is returned
// exactly; every other time goes through the owning step's interpolant.
func (tr *Trajectory) At(t float64) (State, error) {
	cov := tr.Covered()
	if len(tr.Times) == 0 || !cov.Contains(t) {
		return nil, &SampleError{Time: t, Start: cov.Start, End: cov.End}
	}
	idx := sort.SearchFloat64s(tr.Times, t)
	if idx == 0 {
		return tr.States[0].Clone(), nil
	}
	return tr.segments[idx-1].At(t), nil
}

// Recorder accumulates accepted steps while a solver runs. Only the
// integrator driver holds one.
type Recorder struct {
	tr *Trajectory
}

func NewRecorder(method string, iv Interval, x0 State) *Recorder {
	return &Recorder{tr: &Trajectory{
		Method:   method,
		Interval: iv,
		Times:    []float64{iv.Start},
		States:   []State{x0.Clone()},
	}}
}

func (r *Recorder) Append(t float64, x State, seg Segment) {
	r.tr.Times = append(r.tr.Times, t)
	r.tr.States = append(r.tr.States, x.Clone())
	r.tr.segments = append(r.tr.segments, seg)
}

func (r *Recorder) Steps() int { return len(r.tr.segments) }

// Finish returns the recorded trajectory with its final statistics. The
// recorder must not be used afterwards.
func (r *Recorder) Finish(stats Stats) *Trajectory {
	tr := r.tr
	tr.Stats = stats
	r.tr = nil
	return tr
}
