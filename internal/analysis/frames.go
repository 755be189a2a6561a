package analysis

import (
	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/physics"
)

type Point struct {
	X, Y float64
}

// Frame is one animation frame: where the bob and pivot are and what the
// display should print.
type Frame struct {
	Index   int
	Time    float64
	Elapsed float64
	Bob     Point
	Pivot   Point
	Phase   float64
}

// Animation resamples a trajectory onto a uniform frame grid.
type Animation struct {
	series   *Series
	start    float64
	interval float64
}

// NewAnimation samples frames uniformly spaced frames over the trajectory
// interval, the first at its start.
func NewAnimation(params physics.Params, tr *dynamo.Trajectory, frames int) (*Animation, error) {
	if frames <= 0 {
		return nil, &dynamo.ParameterError{Name: "frames", Value: float64(frames), Reason: "must be positive"}
	}
	iv := tr.Interval
	s, err := DeriveSeries(params, tr, UniformTimes(iv, frames))
	if err != nil {
		return nil, err
	}
	return &Animation{
		series:   s,
		start:    iv.Start,
		interval: iv.Span() / float64(frames),
	}, nil
}

func (a *Animation) Len() int { return a.series.Len() }

// FrameInterval is the simulated time between consecutive frames.
func (a *Animation) FrameInterval() float64 { return a.interval }

func (a *Animation) Series() *Series { return a.series }

func (a *Animation) Frame(i int) (Frame, error) {
	if i < 0 || i >= a.Len() {
		t := a.start + float64(i)*a.interval
		return Frame{}, &dynamo.SampleError{Time: t, Start: a.start, End: a.start + float64(a.Len())*a.interval}
	}
	s := a.series
	return Frame{
		Index:   i,
		Time:    s.Times[i],
		Elapsed: s.Times[i] - a.start,
		Bob:     Point{X: s.BobX[i], Y: s.BobY[i]},
		Pivot:   Point{X: s.PivotX[i], Y: s.PivotY[i]},
		Phase:   s.Phase[i],
	}, nil
}
