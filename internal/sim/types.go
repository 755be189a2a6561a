package sim

import (
	"time"

	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/integrators"
	"github.com/san-kum/kapitza/internal/physics"
)

// Metric accumulates a scalar over the samples of a trajectory.
type Metric interface {
	Name() string
	Observe(t float64, x dynamo.State)
	Value() float64
	Reset()
}

// Run is one fully specified integration request.
type Run struct {
	Params   physics.Params
	Initial  dynamo.State
	Interval dynamo.Interval
	Method   string
	Options  integrators.Options
}

// Outcome pairs a run with what came of it. Err is nil on success;
// Trajectory is nil whenever Err is set.
type Outcome struct {
	Run        Run
	Trajectory *dynamo.Trajectory
	Err        error
	Elapsed    time.Duration
}
