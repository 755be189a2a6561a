package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/kapitza/internal/physics"
	"github.com/san-kum/kapitza/internal/sim"
	"gonum.org/v1/gonum/floats"
)

var ErrNoFeasible = errors.New("optim: no parameter combination could be evaluated")

// Axis is one searched parameter and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// Linspace returns an axis of n evenly spaced values over [lo, hi].
func Linspace(name string, lo, hi float64, n int) Axis {
	if n < 2 {
		return Axis{Name: name, Values: []float64{lo}}
	}
	return Axis{Name: name, Values: floats.Span(make([]float64, n), lo, hi)}
}

// ParseAxis reads "name=lo:hi:n" or "name=v".
func ParseAxis(s string) (Axis, error) {
	name, def, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return Axis{}, fmt.Errorf("optim: axis %q: want name=lo:hi:n", s)
	}
	parts := strings.Split(def, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Axis{}, fmt.Errorf("optim: axis %q: %w", s, err)
		}
		return Axis{Name: name, Values: []float64{v}}, nil
	case 3:
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return Axis{}, fmt.Errorf("optim: axis %q: %w", s, err)
		}
		if n < 1 {
			return Axis{}, fmt.Errorf("optim: axis %q: need at least one value", s)
		}
		return Linspace(name, lo, hi, n), nil
	}
	return Axis{}, fmt.Errorf("optim: axis %q: want name=lo:hi:n", s)
}

// Objective scores one parameter set; lower is better.
type Objective func(ctx context.Context, p physics.Params) (float64, error)

type Result struct {
	Params    physics.Params
	Values    map[string]float64
	Score     float64
	Evaluated int
	Failed    int
}

// GridSearch evaluates the objective on the Cartesian product of its axes.
type GridSearch struct {
	axes []Axis
}

func NewGridSearch(axes ...Axis) *GridSearch {
	return &GridSearch{axes: axes}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, a := range g.axes {
		n *= len(a.Values)
	}
	return n
}

// Search returns the lowest scoring grid point. Points whose parameters are
// invalid or whose objective fails are counted in Failed and skipped.
func (g *GridSearch) Search(ctx context.Context, base physics.Params, objective Objective) (*Result, error) {
	pend, err := physics.NewPendulum(base)
	if err != nil {
		return nil, err
	}
	// reject unknown parameter names before any integration
	for _, a := range g.axes {
		if err := pend.SetParam(a.Name, 1); err != nil {
			return nil, err
		}
	}

	res := &Result{Score: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, base, make(map[string]float64), objective, res); err != nil {
		return nil, err
	}
	if res.Values == nil {
		return res, ErrNoFeasible
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current physics.Params,
	values map[string]float64,
	objective Objective,
	res *Result,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.axes) {
		score, err := objective(ctx, current)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			res.Failed++
			return nil
		}
		res.Evaluated++
		if score < res.Score {
			res.Score = score
			res.Params = current
			res.Values = make(map[string]float64, len(values))
			for k, v := range values {
				res.Values[k] = v
			}
		}
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		pend, err := physics.NewPendulum(current)
		if err != nil {
			return err
		}
		if err := pend.SetParam(axis.Name, val); err != nil {
			res.Failed++
			continue
		}
		values[axis.Name] = val
		if err := g.searchRecursive(ctx, depth+1, pend.Params(), values, objective, res); err != nil {
			return err
		}
	}
	delete(values, axis.Name)
	return nil
}

// MetricObjective integrates run with the candidate parameters and scores
// it by the named default metric, negated when maximize is set.
func MetricObjective(run sim.Run, metric string, maximize bool) Objective {
	return func(ctx context.Context, p physics.Params) (float64, error) {
		r := run
		r.Params = p
		tr, err := sim.IntegrateWith(r)
		if err != nil {
			return 0, err
		}
		values, err := sim.Summarize(p, tr)
		if err != nil {
			return 0, err
		}
		v, ok := values[metric]
		if !ok {
			return 0, fmt.Errorf("optim: unknown metric %q", metric)
		}
		if maximize {
			v = -v
		}
		return v, nil
	}
}
