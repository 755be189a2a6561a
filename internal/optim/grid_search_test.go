package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/integrators"
	"github.com/san-kum/kapitza/internal/physics"
	"github.com/san-kum/kapitza/internal/sim"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch(Linspace("a", 0, 0.5, 6), Linspace("n", 30, 70, 5))
	if g.Size() != 30 {
		t.Fatalf("expected 30 grid points, got %d", g.Size())
	}

	objective := func(ctx context.Context, p physics.Params) (float64, error) {
		return math.Pow(p.Amplitude-0.3, 2) + math.Pow(p.Frequency-50, 2), nil
	}

	res, err := g.Search(context.Background(), physics.DefaultParams(), objective)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Values["a"]-0.3) > 1e-12 || res.Values["n"] != 50 {
		t.Errorf("expected a=0.3 n=50, got %v", res.Values)
	}
	if res.Params.Amplitude != res.Values["a"] || res.Params.Length != 1 {
		t.Errorf("params not carried: %+v", res.Params)
	}
	if res.Evaluated != 30 || res.Failed != 0 {
		t.Errorf("expected 30 evaluations, got %d (failed %d)", res.Evaluated, res.Failed)
	}
}

func TestGridSearchSkipsInvalid(t *testing.T) {
	g := NewGridSearch(Axis{Name: "l", Values: []float64{-1, 0, 2}})
	calls := 0
	objective := func(ctx context.Context, p physics.Params) (float64, error) {
		calls++
		return p.Length, nil
	}

	res, err := g.Search(context.Background(), physics.DefaultParams(), objective)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 || res.Failed != 2 || res.Values["l"] != 2 {
		t.Errorf("expected only l=2 evaluated, got calls=%d %+v", calls, res)
	}
}

func TestGridSearchErrors(t *testing.T) {
	always := func(ctx context.Context, p physics.Params) (float64, error) { return 0, errors.New("fail") }

	if _, err := NewGridSearch(Linspace("mass", 1, 2, 2)).Search(context.Background(), physics.DefaultParams(), always); err == nil {
		t.Error("expected error for unknown parameter")
	}

	if _, err := NewGridSearch(Linspace("a", 0, 1, 3)).Search(context.Background(), physics.DefaultParams(), always); !errors.Is(err, ErrNoFeasible) {
		t.Errorf("expected ErrNoFeasible, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok := func(ctx context.Context, p physics.Params) (float64, error) { return 0, nil }
	if _, err := NewGridSearch(Linspace("a", 0, 1, 3)).Search(ctx, physics.DefaultParams(), ok); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis("gamma=0:1:5")
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "gamma" || len(a.Values) != 5 || a.Values[4] != 1 || a.Values[1] != 0.25 {
		t.Errorf("unexpected axis %+v", a)
	}

	a, err = ParseAxis("n=60")
	if err != nil || len(a.Values) != 1 || a.Values[0] != 60 {
		t.Errorf("unexpected single-value axis %+v, %v", a, err)
	}

	for _, bad := range []string{"gamma", "=1", "a=1:2", "a=x:1:3", "a=0:1:0"} {
		if _, err := ParseAxis(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestMetricObjectiveDampingReducesAmplitude(t *testing.T) {
	run := sim.Run{
		Params:   physics.Params{Length: 1, Gravity: physics.StandardGravity},
		Initial:  dynamo.State{1, 0},
		Interval: dynamo.Interval{Start: 0, End: 5},
		Method:   "DOP853",
		Options:  integrators.DefaultOptions(),
	}

	res, err := NewGridSearch(Linspace("gamma", 0, 2, 3)).Search(context.Background(), run.Params, MetricObjective(run, "amplitude", false))
	if err != nil {
		t.Fatal(err)
	}
	// the starting angle bounds the swing, stronger damping only shrinks it
	if res.Values["gamma"] != 2 {
		t.Errorf("expected strongest damping to win, got %v", res.Values)
	}

	if _, err := NewGridSearch(Linspace("gamma", 0, 2, 3)).Search(context.Background(), run.Params, MetricObjective(run, "nope", false)); !errors.Is(err, ErrNoFeasible) {
		t.Errorf("expected ErrNoFeasible for unknown metric, got %v", err)
	}
}
