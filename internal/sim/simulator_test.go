package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/integrators"
	"github.com/san-kum/kapitza/internal/physics"
)

func scenarioParams(gamma float64) physics.Params {
	return physics.Params{Amplitude: 0.1, Frequency: 60, Length: 2, Gravity: 9.80665, Friction: gamma}
}

// envelope is half the peak-to-peak swing of phi over the native grid
// points inside [from, to].
func envelope(tr *dynamo.Trajectory, from, to float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, t := range tr.Times {
		if t < from || t > to {
			continue
		}
		lo = math.Min(lo, tr.States[i][0])
		hi = math.Max(hi, tr.States[i][0])
	}
	return (hi - lo) / 2
}

func TestIntegrateInvertedStart(t *testing.T) {
	x0 := dynamo.State{math.Pi, math.Pi / 100}
	tr, err := Integrate(scenarioParams(0), x0, dynamo.Interval{Start: 0, End: 200}, "LSODA")
	if err != nil {
		t.Fatalf("integration failed: %v", err)
	}

	if tr.Times[0] != 0.0 {
		t.Errorf("expected first time 0.0, got %v", tr.Times[0])
	}
	if last := tr.Times[tr.Len()-1]; last != 200.0 {
		t.Errorf("expected last time 200.0, got %v", last)
	}
	if tr.States[0][0] != math.Pi || tr.States[0][1] != math.Pi/100 {
		t.Errorf("initial state not preserved exactly: %v", tr.States[0])
	}
}

func TestIntegrateDampingShrinksEnvelope(t *testing.T) {
	x0 := dynamo.State{math.Pi, math.Pi / 100}
	tr, err := Integrate(scenarioParams(0.005), x0, dynamo.Interval{Start: 0, End: 200}, "LSODA")
	if err != nil {
		t.Fatalf("integration failed: %v", err)
	}

	early := envelope(tr, 0, 50)
	late := envelope(tr, 150, 200)
	if !(late < early) {
		t.Errorf("expected damped envelope, early=%f late=%f", early, late)
	}
}

func TestDampedEnergyDecreases(t *testing.T) {
	params := scenarioParams(0.005)
	pend, err := physics.NewPendulum(params)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := Integrate(params, dynamo.State{math.Pi, math.Pi / 100}, dynamo.Interval{Start: 0, End: 200}, "LSODA")
	if err != nil {
		t.Fatal(err)
	}

	mean := func(from, to float64) float64 {
		sum, n := 0.0, 0
		for i, tm := range tr.Times {
			if tm >= from && tm <= to {
				sum += pend.Energy(tm, tr.States[i])
				n++
			}
		}
		return sum / float64(n)
	}
	if early, late := mean(0, 50), mean(150, 200); !(late < early) {
		t.Errorf("expected mean energy to fall, early=%f late=%f", early, late)
	}
}

func TestSimplePendulumConservesEnergy(t *testing.T) {
	params := physics.Params{Length: 1.5, Gravity: physics.StandardGravity}

	for _, m := range integrators.Methods() {
		t.Run(m.String(), func(t *testing.T) {
			tr, err := IntegrateWith(Run{
				Params:   params,
				Initial:  dynamo.State{math.Pi / 3, 0},
				Interval: dynamo.Interval{Start: 0, End: 20},
				Method:   m.String(),
				Options:  integrators.Options{RelTol: 1e-8, AbsTol: 1e-10},
			})
			if err != nil {
				t.Fatalf("integration failed: %v", err)
			}
			summary, err := Summarize(params, tr)
			if err != nil {
				t.Fatal(err)
			}
			if drift := summary["energy_drift"]; drift > 1e-5 {
				t.Errorf("energy drift too high: %e", drift)
			}
		})
	}
}

func TestIntegrateErrors(t *testing.T) {
	params := physics.DefaultParams()
	x0 := dynamo.State{math.Pi / 2, 0}

	for _, m := range integrators.Methods() {
		_, err := Integrate(params, x0, dynamo.Interval{Start: 5, End: 5}, m.String())
		if !errors.Is(err, dynamo.ErrInvalidInterval) {
			t.Errorf("%s: expected ErrInvalidInterval, got %v", m, err)
		}
	}

	if _, err := Integrate(params, x0, dynamo.Interval{Start: 0, End: 1}, "Unsupported"); !errors.Is(err, dynamo.ErrUnsupportedMethod) {
		t.Errorf("expected ErrUnsupportedMethod, got %v", err)
	}

	// interval is checked before the method
	if _, err := Integrate(params, x0, dynamo.Interval{Start: 1, End: 0}, "Unsupported"); !errors.Is(err, dynamo.ErrInvalidInterval) {
		t.Errorf("expected interval to be checked first, got %v", err)
	}

	bad := params
	bad.Length = -1
	if _, err := Integrate(bad, x0, dynamo.Interval{Start: 0, End: 1}, "RK45"); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	base := Run{
		Params:   physics.DefaultParams(),
		Initial:  dynamo.State{math.Pi / 2, 0},
		Interval: dynamo.Interval{Start: 0, End: 2},
		Options:  integrators.DefaultOptions(),
	}

	var runs []Run
	for _, m := range []string{"RK45", "bogus", "BDF", "DOP853"} {
		r := base
		r.Method = m
		runs = append(runs, r)
	}

	out := Compare(runs)
	if len(out) != len(runs) {
		t.Fatalf("expected %d outcomes, got %d", len(runs), len(out))
	}
	for i, o := range out {
		if o.Run.Method != runs[i].Method {
			t.Errorf("outcome %d out of order: %s", i, o.Run.Method)
		}
	}
	if failed := Failed(out); len(failed) != 1 || failed[0].Run.Method != "bogus" {
		t.Errorf("expected only the bogus run to fail, got %v", failed)
	}
	for _, o := range out {
		if o.Err == nil && o.Trajectory.Method != o.Run.Method {
			t.Errorf("trajectory method %s for run %s", o.Trajectory.Method, o.Run.Method)
		}
	}
}

type countingMetric struct {
	count int
}

func (c *countingMetric) Name() string                      { return "count" }
func (c *countingMetric) Observe(t float64, x dynamo.State) { c.count++ }
func (c *countingMetric) Value() float64                    { return float64(c.count) }
func (c *countingMetric) Reset()                            { c.count = 0 }

func TestSummarize(t *testing.T) {
	params := physics.DefaultParams()
	tr, err := Integrate(params, dynamo.State{0.3, 0}, dynamo.Interval{Start: 0, End: 1}, "RK45")
	if err != nil {
		t.Fatal(err)
	}

	m := &countingMetric{}
	got, err := Summarize(params, tr, m)
	if err != nil {
		t.Fatal(err)
	}
	if int(got["count"]) != tr.Len() {
		t.Errorf("expected %d observations, got %v", tr.Len(), got["count"])
	}

	defaults, err := Summarize(params, tr)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"energy_drift", "mean_energy", "amplitude", "rotations"} {
		if _, ok := defaults[name]; !ok {
			t.Errorf("default metric %q missing", name)
		}
	}
}
