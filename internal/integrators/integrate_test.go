package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/kapitza/internal/dynamo"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"RK45", RK45},
		{"rk45", RK45},
		{"dop853", DOP853},
		{"radau", Radau},
		{" BDF ", BDF},
		{"Lsoda", LSODA},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if err != nil {
			t.Errorf("ParseMethod(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMethod(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseMethod("verlet"); !errors.Is(err, dynamo.ErrUnsupportedMethod) {
		t.Errorf("expected ErrUnsupportedMethod, got %v", err)
	}
}

func TestMethods(t *testing.T) {
	ms := Methods()
	if len(ms) != 5 {
		t.Fatalf("expected 5 methods, got %v", ms)
	}
	for _, m := range ms {
		if !m.Valid() {
			t.Errorf("%s not valid", m)
		}
		if m.Description() == "" {
			t.Errorf("%s has no description", m)
		}
	}
	if !Radau.Implicit() || !BDF.Implicit() || RK45.Implicit() {
		t.Error("implicit classification wrong")
	}
}

func TestOptionsValidate(t *testing.T) {
	bad := []Options{
		{RelTol: 0, AbsTol: 1e-6},
		{RelTol: 1e-3, AbsTol: -1},
		{RelTol: math.NaN(), AbsTol: 1e-6},
		{RelTol: 1e-3, AbsTol: 1e-6, MaxStep: -1},
		{RelTol: 1e-3, AbsTol: 1e-6, MaxSteps: -1},
	}
	for _, o := range bad {
		if err := o.Validate(); err == nil {
			t.Errorf("expected %+v to be rejected", o)
		}
	}
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("default options rejected: %v", err)
	}
	if o := (Options{RelTol: 1e-20, AbsTol: 1}).normalized(); o.RelTol != 100*epsilon {
		t.Errorf("rtol floor not applied: %g", o.RelTol)
	}
}

func TestFiniteDifferenceJacobian(t *testing.T) {
	p := newProblem(&nonlinearPendulum{})
	x := dynamo.State{0.4, -1.2}
	J := p.jacobian(0, x, nil)

	want := [][]float64{{0, 1}, {-9.81 * math.Cos(0.4), 0}}
	for i := range want {
		for j := range want[i] {
			if math.Abs(J.At(i, j)-want[i][j]) > 1e-6 {
				t.Errorf("J[%d][%d] = %f, want %f", i, j, J.At(i, j), want[i][j])
			}
		}
	}
	if p.stats.JacobianEvals != 1 || p.stats.Evaluations != 3 {
		t.Errorf("unexpected work counters %+v", *p.stats)
	}
}

func TestImplicitWithoutJacobian(t *testing.T) {
	x0 := dynamo.State{math.Pi / 3, 0}
	iv := dynamo.Interval{Start: 0, End: 5}
	sys := &nonlinearPendulum{}
	energy := func(x dynamo.State) float64 { return 0.5*x[1]*x[1] - 9.81*math.Cos(x[0]) }

	for _, m := range []Method{Radau, BDF} {
		tr, err := Integrate(sys, x0, iv, m, tightOptions())
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		if drift := math.Abs(energy(tr.Final()) - energy(x0)); drift > 1e-4 {
			t.Errorf("%s: energy drift %e", m, drift)
		}
		if tr.Stats.JacobianEvals == 0 {
			t.Errorf("%s: expected finite-difference Jacobians", m)
		}
	}
}

func TestTrajectorySampleOutOfRange(t *testing.T) {
	tr, err := Integrate(&harmonicOscillator{}, dynamo.State{1, 0}, dynamo.Interval{Start: 0, End: 1}, RK45, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for _, tm := range []float64{-0.1, 1.5, math.NaN()} {
		if _, err := tr.At(tm); !errors.Is(err, dynamo.ErrSampleOutOfRange) {
			t.Errorf("At(%g): expected ErrSampleOutOfRange, got %v", tm, err)
		}
	}
	x, err := tr.At(0)
	if err != nil || x[0] != 1 || x[1] != 0 {
		t.Errorf("At(start) = %v, %v; want exact initial state", x, err)
	}
}

func TestRescaleIdentity(t *testing.T) {
	d := []dynamo.State{{1, 2}, {0.5, -0.25}, {0.1, 0.3}, {0, 0}}
	orig := make([]dynamo.State, len(d))
	for i := range d {
		orig[i] = d[i].Clone()
	}
	changeDifferences(d, 2, 1)
	for i := 0; i <= 2; i++ {
		for j := range d[i] {
			if math.Abs(d[i][j]-orig[i][j]) > 1e-12 {
				t.Errorf("factor 1 changed d[%d][%d]: %f -> %f", i, j, orig[i][j], d[i][j])
			}
		}
	}
}

func TestStatsCounted(t *testing.T) {
	tr, err := Integrate(constantRate(50), dynamo.State{0}, dynamo.Interval{Start: 0, End: 2}, Radau, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	s := tr.Stats
	if s.Evaluations == 0 || s.JacobianEvals == 0 || s.Decompositions == 0 {
		t.Errorf("implicit run recorded no work: %+v", s)
	}
	if s.Steps != tr.Len()-1 {
		t.Errorf("steps %d, grid has %d points", s.Steps, tr.Len())
	}
}
