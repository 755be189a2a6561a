package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/kapitza/internal/dynamo"
)

func mustPendulum(t *testing.T, p Params) *Pendulum {
	t.Helper()
	pend, err := NewPendulum(p)
	if err != nil {
		t.Fatalf("NewPendulum: %v", err)
	}
	return pend
}

func TestPendulumEquilibrium(t *testing.T) {
	p := mustPendulum(t, DefaultParams())

	for _, tm := range []float64{0, 0.3, 17.1} {
		dx := p.Derive(tm, dynamo.State{0, 0})
		if math.Abs(dx[0]) > 1e-12 || math.Abs(dx[1]) > 1e-12 {
			t.Errorf("t=%g: expected rest at hanging equilibrium, got %v", tm, dx)
		}
	}
}

func TestPendulumDimensions(t *testing.T) {
	p := mustPendulum(t, DefaultParams())
	if p.StateDim() != 2 {
		t.Errorf("expected state dim 2, got %d", p.StateDim())
	}
}

func TestPendulumGravity(t *testing.T) {
	params := Params{Length: 2, Gravity: StandardGravity}
	p := mustPendulum(t, params)

	dx := p.Derive(0, dynamo.State{math.Pi / 2, 0})

	expected := -params.Gravity / params.Length
	if math.Abs(dx[1]-expected) > 1e-12 {
		t.Errorf("expected acceleration %f, got %f", expected, dx[1])
	}
}

func TestPendulumDrivingTerm(t *testing.T) {
	params := Params{Amplitude: 0.1, Frequency: 60, Length: 2, Gravity: StandardGravity, Friction: 0.005}
	p := mustPendulum(t, params)

	tm, phi, omega := 0.37, 1.1, -0.4
	dx := p.Derive(tm, dynamo.State{phi, omega})

	a, n, l, g := params.Amplitude, params.Frequency, params.Length, params.Gravity
	expected := -((a*n*n/l)*math.Cos(n*tm)+g/l)*math.Sin(phi) - params.Friction*omega
	if dx[0] != omega {
		t.Errorf("expected phidot %f, got %f", omega, dx[0])
	}
	if math.Abs(dx[1]-expected) > 1e-12 {
		t.Errorf("expected phiddot %f, got %f", expected, dx[1])
	}
}

func TestPendulumHugeAngle(t *testing.T) {
	p := mustPendulum(t, Params{Amplitude: 0.1, Frequency: 60, Length: 2, Gravity: StandardGravity})

	for _, x := range []dynamo.State{{1e300, 0}, {-1e300, 1e10}, {1e15, -3}} {
		dx := p.Derive(1e12, x)
		if !dx.IsValid() {
			t.Errorf("Derive(%v) produced invalid derivative %v", x, dx)
		}
	}
}

func TestPendulumJacobianMatchesFiniteDifference(t *testing.T) {
	p := mustPendulum(t, Params{Amplitude: 0.24, Frequency: 54, Length: 1, Gravity: StandardGravity, Friction: 0.3})

	tm := 0.123
	x := dynamo.State{0.7, -1.3}
	J := p.Jacobian(tm, x)

	const h = 1e-7
	for j := 0; j < 2; j++ {
		xp := x.Clone()
		xp[j] += h
		xm := x.Clone()
		xm[j] -= h
		fp := p.Derive(tm, xp)
		fm := p.Derive(tm, xm)
		for i := 0; i < 2; i++ {
			fd := (fp[i] - fm[i]) / (2 * h)
			if math.Abs(fd-J.At(i, j)) > 1e-5 {
				t.Errorf("J[%d][%d] = %f, finite difference %f", i, j, J.At(i, j), fd)
			}
		}
	}
}

func TestPendulumPositions(t *testing.T) {
	params := Params{Amplitude: 0.1, Frequency: 60, Length: 2, Gravity: StandardGravity}
	p := mustPendulum(t, params)

	tm := 0.05
	bx, by := p.BobPosition(tm, math.Pi/2)
	ox, oy := p.PivotPosition(tm)

	if math.Abs(bx-2) > 1e-12 {
		t.Errorf("expected bob x = l, got %f", bx)
	}
	if ox != 0 {
		t.Errorf("pivot must stay on the vertical axis, got x=%f", ox)
	}
	if math.Abs(oy+0.1*math.Cos(60*tm)) > 1e-12 {
		t.Errorf("unexpected pivot height %f", oy)
	}
	// rod length is preserved relative to the moving pivot
	if d := math.Hypot(bx-ox, by-oy); math.Abs(d-params.Length) > 1e-12 {
		t.Errorf("bob-pivot distance %f, want %f", d, params.Length)
	}
}

func TestPendulumEnergy(t *testing.T) {
	params := Params{Length: 1, Gravity: 9.81}
	p := mustPendulum(t, params)

	theta := math.Pi / 4
	omega := 0.5

	expected := 0.5*omega*omega - 9.81*math.Cos(theta)
	if got := p.Energy(0, dynamo.State{theta, omega}); math.Abs(got-expected) > 1e-12 {
		t.Errorf("expected energy %f, got %f", expected, got)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"zero length", func(p *Params) { p.Length = 0 }, "l"},
		{"negative length", func(p *Params) { p.Length = -1 }, "l"},
		{"zero gravity", func(p *Params) { p.Gravity = 0 }, "g"},
		{"negative friction", func(p *Params) { p.Friction = -0.1 }, "gamma"},
		{"nan amplitude", func(p *Params) { p.Amplitude = math.NaN() }, "a"},
		{"inf frequency", func(p *Params) { p.Frequency = math.Inf(1) }, "n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Fatalf("expected ErrParameterBounds, got %v", err)
			}
			var pe *dynamo.ParameterError
			if !errors.As(err, &pe) || pe.Name != tt.field {
				t.Errorf("expected parameter %q in error, got %v", tt.field, err)
			}
		})
	}

	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("default params rejected: %v", err)
	}
}

func TestSetParam(t *testing.T) {
	p := mustPendulum(t, DefaultParams())

	if err := p.SetParam("gamma", 0.2); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if p.GetParams()["gamma"] != 0.2 {
		t.Errorf("friction not updated: %v", p.GetParams())
	}
	if err := p.SetParam("l", 0); err == nil {
		t.Error("expected rejection of zero length")
	}
	if p.Params().Length != 1 {
		t.Errorf("rejected update must not change the model, length=%f", p.Params().Length)
	}
	if err := p.SetParam("mass", 1); err == nil {
		t.Error("expected error for unknown param")
	}
}

func TestNormalizePhase(t *testing.T) {
	tests := []struct {
		phi  float64
		want float64
	}{
		{0, 0},
		{math.Pi / 2, 0.5},
		{-math.Pi / 2, -0.5},
		{2 * math.Pi, 0},
		{5 * math.Pi / 2, 0.5},
		{-7 * math.Pi / 2, 0.5},
	}

	for _, tt := range tests {
		if got := NormalizePhase(tt.phi); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("NormalizePhase(%f) = %f, want %f", tt.phi, got, tt.want)
		}
	}
	for _, phi := range []float64{3.1, -3.1, 100, -1e6} {
		if got := NormalizePhase(phi); got < -1 || got > 1 {
			t.Errorf("NormalizePhase(%f) = %f outside [-1, 1]", phi, got)
		}
	}
}

func TestStabilityMargin(t *testing.T) {
	p := mustPendulum(t, DefaultParams())
	// 0.24² · 54² / (2 · 9.80665 · 1) ≈ 8.56
	if m := p.StabilityMargin(); m < 8.5 || m > 8.6 {
		t.Errorf("unexpected stability margin %f", m)
	}
	if p.DrivingPeriod() != 2*math.Pi/54 {
		t.Errorf("unexpected driving period %f", p.DrivingPeriod())
	}
}
