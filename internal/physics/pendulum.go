package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/kapitza/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

const StandardGravity = 9.80665

// Params are the physical constants of a pendulum on a vertically vibrating
// pivot. Lengths share one unit, Frequency is angular (rad per time unit).
type Params struct {
	Amplitude float64 `json:"a" yaml:"a"`
	Frequency float64 `json:"n" yaml:"n"`
	Length    float64 `json:"l" yaml:"l"`
	Gravity   float64 `json:"g" yaml:"g"`
	Friction  float64 `json:"gamma" yaml:"gamma"`
}

// DefaultParams is the configuration found stable with the pendulum
// released horizontally.
func DefaultParams() Params {
	return Params{
		Amplitude: 0.24,
		Frequency: 54,
		Length:    1,
		Gravity:   StandardGravity,
		Friction:  0,
	}
}

func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"a", p.Amplitude},
		{"n", p.Frequency},
		{"l", p.Length},
		{"g", p.Gravity},
		{"gamma", p.Friction},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &dynamo.ParameterError{Name: c.name, Value: c.value, Reason: "must be finite"}
		}
	}
	if p.Length <= 0 {
		return &dynamo.ParameterError{Name: "l", Value: p.Length, Reason: "must be positive"}
	}
	if p.Gravity <= 0 {
		return &dynamo.ParameterError{Name: "g", Value: p.Gravity, Reason: "must be positive"}
	}
	if p.Friction < 0 {
		return &dynamo.ParameterError{Name: "gamma", Value: p.Friction, Reason: "must be non-negative"}
	}
	return nil
}

// Pendulum is the equation-of-motion model. State is (phi, phidot) with phi
// measured from the hanging position.
type Pendulum struct {
	p Params
}

// NewPendulum validates p and returns the model. The parameters are copied;
// later changes go through SetParam.
func NewPendulum(p Params) (*Pendulum, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Pendulum{p: p}, nil
}

func (p *Pendulum) Params() Params { return p.p }

func (p *Pendulum) StateDim() int { return 2 }

// stiffness is the effective gravity over length, including the pivot drive.
func (p *Pendulum) stiffness(t float64) float64 {
	a, n, l := p.p.Amplitude, p.p.Frequency, p.p.Length
	return (a*n*n/l)*math.Cos(n*t) + p.p.Gravity/l
}

func (p *Pendulum) Derive(t float64, x dynamo.State) dynamo.State {
	phi := x[0]
	omega := x[1]

	alpha := -p.stiffness(t)*math.Sin(phi) - p.p.Friction*omega

	return dynamo.State{omega, alpha}
}

func (p *Pendulum) Jacobian(t float64, x dynamo.State) *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		0, 1,
		-p.stiffness(t) * math.Cos(x[0]), -p.p.Friction,
	})
}

// PotentialEnergy is relative to the pivot frame: it includes the driving
// coupling term and is not conserved when the pivot moves.
func (p *Pendulum) PotentialEnergy(t, phi float64) float64 {
	return -p.p.Gravity * (p.p.Length*math.Cos(phi) + p.p.Amplitude*math.Cos(p.p.Frequency*t))
}

func (p *Pendulum) KineticEnergy(omega float64) float64 {
	v := p.p.Length * omega
	return 0.5 * v * v
}

// Energy is kinetic plus potential energy per unit mass.
func (p *Pendulum) Energy(t float64, x dynamo.State) float64 {
	return p.KineticEnergy(x[1]) + p.PotentialEnergy(t, x[0])
}

func (p *Pendulum) BobPosition(t, phi float64) (x, y float64) {
	x = p.p.Length * math.Sin(phi)
	y = -p.p.Length*math.Cos(phi) - p.p.Amplitude*math.Cos(p.p.Frequency*t)
	return x, y
}

func (p *Pendulum) PivotPosition(t float64) (x, y float64) {
	return 0, -p.p.Amplitude * math.Cos(p.p.Frequency*t)
}

// DrivingPeriod is one cycle of the pivot, +Inf for a fixed pivot.
func (p *Pendulum) DrivingPeriod() float64 {
	if p.p.Frequency == 0 {
		return math.Inf(1)
	}
	return 2 * math.Pi / math.Abs(p.p.Frequency)
}

// StabilityMargin is Kapitza's ratio a²n²/(2gl). The inverted position is
// stable in the fast-driving limit when it exceeds 1.
func (p *Pendulum) StabilityMargin() float64 {
	an := p.p.Amplitude * p.p.Frequency
	return an * an / (2 * p.p.Gravity * p.p.Length)
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"a":     p.p.Amplitude,
		"n":     p.p.Frequency,
		"l":     p.p.Length,
		"g":     p.p.Gravity,
		"gamma": p.p.Friction,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	next := p.p
	switch name {
	case "a", "amplitude":
		next.Amplitude = value
	case "n", "frequency":
		next.Frequency = value
	case "l", "length":
		next.Length = value
	case "g", "gravity":
		next.Gravity = value
	case "gamma", "friction":
		next.Friction = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	p.p = next
	return nil
}

// NormalizePhase maps phi to its signed remainder modulo 2π, expressed in
// units of π, so the result lies in [-1, 1]. Display only.
func NormalizePhase(phi float64) float64 {
	return math.Remainder(phi, 2*math.Pi) / math.Pi
}
