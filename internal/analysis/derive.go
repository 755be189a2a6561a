package analysis

import (
	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/physics"
)

// Series holds the derived quantities of a trajectory, index-aligned with
// Times.
type Series struct {
	Times     []float64
	Phi       []float64
	Omega     []float64
	Potential []float64
	Kinetic   []float64
	BobX      []float64
	BobY      []float64
	PivotX    []float64
	PivotY    []float64
	Phase     []float64
}

func newSeries(n int) *Series {
	return &Series{
		Times:     make([]float64, 0, n),
		Phi:       make([]float64, 0, n),
		Omega:     make([]float64, 0, n),
		Potential: make([]float64, 0, n),
		Kinetic:   make([]float64, 0, n),
		BobX:      make([]float64, 0, n),
		BobY:      make([]float64, 0, n),
		PivotX:    make([]float64, 0, n),
		PivotY:    make([]float64, 0, n),
		Phase:     make([]float64, 0, n),
	}
}

func (s *Series) Len() int { return len(s.Times) }

func (s *Series) append(p *physics.Pendulum, t float64, x dynamo.State) {
	phi, omega := x[0], x[1]
	bx, by := p.BobPosition(t, phi)
	ox, oy := p.PivotPosition(t)

	s.Times = append(s.Times, t)
	s.Phi = append(s.Phi, phi)
	s.Omega = append(s.Omega, omega)
	s.Potential = append(s.Potential, p.PotentialEnergy(t, phi))
	s.Kinetic = append(s.Kinetic, p.KineticEnergy(omega))
	s.BobX = append(s.BobX, bx)
	s.BobY = append(s.BobY, by)
	s.PivotX = append(s.PivotX, ox)
	s.PivotY = append(s.PivotY, oy)
	s.Phase = append(s.Phase, physics.NormalizePhase(phi))
}

// DeriveSeries evaluates the trajectory's dense output at every sample time
// and derives energies, positions and the display phase. Any time outside
// the trajectory fails the whole call with a *dynamo.SampleError.
func DeriveSeries(params physics.Params, tr *dynamo.Trajectory, times []float64) (*Series, error) {
	p, err := physics.NewPendulum(params)
	if err != nil {
		return nil, err
	}

	s := newSeries(len(times))
	for _, t := range times {
		x, err := tr.At(t)
		if err != nil {
			return nil, err
		}
		s.append(p, t, x)
	}
	return s, nil
}

// NativeSeries derives quantities on the solver's own step grid, using the
// accepted states directly.
func NativeSeries(params physics.Params, tr *dynamo.Trajectory) (*Series, error) {
	p, err := physics.NewPendulum(params)
	if err != nil {
		return nil, err
	}

	s := newSeries(tr.Len())
	for i, t := range tr.Times {
		s.append(p, t, tr.States[i])
	}
	return s, nil
}

// UniformTimes returns n times start + i*(end-start)/n for i in [0, n).
// The interval end itself is not included.
func UniformTimes(iv dynamo.Interval, n int) []float64 {
	if n <= 0 {
		return nil
	}
	dt := iv.Span() / float64(n)
	out := make([]float64, n)
	for i := range out {
		out[i] = iv.Start + float64(i)*dt
	}
	return out
}
