package integrators

import (
	"math"

	"github.com/san-kum/kapitza/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// tableau describes an embedded explicit Runge-Kutta pair. The last stage
// is evaluated at c = 1 and the step end derivative is reused as the first
// stage of the next step.
type tableau struct {
	name       string
	c          []float64
	a          [][]float64
	b          []float64
	order      int
	errorOrder int

	// errNorm returns the scaled error of the step from its stages, where
	// k has one entry per stage plus f(t+h, yNew).
	errNorm func(k []dynamo.State, h float64, scale []float64) float64
	// dense builds the step interpolant once the step is accepted.
	dense func(rk *explicitRK) dynamo.Segment
}

func (tb *tableau) stages() int { return len(tb.b) }

// explicitRK is the adaptive driver shared by RK45 and DOP853.
type explicitRK struct {
	tab  *tableau
	prob *problem
	opts Options
	tEnd float64

	t float64
	y dynamo.State
	f dynamo.State
	h float64

	safety   float64
	minScale float64
	maxScale float64

	// last accepted step
	tOld  float64
	yOld  dynamo.State
	hLast float64
	k     []dynamo.State
	hRho  float64
	seg   dynamo.Segment
}

func newExplicitRK(tab *tableau, p *problem, t0 float64, x0 dynamo.State, tEnd float64, opts Options) *explicitRK {
	rk := &explicitRK{
		tab:      tab,
		prob:     p,
		opts:     opts,
		tEnd:     tEnd,
		t:        t0,
		y:        x0.Clone(),
		safety:   safety,
		minScale: minScale,
		maxScale: maxScale,
	}
	rk.f = p.f(t0, rk.y)
	rk.h = firstStep(p, t0, rk.y, rk.f, tab.errorOrder, tEnd, opts)
	return rk
}

// newExplicitRKFrom resumes at (t0, x0) with a known step, skipping the
// initial step estimate.
func newExplicitRKFrom(tab *tableau, p *problem, t0 float64, x0 dynamo.State, tEnd, h float64, opts Options) *explicitRK {
	o := opts
	o.FirstStep = h
	return newExplicitRK(tab, p, t0, x0, tEnd, o)
}

func (rk *explicitRK) time() float64           { return rk.t }
func (rk *explicitRK) state() dynamo.State     { return rk.y }
func (rk *explicitRK) segment() dynamo.Segment { return rk.seg }

// stiffness is h·ρ for the last step, ρ being a local estimate of the
// dominant Jacobian eigenvalue magnitude.
func (rk *explicitRK) stiffness() float64 { return rk.hRho }

func (rk *explicitRK) attempt(h float64) (yNew, fNew dynamo.State, k []dynamo.State, lastY dynamo.State) {
	tab := rk.tab
	n := len(rk.y)
	ns := tab.stages()

	k = make([]dynamo.State, ns+1)
	k[0] = rk.f
	for s := 1; s < ns; s++ {
		ys := rk.y.Clone()
		for j, a := range tab.a[s] {
			if a != 0 {
				floats.AddScaled(ys, h*a, k[j])
			}
		}
		k[s] = rk.prob.f(rk.t+tab.c[s]*h, ys)
		lastY = ys
	}

	yNew = make(dynamo.State, n)
	copy(yNew, rk.y)
	for j, b := range tab.b {
		if b != 0 {
			floats.AddScaled(yNew, h*b, k[j])
		}
	}
	fNew = rk.prob.f(rk.t+h, yNew)
	k[ns] = fNew
	return yNew, fNew, k, lastY
}

func (rk *explicitRK) step() error {
	t := rk.t
	floor := minStep(t)
	h := clampStep(rk.h, t, rk.opts)
	exponent := -1 / float64(rk.tab.errorOrder+1)
	rejected := false

	var (
		tNew, errNorm float64
		yNew, fNew    dynamo.State
		k             []dynamo.State
		lastY         dynamo.State
	)
	for {
		if h < floor {
			return dynamo.ErrStepTooSmall
		}
		tNew = t + h
		if tNew > rk.tEnd {
			tNew = rk.tEnd
		}
		h = tNew - t

		yNew, fNew, k, lastY = rk.attempt(h)
		scale := tolScale(rk.y, yNew, rk.opts.RelTol, rk.opts.AbsTol)
		errNorm = rk.tab.errNorm(k, h, scale)

		if errNorm < 1 {
			break
		}
		h *= decayFactor(errNorm, exponent)
		rejected = true
		rk.prob.stats.Rejected++
	}

	var factor float64
	if errNorm == 0 {
		factor = rk.maxScale
	} else {
		factor = math.Min(rk.maxScale, rk.safety*math.Pow(errNorm, exponent))
	}
	if rejected {
		factor = math.Min(1, factor)
	}

	rk.hRho = 0
	if dy := floats.Distance(yNew, lastY, 2); dy > 0 {
		rk.hRho = h * floats.Distance(fNew, k[len(k)-2], 2) / dy
	}

	rk.tOld, rk.yOld, rk.hLast, rk.k = t, rk.y, h, k
	rk.t, rk.y, rk.f = tNew, yNew, fNew
	rk.h = h * factor
	rk.seg = rk.tab.dense(rk)
	return nil
}
