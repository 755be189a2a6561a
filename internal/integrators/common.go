package integrators

import (
	"math"

	"github.com/san-kum/kapitza/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// step-size controller bounds shared by every method
	safety   = 0.9
	minScale = 0.2
	maxScale = 10.0
)

var epsilon = math.Nextafter(1, 2) - 1

// problem wraps the user system and counts the work the solver asks of it.
type problem struct {
	sys   dynamo.System
	jac   dynamo.Jacobian
	stats *dynamo.Stats
}

func newProblem(sys dynamo.System) *problem {
	p := &problem{sys: sys, stats: &dynamo.Stats{}}
	if j, ok := sys.(dynamo.Jacobian); ok {
		p.jac = j
	}
	return p
}

func (p *problem) f(t float64, x dynamo.State) dynamo.State {
	p.stats.Evaluations++
	return p.sys.Derive(t, x)
}

// jacobian returns df/dx at (t, x). fx is f(t, x) when the caller already
// has it; the finite-difference fallback evaluates it otherwise.
func (p *problem) jacobian(t float64, x, fx dynamo.State) *mat.Dense {
	p.stats.JacobianEvals++
	if p.jac != nil {
		return p.jac.Jacobian(t, x)
	}

	if fx == nil {
		fx = p.f(t, x)
	}
	n := len(x)
	J := mat.NewDense(n, n, nil)
	xp := x.Clone()
	for j := 0; j < n; j++ {
		h := math.Sqrt(epsilon) * math.Max(math.Abs(x[j]), 1)
		xp[j] = x[j] + h
		h = xp[j] - x[j]
		fp := p.f(t, xp)
		for i := 0; i < n; i++ {
			J.Set(i, j, (fp[i]-fx[i])/h)
		}
		xp[j] = x[j]
	}
	return J
}

// rmsNorm is the root-mean-square norm used for every error test.
func rmsNorm(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, 2) / math.Sqrt(float64(len(v)))
}

// scaledNorm is rmsNorm(v / scale).
func scaledNorm(v, scale []float64) float64 {
	w := make([]float64, len(v))
	floats.DivTo(w, v, scale)
	return rmsNorm(w)
}

// tolScale returns atol + rtol*max(|a|, |b|) per component. b may be nil.
func tolScale(a, b dynamo.State, rtol, atol float64) []float64 {
	s := make([]float64, len(a))
	for i := range a {
		m := math.Abs(a[i])
		if b != nil {
			m = math.Max(m, math.Abs(b[i]))
		}
		s[i] = atol + rtol*m
	}
	return s
}

// minStep is the smallest step distinguishable from t.
func minStep(t float64) float64 {
	return 10 * math.Abs(math.Nextafter(t, math.Inf(1))-t)
}

// initialStep follows Hairer, Nørsett & Wanner, "Solving Ordinary
// Differential Equations I", sec. II.4.
func initialStep(p *problem, t0 float64, y0, f0 dynamo.State, order int, span float64, opts Options) float64 {
	scale := tolScale(y0, nil, opts.RelTol, opts.AbsTol)
	d0 := scaledNorm(y0, scale)
	d1 := scaledNorm(f0, scale)

	h0 := 0.01 * d0 / d1
	if d0 < 1e-5 || d1 < 1e-5 {
		h0 = 1e-6
	}
	h0 = math.Min(h0, span)

	y1 := y0.Add(f0.Scale(h0))
	f1 := p.f(t0+h0, y1)
	d2 := scaledNorm(f1.Sub(f0), scale) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1/float64(order+1))
	}

	return math.Min(math.Min(100*h0, h1), span)
}

// firstStep honours Options.FirstStep and MaxStep before falling back to
// the automatic estimate.
func firstStep(p *problem, t0 float64, y0, f0 dynamo.State, order int, tEnd float64, opts Options) float64 {
	span := tEnd - t0
	h := opts.FirstStep
	if h <= 0 {
		h = initialStep(p, t0, y0, f0, order, span, opts)
	}
	h = math.Min(h, span)
	if opts.MaxStep > 0 {
		h = math.Min(h, opts.MaxStep)
	}
	return h
}

// clampStep keeps h within [minStep(t), MaxStep].
func clampStep(h, t float64, opts Options) float64 {
	if opts.MaxStep > 0 && h > opts.MaxStep {
		h = opts.MaxStep
	}
	if m := minStep(t); h < m {
		h = m
	}
	return h
}

// decompose factorizes m, reporting false when it is numerically singular.
func decompose(p *problem, m *mat.Dense) (*mat.LU, bool) {
	p.stats.Decompositions++
	lu := &mat.LU{}
	lu.Factorize(m)
	if math.IsInf(lu.Cond(), 1) {
		return nil, false
	}
	return lu, true
}

// solve returns the solution of LU·x = b.
func solve(lu *mat.LU, b []float64) ([]float64, bool) {
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, mat.NewVecDense(len(b), b)); err != nil {
		// only a Condition warning is tolerable
		if _, ok := err.(mat.Condition); !ok {
			return nil, false
		}
	}
	out := make([]float64, len(b))
	for i := range out {
		out[i] = x.AtVec(i)
	}
	return out, true
}

// decayFactor converts an error norm into a step multiplier, falling back to
// minScale when the norm is not finite.
func decayFactor(errNorm, exponent float64) float64 {
	f := safety * math.Pow(errNorm, exponent)
	if !(f > minScale) {
		return minScale
	}
	return f
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
