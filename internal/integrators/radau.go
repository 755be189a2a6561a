package integrators

import (
	"math"

	"github.com/san-kum/kapitza/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Radau IIA, three stages, order 5.
var (
	sqrt6 = math.Sqrt(6)

	radauC = [3]float64{(4 - sqrt6) / 10, (4 + sqrt6) / 10, 1}
	radauA = [3][3]float64{
		{(88 - 7*sqrt6) / 360, (296 - 169*sqrt6) / 1800, (-2 + 3*sqrt6) / 225},
		{(296 + 169*sqrt6) / 1800, (88 + 7*sqrt6) / 360, (-2 - 3*sqrt6) / 225},
		{(16 - sqrt6) / 36, (16 + sqrt6) / 36, 1.0 / 9.0},
	}
	radauE = [3]float64{(-13 - 7*sqrt6) / 3, (-13 + 7*sqrt6) / 3, -1.0 / 3.0}

	// real eigenvalue of inv(A)
	radauMu = 3 + math.Cbrt(9) - math.Cbrt(3)

	// maps stage increments onto the cubic continuous extension
	radauP = [3][3]float64{
		{13.0/3 + 7*sqrt6/3, -23.0/3 - 22*sqrt6/3, 10.0/3 + 5*sqrt6},
		{13.0/3 - 7*sqrt6/3, -23.0/3 + 22*sqrt6/3, 10.0/3 - 5*sqrt6},
		{1.0 / 3, -8.0 / 3, 10.0 / 3},
	}
)

const radauNewtonMaxIter = 6

type radau struct {
	prob *problem
	opts Options
	tEnd float64
	n    int

	t float64
	y dynamo.State
	f dynamo.State
	h float64

	hOld, errOld float64
	jac          *mat.Dense
	jacCurrent   bool
	newtonTol    float64

	seg *polySegment
}

func newRadau(p *problem, t0 float64, x0 dynamo.State, tEnd float64, opts Options) *radau {
	r := &radau{
		prob: p,
		opts: opts,
		tEnd: tEnd,
		n:    len(x0),
		t:    t0,
		y:    x0.Clone(),
	}
	r.f = p.f(t0, r.y)
	r.h = firstStep(p, t0, r.y, r.f, 3, tEnd, opts)
	r.jac = p.jacobian(t0, r.y, r.f)
	r.jacCurrent = true
	r.newtonTol = newtonTolerance(opts.RelTol)
	return r
}

func newtonTolerance(rtol float64) float64 {
	return math.Max(10*epsilon/rtol, math.Min(0.03, math.Sqrt(rtol)))
}

func (r *radau) time() float64       { return r.t }
func (r *radau) state() dynamo.State { return r.y }

func (r *radau) segment() dynamo.Segment {
	if r.seg == nil {
		return nil
	}
	return r.seg
}

// predictFactor is Gustafsson's predictive step controller.
func predictFactor(h, hOld, errNorm, errOld float64) float64 {
	multiplier := 1.0
	if hOld > 0 && errOld > 0 && errNorm > 0 {
		multiplier = h / hOld * math.Pow(errOld/errNorm, 0.25)
	}
	if errNorm == 0 {
		return math.Inf(1)
	}
	return math.Min(1, multiplier) * math.Pow(errNorm, -0.25)
}

// newtonMatrix builds I - h·(A ⊗ J) for the coupled stage system.
func (r *radau) newtonMatrix(h float64, J *mat.Dense) *mat.Dense {
	n := r.n
	m := mat.NewDense(3*n, 3*n, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for p := 0; p < n; p++ {
				for q := 0; q < n; q++ {
					v := -h * radauA[i][j] * J.At(p, q)
					if i == j && p == q {
						v++
					}
					m.Set(i*n+p, j*n+q, v)
				}
			}
		}
	}
	return m
}

// errorMatrix is mu/h·I - J, used for the embedded error estimate.
func (r *radau) errorMatrix(h float64, J *mat.Dense) *mat.Dense {
	n := r.n
	m := mat.NewDense(n, n, nil)
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			v := -J.At(p, q)
			if p == q {
				v += radauMu / h
			}
			m.Set(p, q, v)
		}
	}
	return m
}

func (r *radau) step() error {
	t, y, f, n := r.t, r.y, r.f, r.n
	floor := minStep(t)

	h := r.h
	hOld, errOld := r.hOld, r.errOld
	if h < floor {
		h = floor
		hOld, errOld = 0, 0
	}
	if r.opts.MaxStep > 0 && h > r.opts.MaxStep {
		h = r.opts.MaxStep
		hOld, errOld = 0, 0
	}

	J := r.jac
	current := r.jacCurrent
	rejected := false

	var (
		lu, luErr     *mat.LU
		tNew, errNorm float64
		yNew          dynamo.State
		z             [3]dynamo.State
		iters         int
		rate          float64
		fac           float64
	)
	for {
		if h < floor {
			return dynamo.ErrStepTooSmall
		}
		tNew = t + h
		if tNew > r.tEnd {
			tNew = r.tEnd
		}
		h = tNew - t

		for i := range z {
			if r.seg == nil {
				z[i] = make(dynamo.State, n)
			} else {
				z[i] = r.seg.At(t + h*radauC[i]).Sub(y)
			}
		}
		scale := tolScale(y, nil, r.opts.RelTol, r.opts.AbsTol)

		converged := false
		for {
			if lu == nil {
				var ok1, ok2 bool
				lu, ok1 = decompose(r.prob, r.newtonMatrix(h, J))
				luErr, ok2 = decompose(r.prob, r.errorMatrix(h, J))
				if !ok1 || !ok2 {
					lu = nil
					break
				}
			}
			var zNew [3]dynamo.State
			converged, iters, zNew, rate = r.newton(t, y, h, z, lu, scale)
			if converged {
				z = zNew
				break
			}
			if current {
				break
			}
			J = r.prob.jacobian(t, y, f)
			current = true
			lu = nil
		}
		if !converged {
			h *= 0.5
			lu = nil
			r.prob.stats.Rejected++
			continue
		}

		yNew = y.Add(z[2])
		ze := make(dynamo.State, n)
		for i := 0; i < 3; i++ {
			for k := 0; k < n; k++ {
				ze[k] += radauE[i] * z[i][k] / h
			}
		}
		errVec, ok := solve(luErr, f.Add(ze))
		if !ok {
			return dynamo.ErrNewtonFailure
		}
		scale = tolScale(y, yNew, r.opts.RelTol, r.opts.AbsTol)
		errNorm = scaledNorm(errVec, scale)

		fac = safety * float64(2*radauNewtonMaxIter+1) / float64(2*radauNewtonMaxIter+iters)

		if rejected && errNorm > 1 {
			fe := r.prob.f(t, y.Add(errVec))
			if errVec, ok = solve(luErr, fe.Add(ze)); ok {
				errNorm = scaledNorm(errVec, scale)
			}
		}

		if !(errNorm <= 1) {
			factor := predictFactor(h, hOld, errNorm, errOld)
			if !(fac*factor > minScale) {
				h *= minScale
			} else {
				h *= fac * factor
			}
			lu = nil
			rejected = true
			r.prob.stats.Rejected++
			continue
		}
		break
	}

	recompute := iters > 2 && rate > 1e-3
	factor := math.Min(maxScale, fac*predictFactor(h, hOld, errNorm, errOld))
	if !recompute && factor < 1.2 {
		factor = 1
	}

	fNew := r.prob.f(tNew, yNew)
	if recompute {
		r.jac = r.prob.jacobian(tNew, yNew, fNew)
		r.jacCurrent = true
	} else {
		r.jac = J
		r.jacCurrent = false
	}

	r.hOld, r.errOld = h, errNorm

	coef := make([]dynamo.State, 3)
	for p := range coef {
		coef[p] = make(dynamo.State, n)
		for i := 0; i < 3; i++ {
			for k := 0; k < n; k++ {
				coef[p][k] += z[i][k] * radauP[i][p]
			}
		}
	}
	r.seg = &polySegment{t0: t, t1: tNew, h: h, y0: y, coef: coef}

	r.t, r.y, r.f = tNew, yNew, fNew
	r.h = h * factor
	return nil
}

// newton runs the simplified Newton iteration on the stage increments z.
func (r *radau) newton(t float64, y dynamo.State, h float64, z0 [3]dynamo.State, lu *mat.LU, scale []float64) (bool, int, [3]dynamo.State, float64) {
	n := r.n
	var z [3]dynamo.State
	for i := range z {
		z[i] = z0[i].Clone()
	}

	var (
		dwNormOld float64
		rate      float64
		haveRate  bool
		k         int
	)
	for k = 0; k < radauNewtonMaxIter; k++ {
		var fs [3]dynamo.State
		for i := 0; i < 3; i++ {
			fs[i] = r.prob.f(t+radauC[i]*h, y.Add(z[i]))
			if !allFinite(fs[i]) {
				return false, k + 1, z, rate
			}
		}

		g := make([]float64, 3*n)
		for i := 0; i < 3; i++ {
			for p := 0; p < n; p++ {
				sum := 0.0
				for j := 0; j < 3; j++ {
					sum += radauA[i][j] * fs[j][p]
				}
				g[i*n+p] = h*sum - z[i][p]
			}
		}
		dz, ok := solve(lu, g)
		if !ok {
			return false, k + 1, z, rate
		}

		w := make([]float64, 3*n)
		for i := 0; i < 3; i++ {
			for p := 0; p < n; p++ {
				w[i*n+p] = dz[i*n+p] / scale[p]
			}
		}
		dwNorm := rmsNorm(w)
		if k > 0 {
			rate = dwNorm / dwNormOld
			haveRate = true
		}
		if haveRate && (rate >= 1 || math.Pow(rate, float64(radauNewtonMaxIter-k))/(1-rate)*dwNorm > r.newtonTol) {
			return false, k + 1, z, rate
		}

		for i := 0; i < 3; i++ {
			for p := 0; p < n; p++ {
				z[i][p] += dz[i*n+p]
			}
		}
		if dwNorm == 0 || (haveRate && rate/(1-rate)*dwNorm < r.newtonTol) {
			return true, k + 1, z, rate
		}
		dwNormOld = dwNorm
	}
	return false, k, z, rate
}
