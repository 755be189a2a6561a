package integrators

import (
	"math"

	"github.com/san-kum/kapitza/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Variable-order numerical differentiation formulas (Shampine & Reichelt,
// "The MATLAB ODE Suite").
const (
	bdfMaxOrder      = 5
	bdfNewtonMaxIter = 4
)

var (
	bdfKappa = [bdfMaxOrder + 1]float64{0, -0.1850, -1.0 / 9.0, -0.0823, -0.0415, 0}
	bdfGamma [bdfMaxOrder + 1]float64
	bdfAlpha [bdfMaxOrder + 1]float64
	bdfError [bdfMaxOrder + 1]float64
)

func init() {
	for i := 1; i <= bdfMaxOrder; i++ {
		bdfGamma[i] = bdfGamma[i-1] + 1/float64(i)
	}
	for i := 0; i <= bdfMaxOrder; i++ {
		bdfAlpha[i] = (1 - bdfKappa[i]) * bdfGamma[i]
		bdfError[i] = bdfKappa[i]*bdfGamma[i] + 1/float64(i+1)
	}
}

// rescaleMatrix is the matrix that maps backward differences at step h to
// differences at step factor·h.
func rescaleMatrix(order int, factor float64) *mat.Dense {
	m := mat.NewDense(order+1, order+1, nil)
	for j := 0; j <= order; j++ {
		m.Set(0, j, 1)
	}
	for i := 1; i <= order; i++ {
		for j := 1; j <= order; j++ {
			m.Set(i, j, m.At(i-1, j)*(float64(i-1)-factor*float64(j))/float64(i))
		}
	}
	return m
}

// changeDifferences rescales d[0..order] in place for a new step size.
func changeDifferences(d []dynamo.State, order int, factor float64) {
	var ru mat.Dense
	ru.Mul(rescaleMatrix(order, factor), rescaleMatrix(order, 1))

	n := len(d[0])
	block := mat.NewDense(order+1, n, nil)
	for i := 0; i <= order; i++ {
		block.SetRow(i, d[i])
	}
	var out mat.Dense
	out.Mul(ru.T(), block)
	for i := 0; i <= order; i++ {
		mat.Row(d[i], i, &out)
	}
}

type bdf struct {
	prob *problem
	opts Options
	tEnd float64
	n    int

	t float64
	y dynamo.State
	h float64

	order      int
	equalSteps int
	d          []dynamo.State
	jac        *mat.Dense
	lu         *mat.LU
	newtonTol  float64

	seg *bdfSegment
}

func newBDF(p *problem, t0 float64, x0 dynamo.State, tEnd float64, opts Options) *bdf {
	b := &bdf{
		prob:  p,
		opts:  opts,
		tEnd:  tEnd,
		n:     len(x0),
		t:     t0,
		y:     x0.Clone(),
		order: 1,
	}
	f := p.f(t0, b.y)
	b.h = firstStep(p, t0, b.y, f, 1, tEnd, opts)
	b.newtonTol = newtonTolerance(opts.RelTol)
	b.jac = p.jacobian(t0, b.y, f)

	b.d = make([]dynamo.State, bdfMaxOrder+3)
	for i := range b.d {
		b.d[i] = make(dynamo.State, b.n)
	}
	copy(b.d[0], b.y)
	copy(b.d[1], f.Scale(b.h))
	return b
}

func (b *bdf) time() float64       { return b.t }
func (b *bdf) state() dynamo.State { return b.y }

func (b *bdf) segment() dynamo.Segment {
	if b.seg == nil {
		return nil
	}
	return b.seg
}

// stepSize is the size the next step will attempt.
func (b *bdf) stepSize() float64 { return b.h }

func (b *bdf) step() error {
	t, d, n := b.t, b.d, b.n
	floor := minStep(t)

	h := b.h
	if h < floor {
		changeDifferences(d, b.order, floor/h)
		h = floor
		b.equalSteps = 0
	} else if b.opts.MaxStep > 0 && h > b.opts.MaxStep {
		changeDifferences(d, b.order, b.opts.MaxStep/h)
		h = b.opts.MaxStep
		b.equalSteps = 0
		b.lu = nil
	}

	order := b.order
	J := b.jac
	lu := b.lu
	current := false

	var (
		tNew, errNorm float64
		yNew, dCorr   dynamo.State
		scale         []float64
		iters         int
		fac           float64
	)
	for {
		if h < floor {
			return dynamo.ErrStepTooSmall
		}
		tNew = t + h
		if tNew > b.tEnd {
			tNew = b.tEnd
			changeDifferences(d, order, (tNew-t)/h)
			b.equalSteps = 0
			lu = nil
		}
		h = tNew - t

		yPredict := make(dynamo.State, n)
		for i := 0; i <= order; i++ {
			for p := 0; p < n; p++ {
				yPredict[p] += d[i][p]
			}
		}
		scale = tolScale(yPredict, nil, b.opts.RelTol, b.opts.AbsTol)

		psi := make(dynamo.State, n)
		for i := 1; i <= order; i++ {
			for p := 0; p < n; p++ {
				psi[p] += d[i][p] * bdfGamma[i]
			}
		}
		for p := range psi {
			psi[p] /= bdfAlpha[order]
		}
		c := h / bdfAlpha[order]

		converged := false
		for {
			if lu == nil {
				m := mat.NewDense(n, n, nil)
				m.Scale(-c, J)
				for p := 0; p < n; p++ {
					m.Set(p, p, m.At(p, p)+1)
				}
				var ok bool
				if lu, ok = decompose(b.prob, m); !ok {
					lu = nil
					break
				}
			}
			converged, iters, yNew, dCorr = b.newton(tNew, yPredict, c, psi, lu, scale)
			if converged || current {
				break
			}
			J = b.prob.jacobian(tNew, yPredict, nil)
			lu = nil
			current = true
		}

		if !converged {
			h *= 0.5
			changeDifferences(d, order, 0.5)
			b.equalSteps = 0
			lu = nil
			b.prob.stats.Rejected++
			continue
		}

		fac = safety * float64(2*bdfNewtonMaxIter+1) / float64(2*bdfNewtonMaxIter+iters)
		scale = tolScale(yNew, nil, b.opts.RelTol, b.opts.AbsTol)
		errVec := dCorr.Scale(bdfError[order])
		errNorm = scaledNorm(errVec, scale)

		if !(errNorm <= 1) {
			factor := minScale
			if v := fac * math.Pow(errNorm, -1/float64(order+1)); v > minScale {
				factor = v
			}
			h *= factor
			changeDifferences(d, order, factor)
			b.equalSteps = 0
			b.prob.stats.Rejected++
			continue
		}
		break
	}

	b.equalSteps++
	b.t, b.y = tNew, yNew
	b.jac = J
	b.lu = lu

	for p := 0; p < n; p++ {
		d[order+2][p] = dCorr[p] - d[order+1][p]
		d[order+1][p] = dCorr[p]
	}
	for i := order; i >= 0; i-- {
		for p := 0; p < n; p++ {
			d[i][p] += d[i+1][p]
		}
	}

	// the interpolant uses the differences before any rescaling below
	b.seg = b.snapshot(t, tNew, h, order)

	if b.equalSteps < order+1 {
		b.h, b.order = h, order
		return nil
	}

	errM, errP := math.Inf(1), math.Inf(1)
	if order > 1 {
		errM = scaledNorm(d[order].Scale(bdfError[order-1]), scale)
	}
	if order < bdfMaxOrder {
		errP = scaledNorm(d[order+2].Scale(bdfError[order+1]), scale)
	}

	norms := [3]float64{errM, errNorm, errP}
	best, bestFactor := 0, math.Inf(-1)
	for i, e := range norms {
		f := math.Inf(1)
		if e != 0 {
			f = math.Pow(e, -1/float64(order+i))
		}
		if f > bestFactor {
			best, bestFactor = i, f
		}
	}
	order += best - 1

	factor := math.Min(maxScale, fac*bestFactor)
	h *= factor
	changeDifferences(d, order, factor)
	b.equalSteps = 0
	b.lu = nil

	b.h, b.order = h, order
	return nil
}

func (b *bdf) snapshot(t0, t1, h float64, order int) *bdfSegment {
	d := make([]dynamo.State, order+1)
	for i := range d {
		d[i] = b.d[i].Clone()
	}
	return &bdfSegment{t0: t0, t1: t1, h: h, order: order, d: d}
}

func (b *bdf) newton(tNew float64, yPredict dynamo.State, c float64, psi dynamo.State, lu *mat.LU, scale []float64) (bool, int, dynamo.State, dynamo.State) {
	n := b.n
	dCorr := make(dynamo.State, n)
	y := yPredict.Clone()

	var (
		dyNormOld float64
		k         int
	)
	for k = 0; k < bdfNewtonMaxIter; k++ {
		f := b.prob.f(tNew, y)
		if !allFinite(f) {
			return false, k + 1, y, dCorr
		}

		rhs := make([]float64, n)
		for p := 0; p < n; p++ {
			rhs[p] = c*f[p] - psi[p] - dCorr[p]
		}
		dy, ok := solve(lu, rhs)
		if !ok {
			return false, k + 1, y, dCorr
		}
		dyNorm := scaledNorm(dy, scale)

		rate := -1.0
		if k > 0 {
			rate = dyNorm / dyNormOld
		}
		if rate >= 0 && (rate >= 1 || math.Pow(rate, float64(bdfNewtonMaxIter-k))/(1-rate)*dyNorm > b.newtonTol) {
			return false, k + 1, y, dCorr
		}

		for p := 0; p < n; p++ {
			y[p] += dy[p]
			dCorr[p] += dy[p]
		}
		if dyNorm == 0 || (rate >= 0 && rate/(1-rate)*dyNorm < b.newtonTol) {
			return true, k + 1, y, dCorr
		}
		dyNormOld = dyNorm
	}
	return false, k, y, dCorr
}
