package integrators

import "github.com/san-kum/kapitza/internal/dynamo"

// polySegment evaluates y0 + sum_p coef[p] * x^(p+1) with x = (t-t0)/h.
// RK45 and Radau both reduce their continuous extension to this form.
type polySegment struct {
	t0, t1 float64
	h      float64
	y0     dynamo.State
	coef   []dynamo.State
}

func (s *polySegment) Bounds() (float64, float64) { return s.t0, s.t1 }

func (s *polySegment) At(t float64) dynamo.State {
	x := (t - s.t0) / s.h
	n := len(s.y0)
	out := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for p := len(s.coef) - 1; p >= 0; p-- {
			acc = (acc + s.coef[p][i]) * x
		}
		out[i] = s.y0[i] + acc
	}
	return out
}

// dop853Segment is the seventh-degree interpolant of DOP853. Its terms
// alternate between factors of x and (1-x).
type dop853Segment struct {
	t0, t1 float64
	h      float64
	y0     dynamo.State
	f      []dynamo.State
}

func (s *dop853Segment) Bounds() (float64, float64) { return s.t0, s.t1 }

func (s *dop853Segment) At(t float64) dynamo.State {
	x := (t - s.t0) / s.h
	n := len(s.y0)
	out := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for k := len(s.f) - 1; k >= 0; k-- {
			acc += s.f[k][i]
			if (len(s.f)-1-k)%2 == 0 {
				acc *= x
			} else {
				acc *= 1 - x
			}
		}
		out[i] = s.y0[i] + acc
	}
	return out
}

// bdfSegment is the Newton-form interpolating polynomial through the last
// order+1 BDF solution points.
type bdfSegment struct {
	t0, t1 float64
	h      float64
	order  int
	d      []dynamo.State
}

func (s *bdfSegment) Bounds() (float64, float64) { return s.t0, s.t1 }

func (s *bdfSegment) At(t float64) dynamo.State {
	out := s.d[0].Clone()
	p := 1.0
	for j := 0; j < s.order; j++ {
		p *= (t - (s.t1 - s.h*float64(j))) / (s.h * float64(1+j))
		for i := range out {
			out[i] += p * s.d[j+1][i]
		}
	}
	return out
}
