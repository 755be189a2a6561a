package integrators

import (
	"sort"
	"strings"

	"github.com/san-kum/kapitza/internal/dynamo"
)

// Method selects one of the adaptive integration schemes.
type Method string

const (
	RK45   Method = "RK45"
	DOP853 Method = "DOP853"
	Radau  Method = "Radau"
	BDF    Method = "BDF"
	LSODA  Method = "LSODA"
)

// stepper advances one accepted step at a time and exposes the interpolant
// of the step it just took.
type stepper interface {
	step() error
	time() float64
	state() dynamo.State
	segment() dynamo.Segment
}

type factory func(p *problem, t0 float64, x0 dynamo.State, tEnd float64, opts Options) stepper

var registry = map[Method]factory{
	RK45: func(p *problem, t0 float64, x0 dynamo.State, tEnd float64, opts Options) stepper {
		return newExplicitRK(rk45Tableau, p, t0, x0, tEnd, opts)
	},
	DOP853: func(p *problem, t0 float64, x0 dynamo.State, tEnd float64, opts Options) stepper {
		return newExplicitRK(dop853Tableau, p, t0, x0, tEnd, opts)
	},
	Radau: func(p *problem, t0 float64, x0 dynamo.State, tEnd float64, opts Options) stepper {
		return newRadau(p, t0, x0, tEnd, opts)
	},
	BDF: func(p *problem, t0 float64, x0 dynamo.State, tEnd float64, opts Options) stepper {
		return newBDF(p, t0, x0, tEnd, opts)
	},
	LSODA: func(p *problem, t0 float64, x0 dynamo.State, tEnd float64, opts Options) stepper {
		return newLSODA(p, t0, x0, tEnd, opts)
	},
}

// ParseMethod matches a selector case-insensitively.
func ParseMethod(name string) (Method, error) {
	for m := range registry {
		if strings.EqualFold(string(m), strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return "", &dynamo.MethodError{Method: name}
}

func (m Method) Valid() bool {
	_, ok := registry[m]
	return ok
}

func (m Method) String() string { return string(m) }

// Implicit reports whether the method solves a nonlinear system per step.
func (m Method) Implicit() bool {
	return m == Radau || m == BDF
}

// Methods lists every supported selector in a stable order.
func Methods() []Method {
	out := make([]Method, 0, len(registry))
	for m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Description is a one-line summary for listings.
func (m Method) Description() string {
	switch m {
	case RK45:
		return "explicit Runge-Kutta 5(4), Dormand-Prince"
	case DOP853:
		return "explicit Runge-Kutta 8(5,3), Dormand-Prince"
	case Radau:
		return "implicit Radau IIA, order 5"
	case BDF:
		return "implicit variable-order BDF (NDF), orders 1-5"
	case LSODA:
		return "automatic stiffness switching between DOP853 and BDF"
	}
	return ""
}
