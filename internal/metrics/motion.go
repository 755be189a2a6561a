package metrics

import (
	"math"

	"github.com/san-kum/kapitza/internal/dynamo"
)

// Amplitude is half the peak-to-peak swing of the angle.
type Amplitude struct {
	name     string
	min, max float64
	samples  int
}

func NewAmplitude() *Amplitude {
	return &Amplitude{name: "amplitude"}
}

func (a *Amplitude) Name() string { return a.name }

func (a *Amplitude) Observe(t float64, x dynamo.State) {
	phi := x[0]
	if a.samples == 0 {
		a.min, a.max = phi, phi
	} else {
		a.min = math.Min(a.min, phi)
		a.max = math.Max(a.max, phi)
	}
	a.samples++
}

func (a *Amplitude) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return (a.max - a.min) / 2
}

func (a *Amplitude) Reset() {
	a.min, a.max = 0, 0
	a.samples = 0
}

// Rotations counts net full turns between the first and last sample. The
// angle is continuous along a trajectory, so no unwrapping is needed.
type Rotations struct {
	name        string
	first, last float64
	samples     int
}

func NewRotations() *Rotations {
	return &Rotations{name: "rotations"}
}

func (r *Rotations) Name() string { return r.name }

func (r *Rotations) Observe(t float64, x dynamo.State) {
	if r.samples == 0 {
		r.first = x[0]
	}
	r.last = x[0]
	r.samples++
}

func (r *Rotations) Value() float64 {
	return math.Trunc((r.last - r.first) / (2 * math.Pi))
}

func (r *Rotations) Reset() {
	r.first, r.last = 0, 0
	r.samples = 0
}
