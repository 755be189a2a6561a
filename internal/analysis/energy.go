package analysis

import (
	"math"

	"github.com/san-kum/kapitza/internal/dynamo"
)

// TotalEnergy is kinetic plus potential energy at each sample.
func TotalEnergy(s *Series) []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = s.Kinetic[i] + s.Potential[i]
	}
	return out
}

// Envelope is half the peak-to-peak range of phi over samples in
// [from, to].
func Envelope(s *Series, from, to float64) (float64, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for i, t := range s.Times {
		if t < from || t > to {
			continue
		}
		lo = math.Min(lo, s.Phi[i])
		hi = math.Max(hi, s.Phi[i])
		n++
	}
	if n == 0 {
		start, end := 0.0, 0.0
		if s.Len() > 0 {
			start, end = s.Times[0], s.Times[s.Len()-1]
		}
		return 0, &dynamo.SampleError{Time: from, Start: start, End: end}
	}
	return (hi - lo) / 2, nil
}

// WindowMean averages values whose sample time falls in [from, to].
func WindowMean(times, values []float64, from, to float64) float64 {
	sum, n := 0.0, 0
	for i, t := range times {
		if t >= from && t <= to {
			sum += values[i]
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
