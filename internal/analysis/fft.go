package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Spectrum is the one-sided power spectrum of uniformly sampled values.
type Spectrum struct {
	Freq  []float64
	Power []float64
}

// PowerSpectrum removes the mean from values sampled every dt and returns
// power per frequency bin, frequencies in cycles per time unit.
func PowerSpectrum(values []float64, dt float64) *Spectrum {
	n := len(values)
	if n < 2 || dt <= 0 {
		return &Spectrum{}
	}

	centered := make([]float64, n)
	copy(centered, values)
	floats.AddConst(-stat.Mean(values, nil), centered)

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	sp := &Spectrum{
		Freq:  make([]float64, len(coeff)),
		Power: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		sp.Freq[i] = fft.Freq(i) / dt
		a := cmplx.Abs(c)
		sp.Power[i] = a * a / float64(n)
	}
	return sp
}

// DominantFrequency is the strongest non-zero frequency of the spectrum.
func (s *Spectrum) DominantFrequency() float64 {
	if len(s.Power) < 2 {
		return 0
	}
	return s.Freq[1+floats.MaxIdx(s.Power[1:])]
}
