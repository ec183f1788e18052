package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is the one-sided amplitude spectrum of a sampled series.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum removes the mean of xs, zero-pads it to a power of two and
// transforms it. sampleDt is the time between samples.
func PowerSpectrum(xs []float64, sampleDt float64) Spectrum {
	if len(xs) < 2 || !(sampleDt > 0) {
		return Spectrum{}
	}

	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	n := 1
	for n < len(xs) {
		n *= 2
	}
	padded := make([]float64, n)
	for i, x := range xs {
		padded[i] = x - mean
	}

	bins := fft.FFTReal(padded)
	s := Spectrum{
		Freqs: make([]float64, n/2),
		Power: make([]float64, n/2),
	}
	df := 1 / (float64(n) * sampleDt)
	for i := range s.Power {
		s.Freqs[i] = float64(i) * df
		s.Power[i] = cmplx.Abs(bins[i])
	}
	return s
}

// Dominant returns the strongest non-zero frequency, or 0 when the series is
// flat.
func (s Spectrum) Dominant() (freq, power float64) {
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > power {
			freq, power = s.Freqs[i], s.Power[i]
		}
	}
	return freq, power
}
