package preprocess

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// ResampleFFT resamples x to n samples in the frequency domain: forward
// real FFT, coefficient truncation (or zero-padding), inverse transform at
// the new length. Amplitudes are preserved; content above the new Nyquist
// frequency is discarded.
func ResampleFFT(x []float64, n int) []float64 {
	if len(x) == 0 || n <= 0 {
		return nil
	}
	if n == len(x) {
		out := make([]float64, n)
		copy(out, x)
		return out
	}

	fwd := fourier.NewFFT(len(x))
	coeff := fwd.Coefficients(nil, x)

	newCoeff := make([]complex128, n/2+1)
	keep := len(coeff)
	if len(newCoeff) < keep {
		keep = len(newCoeff)
	}
	copy(newCoeff, coeff[:keep])

	inv := fourier.NewFFT(n)
	out := inv.Sequence(nil, newCoeff)

	// The transform pair is unnormalized; dividing by the original length
	// makes the round trip amplitude-preserving.
	floats.Scale(1.0/float64(len(x)), out)

	return out
}

// Resample converts x from one sampling rate to another, producing
// round(len(x) * toHz / fromHz) samples.
func Resample(x []float64, fromHz, toHz float64) []float64 {
	n := int(math.Round(float64(len(x)) * toHz / fromHz))
	return ResampleFFT(x, n)
}
