// Package tfr computes Morlet-wavelet time-frequency power for epoch
// collections, with logratio baseline correction against a pre-stimulus
// window.
package tfr

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/neurokit/eegtfr/epoch"
)

// Power is time-frequency power per trial: Data[t][c][f][i] is the squared
// wavelet-coefficient magnitude of trial t, channel c, at frequency
// Freqs[f] and time Times[i]. Once baseline correction has been applied
// the values are on a logratio scale and the array is treated as
// immutable.
type Power struct {
	Data         [][][][]float64 // trial × channel × freq × time
	Freqs        []float64
	Times        []float64
	SampleRate   float64
	ChannelNames []string
}

// LinspaceFreqs builds an evenly spaced frequency grid from fmin to fmax
// inclusive.
func LinspaceFreqs(fmin, fmax float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{fmin}
	}

	return floats.Span(make([]float64, n), fmin, fmax)
}

// HalfCycles is the fixed time-frequency resolution trade-off used
// throughout this pipeline: n_cycles = f/2 at every frequency.
func HalfCycles(freqs []float64) []float64 {
	cycles := make([]float64, len(freqs))
	for i, f := range freqs {
		cycles[i] = f / 2.0
	}

	return cycles
}

// Compute convolves every trial and channel with a complex Morlet wavelet
// per frequency and squares the coefficient magnitudes. freqs and nCycles
// must be the same length.
func Compute(epochs *epoch.Collection, freqs, nCycles []float64) (*Power, error) {
	if epochs.Len() == 0 {
		return nil, fmt.Errorf("no epochs to transform")
	}
	if len(freqs) == 0 {
		return nil, fmt.Errorf("no frequencies requested")
	}
	if len(freqs) != len(nCycles) {
		return nil, fmt.Errorf("got %d frequencies but %d cycle counts", len(freqs), len(nCycles))
	}

	nTrials := epochs.Len()
	nChannels := len(epochs.ChannelNames)
	nTimes := len(epochs.Times)

	data := make([][][][]float64, nTrials)
	for t := range data {
		data[t] = make([][][]float64, nChannels)
		for c := range data[t] {
			data[t][c] = make([][]float64, len(freqs))
			for f := range data[t][c] {
				data[t][c][f] = make([]float64, nTimes)
			}
		}
	}

	for fi, freq := range freqs {
		if freq <= 0 {
			return nil, fmt.Errorf("frequencies must be positive, got %g", freq)
		}
		if nCycles[fi] <= 0 {
			return nil, fmt.Errorf("cycle counts must be positive, got %g at %g Hz", nCycles[fi], freq)
		}

		wavelet := morletWavelet(epochs.SampleRate, freq, nCycles[fi])

		// One FFT plan per frequency: the convolution length depends only
		// on the wavelet support, which is fixed across trials.
		n := nTimes + len(wavelet) - 1
		fft := fourier.NewCmplxFFT(n)

		padded := make([]complex128, n)
		copy(padded, wavelet)
		waveletCoeff := fft.Coefficients(nil, padded)

		signal := make([]complex128, n)
		prod := make([]complex128, n)
		start := (len(wavelet) - 1) / 2
		scale := 1.0 / float64(n)

		for ti := 0; ti < nTrials; ti++ {
			for ci := 0; ci < nChannels; ci++ {
				x := epochs.Data[ti][ci]
				for i := range signal {
					if i < len(x) {
						signal[i] = complex(x[i], 0)
					} else {
						signal[i] = 0
					}
				}

				signalCoeff := fft.Coefficients(prod, signal)
				for i := range signalCoeff {
					signalCoeff[i] *= waveletCoeff[i]
				}
				full := fft.Sequence(signal, signalCoeff)

				// Center the full convolution on the input ("same"
				// alignment) and undo the unnormalized transform pair.
				row := data[ti][ci][fi]
				for i := 0; i < nTimes; i++ {
					re := real(full[start+i]) * scale
					im := imag(full[start+i]) * scale
					row[i] = re*re + im*im
				}
			}
		}
	}

	return &Power{
		Data:         data,
		Freqs:        freqs,
		Times:        epochs.Times,
		SampleRate:   epochs.SampleRate,
		ChannelNames: epochs.ChannelNames,
	}, nil
}

// morletWavelet builds a complex Morlet wavelet at freqHz: a complex
// carrier under a Gaussian envelope with sigma_t = nCycles/(2*pi*f),
// supported on ±5 sigma_t. The carrier is offset so the wavelet integrates
// to zero, and the result is L2-normalized by sqrt(0.5)*||w||.
func morletWavelet(rateHz, freqHz, nCycles float64) []complex128 {
	sigmaT := nCycles / (2.0 * math.Pi * freqHz)

	half := int(math.Round(5.0 * sigmaT * rateHz))
	if half < 1 {
		half = 1
	}

	offset := math.Exp(-2.0 * math.Pow(math.Pi*freqHz*sigmaT, 2))

	w := make([]complex128, 2*half+1)
	var sumSq float64
	for i := range w {
		t := float64(i-half) / rateHz
		envelope := math.Exp(-t * t / (2.0 * sigmaT * sigmaT))
		carrier := cmplx.Exp(complex(0, 2.0*math.Pi*freqHz*t)) - complex(offset, 0)
		w[i] = carrier * complex(envelope, 0)
		sumSq += real(w[i])*real(w[i]) + imag(w[i])*imag(w[i])
	}

	norm := complex(1.0/(math.Sqrt(0.5)*math.Sqrt(sumSq)), 0)
	for i := range w {
		w[i] *= norm
	}

	return w
}

// PickChannel returns the trial × freq × time view of one channel.
func (p *Power) PickChannel(name string) ([][][]float64, error) {
	idx := -1
	for i, ch := range p.ChannelNames {
		if ch == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("channel %q not present in power data", name)
	}

	out := make([][][]float64, len(p.Data))
	for t := range p.Data {
		out[t] = p.Data[t][idx]
	}

	return out, nil
}

// AverageTrials collapses the trial axis, returning channel × freq × time
// mean power.
func (p *Power) AverageTrials() [][][]float64 {
	if len(p.Data) == 0 {
		return nil
	}

	nTrials := float64(len(p.Data))
	nChannels := len(p.ChannelNames)

	avg := make([][][]float64, nChannels)
	for c := 0; c < nChannels; c++ {
		avg[c] = make([][]float64, len(p.Freqs))
		for f := range p.Freqs {
			row := make([]float64, len(p.Times))
			for t := range p.Data {
				floats.Add(row, p.Data[t][c][f])
			}
			floats.Scale(1.0/nTrials, row)
			avg[c][f] = row
		}
	}

	return avg
}
