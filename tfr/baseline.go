package tfr

import (
	"fmt"
	"math"
)

// ApplyBaselineLogratio rescales power in place: for every trial, channel
// and frequency, values are divided by the mean power over the baseline
// window [bminSec, bmaxSec] (inclusive) and log10-transformed. On the
// resulting scale, power equal to baseline maps to zero.
func (p *Power) ApplyBaselineLogratio(bminSec, bmaxSec float64) error {
	// Half a sample of slack so the window endpoints survive the floating
	// point time axis.
	tol := 0.5 / p.SampleRate

	var baselineIdx []int
	for i, t := range p.Times {
		if t >= bminSec-tol && t <= bmaxSec+tol {
			baselineIdx = append(baselineIdx, i)
		}
	}
	if len(baselineIdx) == 0 {
		return fmt.Errorf("baseline window [%g, %g] contains no samples", bminSec, bmaxSec)
	}

	for ti := range p.Data {
		for ci := range p.Data[ti] {
			for fi := range p.Data[ti][ci] {
				row := p.Data[ti][ci][fi]

				var mean float64
				for _, i := range baselineIdx {
					mean += row[i]
				}
				mean /= float64(len(baselineIdx))

				if mean <= 0 {
					return fmt.Errorf("non-positive baseline mean power in trial %d, channel %q, %g Hz", ti, p.ChannelNames[ci], p.Freqs[fi])
				}

				for i := range row {
					row[i] = math.Log10(row[i] / mean)
				}
			}
		}
	}

	return nil
}
