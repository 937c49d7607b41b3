// Package preprocess holds the signal-conditioning primitives applied to a
// recording before epoching: band-pass filtering and sampling-rate
// conversion.
package preprocess

import (
	"fmt"
	"math"

	"github.com/jfcg/butter"

	"github.com/neurokit/eegtfr/recording"
)

// BandPass runs x through cascaded first-order Butterworth sections: a
// high-pass at lowHz and a low-pass at highHz, passing the band in
// between.
func BandPass(x []float64, rateHz, lowHz, highHz float64) ([]float64, error) {
	wcBase := 2.0 * math.Pi / rateHz

	hp := butter.NewHighPass1(lowHz * wcBase)
	if hp == nil {
		return nil, fmt.Errorf("invalid high-pass filter (attempted wc=%f, but expect .0001 < wc && wc < 3.1415)", lowHz*wcBase)
	}

	lp := butter.NewLowPass1(highHz * wcBase)
	if lp == nil {
		return nil, fmt.Errorf("invalid low-pass filter (attempted wc=%f, but expect .0001 < wc && wc < 3.1415)", highHz*wcBase)
	}

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = hp.Next(lp.Next(v))
	}

	return out, nil
}

// BandPassRecording filters every channel of rec in place.
func BandPassRecording(rec *recording.Recording, lowHz, highHz float64) error {
	for i, channel := range rec.Data {
		filtered, err := BandPass(channel, rec.SampleRate, lowHz, highHz)
		if err != nil {
			return fmt.Errorf("filtering channel %q: %w", rec.ChannelNames[i], err)
		}
		rec.Data[i] = filtered
	}

	return nil
}
