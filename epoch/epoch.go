// Package epoch slices a continuous recording into fixed-length windows
// aligned to event markers, and provides the per-condition selection and
// trial-count matching the downstream statistics require.
package epoch

import (
	"fmt"
	"math"

	"github.com/neurokit/eegtfr/preprocess"
	"github.com/neurokit/eegtfr/recording"
)

// Collection is a set of epochs sharing a time axis: Data is trial-major,
// Data[t][c] holding the window of channel c around trial t's event.
// Codes[t] is the event code that produced trial t.
type Collection struct {
	Data         [][][]float64 // trial × channel × time
	Codes        []int
	Times        []float64
	SampleRate   float64
	ChannelNames []string
}

// Extract slices a window of [tminSec, tmaxSec] (inclusive at both ends)
// around every event whose code is listed in codes. Events whose window
// would reach past either end of the recording are skipped. An empty
// result is an error: downstream stages are undefined on zero trials.
func Extract(rec *recording.Recording, events []recording.Event, codes []int, tminSec, tmaxSec float64) (*Collection, error) {
	if tmaxSec <= tminSec {
		return nil, fmt.Errorf("epoch window [%g, %g] is empty or inverted", tminSec, tmaxSec)
	}
	if len(rec.Data) == 0 {
		return nil, fmt.Errorf("recording has no channels")
	}

	offLo := int(math.Round(tminSec * rec.SampleRate))
	offHi := int(math.Round(tmaxSec * rec.SampleRate))
	width := offHi - offLo + 1
	nSamples := rec.Samples()

	want := make(map[int]bool, len(codes))
	for _, code := range codes {
		want[code] = true
	}

	var data [][][]float64
	var kept []int

	for _, ev := range events {
		if !want[ev.Code] {
			continue
		}

		lo := ev.Sample + offLo
		hi := ev.Sample + offHi
		if lo < 0 || hi >= nSamples {
			continue
		}

		trial := make([][]float64, len(rec.Data))
		for c := range rec.Data {
			window := make([]float64, width)
			copy(window, rec.Data[c][lo:hi+1])
			trial[c] = window
		}

		data = append(data, trial)
		kept = append(kept, ev.Code)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("no epochs matched event codes %v", codes)
	}

	return &Collection{
		Data:         data,
		Codes:        kept,
		Times:        timeAxis(tminSec, rec.SampleRate, width),
		SampleRate:   rec.SampleRate,
		ChannelNames: rec.ChannelNames,
	}, nil
}

// Len reports the trial count.
func (c *Collection) Len() int {
	return len(c.Data)
}

// Condition returns the sub-collection of trials carrying the given event
// code. Zero matching trials is an error.
func (c *Collection) Condition(code int) (*Collection, error) {
	out := &Collection{
		Times:        c.Times,
		SampleRate:   c.SampleRate,
		ChannelNames: c.ChannelNames,
	}

	for i, trialCode := range c.Codes {
		if trialCode == code {
			out.Data = append(out.Data, c.Data[i])
			out.Codes = append(out.Codes, trialCode)
		}
	}

	if len(out.Data) == 0 {
		return nil, fmt.Errorf("no epochs with event code %d", code)
	}

	return out, nil
}

// Head returns the first min(n, Len) trials.
func (c *Collection) Head(n int) *Collection {
	if n > c.Len() {
		n = c.Len()
	}

	return &Collection{
		Data:         c.Data[:n],
		Codes:        c.Codes[:n],
		Times:        c.Times,
		SampleRate:   c.SampleRate,
		ChannelNames: c.ChannelNames,
	}
}

// MatchTrialCounts truncates both collections to n = min(|a|, |b|) trials
// so they can be differenced pairwise.
func MatchTrialCounts(a, b *Collection) (*Collection, *Collection, int) {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}

	return a.Head(n), b.Head(n), n
}

// Resample converts every trial to targetHz in place and rebuilds the time
// axis from its original start.
func (c *Collection) Resample(targetHz float64) {
	if targetHz == c.SampleRate || c.Len() == 0 {
		return
	}

	for ti, trial := range c.Data {
		for ch, x := range trial {
			c.Data[ti][ch] = preprocess.Resample(x, c.SampleRate, targetHz)
		}
	}

	c.Times = timeAxis(c.Times[0], targetHz, len(c.Data[0][0]))
	c.SampleRate = targetHz
}

// ChannelIndex resolves a channel name to its index.
func (c *Collection) ChannelIndex(name string) (int, error) {
	for i, ch := range c.ChannelNames {
		if ch == name {
			return i, nil
		}
	}

	return 0, fmt.Errorf("channel %q not present in epochs", name)
}

func timeAxis(tmin, rateHz float64, n int) []float64 {
	times := make([]float64, n)
	for i := range times {
		times[i] = tmin + float64(i)/rateHz
	}

	return times
}
