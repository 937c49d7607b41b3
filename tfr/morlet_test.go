package tfr

import (
	"math"
	"testing"

	"github.com/neurokit/eegtfr/epoch"
)

func TestLinspaceFreqs(t *testing.T) {
	freqs := LinspaceFreqs(4, 40, 50)
	if len(freqs) != 50 {
		t.Fatalf("got %d freqs, want 50", len(freqs))
	}
	if freqs[0] != 4 || freqs[49] != 40 {
		t.Fatalf("endpoints: got [%f, %f]", freqs[0], freqs[49])
	}

	step := freqs[1] - freqs[0]
	for i := 1; i < len(freqs); i++ {
		if math.Abs((freqs[i]-freqs[i-1])-step) > 1e-9 {
			t.Fatalf("grid not even at %d", i)
		}
	}

	if got := LinspaceFreqs(10, 20, 1); len(got) != 1 || got[0] != 10 {
		t.Fatalf("single-point grid: got %v", got)
	}
	if got := LinspaceFreqs(10, 20, 0); got != nil {
		t.Fatalf("empty grid: got %v", got)
	}
}

func TestHalfCycles(t *testing.T) {
	cycles := HalfCycles([]float64{4, 10, 40})
	for i, want := range []float64{2, 5, 20} {
		if cycles[i] != want {
			t.Errorf("cycles[%d]: got %f, want %f", i, cycles[i], want)
		}
	}
}

// After normalization by sqrt(0.5)*||w||, the wavelet's L2 norm is
// sqrt(2).
func TestMorletWaveletNorm(t *testing.T) {
	for _, v := range []struct {
		rateHz, freqHz, nCycles float64
	}{
		{250, 4, 2},
		{250, 10, 5},
		{600, 40, 20},
	} {
		w := morletWavelet(v.rateHz, v.freqHz, v.nCycles)

		var sumSq float64
		for _, c := range w {
			sumSq += real(c)*real(c) + imag(c)*imag(c)
		}

		if norm := math.Sqrt(sumSq); math.Abs(norm-math.Sqrt2) > 1e-9 {
			t.Errorf("wavelet norm at %g Hz: got %f, want sqrt(2)", v.freqHz, norm)
		}
	}
}

// burstEpochs builds one trial holding a 10 Hz burst between 0.2 s and
// 0.5 s, over a quiet but non-zero background.
func burstEpochs(t *testing.T) *epoch.Collection {
	t.Helper()

	const rateHz = 250.0
	nTimes := 251 // -0.2 s .. 0.8 s inclusive

	times := make([]float64, nTimes)
	signal := make([]float64, nTimes)
	for i := range times {
		tt := -0.2 + float64(i)/rateHz
		times[i] = tt
		signal[i] = 0.05 * math.Sin(2.0*math.Pi*3.0*tt)
		if tt >= 0.2 && tt <= 0.5 {
			signal[i] += math.Sin(2.0 * math.Pi * 10.0 * tt)
		}
	}

	return &epoch.Collection{
		Data:         [][][]float64{{signal}},
		Codes:        []int{1},
		Times:        times,
		SampleRate:   rateHz,
		ChannelNames: []string{"EEG 001"},
	}
}

func TestComputeLocalizesBurst(t *testing.T) {
	epochs := burstEpochs(t)
	freqs := []float64{6, 10, 14}

	pow, err := Compute(epochs, freqs, HalfCycles(freqs))
	if err != nil {
		t.Fatal(err)
	}

	// Index of t = 0.35 s, the middle of the burst.
	mid := 0
	for i, tt := range pow.Times {
		if math.Abs(tt-0.35) < math.Abs(pow.Times[mid]-0.35) {
			mid = i
		}
	}

	burst := pow.Data[0][0]
	if burst[1][mid] <= 2.0*burst[0][mid] || burst[1][mid] <= 2.0*burst[2][mid] {
		t.Errorf("power not concentrated at 10 Hz: 6 Hz %g, 10 Hz %g, 14 Hz %g",
			burst[0][mid], burst[1][mid], burst[2][mid])
	}

	// The burst should dominate the pre-stimulus background at 10 Hz.
	pre := 0
	for i, tt := range pow.Times {
		if math.Abs(tt+0.1) < math.Abs(pow.Times[pre]+0.1) {
			pre = i
		}
	}
	if burst[1][mid] <= 5.0*burst[1][pre] {
		t.Errorf("10 Hz power not localized in time: burst %g, baseline %g", burst[1][mid], burst[1][pre])
	}
}

func TestComputeValidation(t *testing.T) {
	epochs := burstEpochs(t)

	if _, err := Compute(&epoch.Collection{}, []float64{10}, []float64{5}); err == nil {
		t.Error("expected an error for an empty collection")
	}
	if _, err := Compute(epochs, nil, nil); err == nil {
		t.Error("expected an error for an empty frequency grid")
	}
	if _, err := Compute(epochs, []float64{10, 20}, []float64{5}); err == nil {
		t.Error("expected an error for mismatched cycle counts")
	}
	if _, err := Compute(epochs, []float64{-4}, []float64{2}); err == nil {
		t.Error("expected an error for a negative frequency")
	}
}

func TestApplyBaselineLogratio(t *testing.T) {
	const rateHz = 100.0
	nTimes := 101 // -0.2 .. 0.8

	times := make([]float64, nTimes)
	for i := range times {
		times[i] = -0.2 + float64(i)/rateHz
	}

	// Constant power 2.0 in the baseline window, a 10x step afterwards.
	row := make([]float64, nTimes)
	for i, tt := range times {
		if tt <= 0 {
			row[i] = 2.0
		} else {
			row[i] = 20.0
		}
	}

	pow := &Power{
		Data:         [][][][]float64{{{row}}},
		Freqs:        []float64{10},
		Times:        times,
		SampleRate:   rateHz,
		ChannelNames: []string{"EEG 001"},
	}

	if err := pow.ApplyBaselineLogratio(-0.2, 0); err != nil {
		t.Fatal(err)
	}

	// Baseline samples sit at log10(2/2) = 0; the step at log10(10) = 1.
	var baselineMean float64
	nBaseline := 0
	for i, tt := range times {
		if tt <= 0 {
			baselineMean += pow.Data[0][0][0][i]
			nBaseline++
		}
	}
	baselineMean /= float64(nBaseline)

	if math.Abs(baselineMean) > 1e-12 {
		t.Errorf("baseline mean after logratio: got %g, want 0", baselineMean)
	}
	if got := pow.Data[0][0][0][nTimes-1]; math.Abs(got-1.0) > 1e-12 {
		t.Errorf("post-stimulus step: got %g, want 1", got)
	}
}

func TestApplyBaselineLogratioErrors(t *testing.T) {
	pow := &Power{
		Data:         [][][][]float64{{{{0, 0, 1}}}},
		Freqs:        []float64{10},
		Times:        []float64{-0.1, 0, 0.1},
		SampleRate:   10,
		ChannelNames: []string{"EEG 001"},
	}

	if err := pow.ApplyBaselineLogratio(5, 6); err == nil {
		t.Error("expected an error for a baseline window outside the epoch")
	}
	if err := pow.ApplyBaselineLogratio(-0.1, 0); err == nil {
		t.Error("expected an error for zero baseline power")
	}
}

func TestPickChannelAndAverage(t *testing.T) {
	pow := &Power{
		Data: [][][][]float64{
			{{{1, 2}}, {{3, 4}}},
			{{{5, 6}}, {{7, 8}}},
		},
		Freqs:        []float64{10},
		Times:        []float64{0, 0.01},
		SampleRate:   100,
		ChannelNames: []string{"EEG 001", "EEG 002"},
	}

	trials, err := pow.PickChannel("EEG 002")
	if err != nil {
		t.Fatal(err)
	}
	if trials[0][0][0] != 3 || trials[1][0][1] != 8 {
		t.Fatalf("PickChannel returned wrong data: %v", trials)
	}

	if _, err := pow.PickChannel("EEG 099"); err == nil {
		t.Fatal("expected an error for an unknown channel")
	}

	avg := pow.AverageTrials()
	if got, want := avg[0][0][0], 3.0; got != want {
		t.Errorf("trial average channel 1: got %f, want %f", got, want)
	}
	if got, want := avg[1][0][1], 6.0; got != want {
		t.Errorf("trial average channel 2: got %f, want %f", got, want)
	}
}
