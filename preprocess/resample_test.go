package preprocess

import (
	"math"
	"testing"
)

func TestResampleFFTLength(t *testing.T) {
	for _, v := range []struct {
		n      int
		fromHz float64
		toHz   float64
		want   int
	}{
		{600, 600, 250, 250},
		{601, 600, 250, 250},
		{301, 300, 250, 251},
		{100, 100, 100, 100},
	} {
		out := Resample(make([]float64, v.n), v.fromHz, v.toHz)
		if len(out) != v.want {
			t.Errorf("Resample(len=%d, %g -> %g Hz): got %d samples, want %d", v.n, v.fromHz, v.toHz, len(out), v.want)
		}
	}
}

func TestResampleFFTConstant(t *testing.T) {
	x := make([]float64, 400)
	for i := range x {
		x[i] = 3.5
	}

	out := ResampleFFT(x, 150)
	for i, v := range out {
		if math.Abs(v-3.5) > 1e-9 {
			t.Fatalf("constant signal distorted at %d: got %f", i, v)
		}
	}
}

// A tone with an integer number of cycles in the window survives FFT
// resampling exactly (up to rounding error).
func TestResampleFFTTone(t *testing.T) {
	const (
		fromHz = 600.0
		toHz   = 250.0
		toneHz = 5.0
		n      = 600 // exactly one second, five full cycles
	)

	x := make([]float64, n)
	for i := range x {
		x[i] = math.Cos(2.0 * math.Pi * toneHz * float64(i) / fromHz)
	}

	out := Resample(x, fromHz, toHz)
	if len(out) != 250 {
		t.Fatalf("got %d samples, want 250", len(out))
	}

	for i, v := range out {
		expected := math.Cos(2.0 * math.Pi * toneHz * float64(i) / toHz)
		if math.Abs(v-expected) > 1e-9 {
			t.Fatalf("tone distorted at sample %d: got %f, want %f", i, v, expected)
		}
	}
}

func TestResampleFFTEmpty(t *testing.T) {
	if out := ResampleFFT(nil, 100); out != nil {
		t.Fatalf("expected nil for empty input, got %v", out)
	}
	if out := ResampleFFT(make([]float64, 10), 0); out != nil {
		t.Fatalf("expected nil for zero target length, got %v", out)
	}
}
