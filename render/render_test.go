package render

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSymmetricRange(t *testing.T) {
	m := make([][]float64, 10)
	v := 0.0
	for i := range m {
		m[i] = make([]float64, 10)
		for j := range m[i] {
			v += 1.0
			if (i+j)%2 == 0 {
				m[i][j] = v
			} else {
				m[i][j] = -v
			}
		}
	}

	vmin, vmax, err := SymmetricRange(m)
	if err != nil {
		t.Fatal(err)
	}

	if vmin != -vmax {
		t.Fatalf("range not symmetric: [%f, %f]", vmin, vmax)
	}
	// |values| are 1..100; the 98th percentile sits just under the top.
	if vmax < 97 || vmax > 100 {
		t.Fatalf("vmax: got %f, want ~98", vmax)
	}
}

func TestSymmetricRangeEmpty(t *testing.T) {
	if _, _, err := SymmetricRange(nil); err == nil {
		t.Fatal("expected an error for an empty grid")
	}
}

func TestDivergingColor(t *testing.T) {
	low := divergingColor(-1, -1, 1)
	mid := divergingColor(0, -1, 1)
	high := divergingColor(1, -1, 1)

	if low.B <= low.R {
		t.Errorf("low end not blue: %+v", low)
	}
	if high.R <= high.B {
		t.Errorf("high end not red: %+v", high)
	}
	if mid.R < 240 || mid.G < 240 || mid.B < 240 {
		t.Errorf("center not near-white: %+v", mid)
	}

	// Out-of-range values clamp to the end colors.
	if divergingColor(-5, -1, 1) != low {
		t.Error("below-range value did not clamp")
	}
	if divergingColor(5, -1, 1) != high {
		t.Error("above-range value did not clamp")
	}
}

func testGrid(nFreqs, nTimes int) ([][]float64, []float64, []float64) {
	values := make([][]float64, nFreqs)
	freqs := make([]float64, nFreqs)
	times := make([]float64, nTimes)

	for f := range values {
		freqs[f] = 4 + float64(f)*2
		values[f] = make([]float64, nTimes)
		for i := range values[f] {
			times[i] = -0.2 + float64(i)*0.05
			values[f][i] = math.Sin(float64(f)) * math.Cos(float64(i))
		}
	}

	return values, freqs, times
}

func TestHeatmap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.png")

	values, freqs, times := testGrid(8, 21)
	mask := make([][]bool, 8)
	for f := range mask {
		mask[f] = make([]bool, 21)
	}
	mask[3][10] = true
	mask[3][11] = true
	mask[4][10] = true

	err := Heatmap(path, HeatmapData{
		Values: values,
		Times:  times,
		Freqs:  freqs,
		Mask:   mask,
	}, HeatmapOptions{
		Title:         "test map",
		ColorbarLabel: "power",
		DPI:           50,
	})
	if err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("heatmap PNG is empty")
	}
}

func TestHeatmapShapeValidation(t *testing.T) {
	values, freqs, times := testGrid(4, 10)

	if err := Heatmap("unused.png", HeatmapData{Values: values[:3], Times: times, Freqs: freqs}, HeatmapOptions{}); err == nil {
		t.Error("expected an error for a row/frequency mismatch")
	}

	badMask := [][]bool{{true}}
	if err := Heatmap("unused.png", HeatmapData{Values: values, Times: times, Freqs: freqs, Mask: badMask}, HeatmapOptions{}); err == nil {
		t.Error("expected an error for a mask shape mismatch")
	}
}

func TestTimeCourse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "course.png")

	times := make([]float64, 50)
	left := make([]float64, 50)
	right := make([]float64, 50)
	for i := range times {
		times[i] = float64(i) * 0.01
		left[i] = math.Sin(times[i] * 10)
		right[i] = math.Cos(times[i] * 10)
	}

	err := TimeCourse(path, "alpha power", times, []LabeledSeries{
		{Name: "Left", Values: left},
		{Name: "Right", Values: right},
	})
	if err != nil {
		t.Fatal(err)
	}

	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("time course PNG missing or empty: %v", err)
	}
}

func TestTimeCourseValidation(t *testing.T) {
	if err := TimeCourse("unused.png", "t", []float64{1, 2}, nil); err == nil {
		t.Error("expected an error for zero series")
	}
	if err := TimeCourse("unused.png", "t", []float64{1, 2}, []LabeledSeries{{Name: "x", Values: []float64{1}}}); err == nil {
		t.Error("expected an error for a length mismatch")
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_report.txt")

	err := WriteReport(path, Report{
		Title:        "EEG Time-Frequency (research-level mini pipeline)",
		Channel:      "EEG 014",
		LeftTrials:   80,
		RightTrials:  80,
		MatchedN:     80,
		BaselineMin:  -0.2,
		BaselineMax:  0,
		BaselineMode: "logratio",
		Freqs:        []float64{4, 22, 40},
		Stats:        "one-sample cluster permutation test on (Right-Left), 512 permutations, seed 42, alpha=0.05",
		FigurePath:   "results/tfr_diff_with_stats.png",
	})
	if err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	report := string(raw)

	for _, want := range []string{
		"Channel: EEG 014",
		"Epochs Left/Right used: 80 / 80 (matched n=80)",
		"Baseline: (-0.2, 0), mode=logratio",
		"Freqs: 4.0-40.0 Hz (n=3)",
		"Output figure: results/tfr_diff_with_stats.png",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q; got:\n%s", want, report)
		}
	}
}

func TestWriteReportEmptyFreqs(t *testing.T) {
	if err := WriteReport(filepath.Join(t.TempDir(), "r.txt"), Report{}); err == nil {
		t.Fatal("expected an error for an empty frequency grid")
	}
}
