// tfravg renders trial-averaged Morlet time-frequency maps per condition,
// without significance testing, plus an alpha-band power time course and a
// text report. A lighter-weight companion to tfrstats.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"

	"github.com/neurokit/eegtfr/epoch"
	"github.com/neurokit/eegtfr/preprocess"
	"github.com/neurokit/eegtfr/recording"
	"github.com/neurokit/eegtfr/render"
	"github.com/neurokit/eegtfr/tfr"
)

const (
	outputLeftPNG   = "tfr_left_avg.png"
	outputRightPNG  = "tfr_right_avg.png"
	outputCoursePNG = "alpha_timecourse.png"
	outputReport    = "avg_report.txt"
)

type config struct {
	dataRoot   string
	outDir     string
	channel    string
	leftCode   int
	rightCode  int
	tmin       float64
	tmax       float64
	lowHz      float64
	highHz     float64
	resampleHz float64
	maxTrials  int
	fmin       float64
	fmax       float64
	nFreqs     int
	bandLowHz  float64
	bandHighHz float64
	dpi        int
}

func main() {
	var cfg config

	flag.StringVar(&cfg.dataRoot, "data_root", "data", "Dataset root holding the raw EDF recording and its events TSV")
	flag.StringVar(&cfg.outDir, "out_dir", "results", "Output directory, created if absent")
	flag.StringVar(&cfg.channel, "channel", "EEG 014", "Preferred channel; falls back to the first EEG channel when absent")
	flag.IntVar(&cfg.leftCode, "left_code", 1, "Event code of the Left condition")
	flag.IntVar(&cfg.rightCode, "right_code", 2, "Event code of the Right condition")
	flag.Float64Var(&cfg.tmin, "tmin", -0.2, "Epoch window start relative to the event, in seconds")
	flag.Float64Var(&cfg.tmax, "tmax", 0.8, "Epoch window end relative to the event, in seconds")
	flag.Float64Var(&cfg.lowHz, "low_hz", 1.0, "Band-pass low cut in Hz")
	flag.Float64Var(&cfg.highHz, "high_hz", 40.0, "Band-pass high cut in Hz")
	flag.Float64Var(&cfg.resampleHz, "resample_hz", 250.0, "Target sampling rate for epochs")
	flag.IntVar(&cfg.maxTrials, "max_trials", 80, "Maximum trials kept per condition")
	flag.Float64Var(&cfg.fmin, "fmin", 4.0, "Lowest analysis frequency in Hz")
	flag.Float64Var(&cfg.fmax, "fmax", 40.0, "Highest analysis frequency in Hz")
	flag.IntVar(&cfg.nFreqs, "n_freqs", 50, "Number of analysis frequencies")
	flag.Float64Var(&cfg.bandLowHz, "band_low_hz", 8.0, "Time-course band lower edge in Hz")
	flag.Float64Var(&cfg.bandHighHz, "band_high_hz", 12.0, "Time-course band upper edge in Hz")
	flag.IntVar(&cfg.dpi, "dpi", 150, "Output figure resolution")
	flag.Parse()

	if cfg.dataRoot == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		log.Fatalln(err)
	}
}

func run(cfg config) error {
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return pfx.Err(err)
	}

	rec, events, err := recording.Load(cfg.dataRoot)
	if err != nil {
		return err
	}

	if err := rec.PickEEG(); err != nil {
		return err
	}

	if err := preprocess.BandPassRecording(rec, cfg.lowHz, cfg.highHz); err != nil {
		return err
	}

	epochs, err := epoch.Extract(rec, events, []int{cfg.leftCode, cfg.rightCode}, cfg.tmin, cfg.tmax)
	if err != nil {
		return err
	}
	epochs.Resample(cfg.resampleHz)

	left, err := epochs.Condition(cfg.leftCode)
	if err != nil {
		return err
	}
	right, err := epochs.Condition(cfg.rightCode)
	if err != nil {
		return err
	}
	left = left.Head(cfg.maxTrials)
	right = right.Head(cfg.maxTrials)

	freqs := tfr.LinspaceFreqs(cfg.fmin, cfg.fmax, cfg.nFreqs)
	cycles := tfr.HalfCycles(freqs)

	powLeft, err := tfr.Compute(left, freqs, cycles)
	if err != nil {
		return err
	}
	powRight, err := tfr.Compute(right, freqs, cycles)
	if err != nil {
		return err
	}

	if err := powLeft.ApplyBaselineLogratio(cfg.tmin, 0); err != nil {
		return err
	}
	if err := powRight.ApplyBaselineLogratio(cfg.tmin, 0); err != nil {
		return err
	}

	channel := cfg.channel
	if _, err := left.ChannelIndex(channel); err != nil {
		channel = left.ChannelNames[0]
	}

	trialsLeft, err := powLeft.PickChannel(channel)
	if err != nil {
		return err
	}
	trialsRight, err := powRight.PickChannel(channel)
	if err != nil {
		return err
	}

	mapLeft := tfr.MeanMap(trialsLeft)
	mapRight := tfr.MeanMap(trialsRight)
	times := powLeft.Times

	outLeft := filepath.Join(cfg.outDir, outputLeftPNG)
	err = render.Heatmap(outLeft, render.HeatmapData{
		Values: mapLeft,
		Times:  times,
		Freqs:  freqs,
	}, render.HeatmapOptions{
		Title:         fmt.Sprintf("TFR Average (Left), logratio baseline - %s", channel),
		ColorbarLabel: "Power (logratio)",
		DPI:           cfg.dpi,
	})
	if err != nil {
		return err
	}

	outRight := filepath.Join(cfg.outDir, outputRightPNG)
	err = render.Heatmap(outRight, render.HeatmapData{
		Values: mapRight,
		Times:  times,
		Freqs:  freqs,
	}, render.HeatmapOptions{
		Title:         fmt.Sprintf("TFR Average (Right), logratio baseline - %s", channel),
		ColorbarLabel: "Power (logratio)",
		DPI:           cfg.dpi,
	})
	if err != nil {
		return err
	}

	outCourse := filepath.Join(cfg.outDir, outputCoursePNG)
	err = render.TimeCourse(outCourse,
		fmt.Sprintf("%.0f-%.0f Hz power - %s", cfg.bandLowHz, cfg.bandHighHz, channel),
		times,
		[]render.LabeledSeries{
			{Name: "Left", Values: bandMean(mapLeft, freqs, cfg.bandLowHz, cfg.bandHighHz)},
			{Name: "Right", Values: bandMean(mapRight, freqs, cfg.bandLowHz, cfg.bandHighHz)},
		})
	if err != nil {
		return err
	}

	err = render.WriteReport(filepath.Join(cfg.outDir, outputReport), render.Report{
		Title:        "EEG Time-Frequency condition averages",
		Channel:      channel,
		LeftTrials:   left.Len(),
		RightTrials:  right.Len(),
		MatchedN:     minInt(left.Len(), right.Len()),
		BaselineMin:  cfg.tmin,
		BaselineMax:  0,
		BaselineMode: "logratio",
		Freqs:        freqs,
		Stats:        "none (condition averages only)",
		FigurePath:   outLeft,
	})
	if err != nil {
		return err
	}

	fmt.Println("Done. Saved:", outLeft, outRight, outCourse)

	return nil
}

// bandMean averages the rows of a freq × time map whose frequency falls
// inside [lowHz, highHz].
func bandMean(m [][]float64, freqs []float64, lowHz, highHz float64) []float64 {
	if len(m) == 0 {
		return nil
	}

	out := make([]float64, len(m[0]))
	count := 0
	for f, row := range m {
		if freqs[f] < lowHz || freqs[f] > highHz {
			continue
		}
		for i, v := range row {
			out[i] += v
		}
		count++
	}

	if count > 0 {
		for i := range out {
			out[i] /= float64(count)
		}
	}

	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
