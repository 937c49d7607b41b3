// Package render turns the pipeline's derived arrays into artifacts on
// disk: the time-frequency heatmap PNG, the band-power time-course plot,
// and the plain-text run report.
package render

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/montanaflynn/stats"
	chart "github.com/wcharczuk/go-chart/v2"
)

// HeatmapData is a freq × time value grid with its axes. Mask, when
// non-nil, marks the cells to trace with the significance contour and must
// share the grid's shape.
type HeatmapData struct {
	Values [][]float64
	Times  []float64
	Freqs  []float64
	Mask   [][]bool
}

// HeatmapOptions controls the figure furniture. A zero VMin/VMax pair asks
// for the robust symmetric range. DPI scales the fixed 9in × 5in figure.
type HeatmapOptions struct {
	Title         string
	ColorbarLabel string
	DPI           int
	VMin, VMax    float64
}

// SymmetricRange returns a color range symmetric about zero, with vmax the
// 98th percentile of the absolute values: robust to the handful of extreme
// pixels a difference map always carries.
func SymmetricRange(m [][]float64) (vmin, vmax float64, err error) {
	abs := make([]float64, 0, len(m)*8)
	for _, row := range m {
		for _, v := range row {
			if !math.IsNaN(v) {
				abs = append(abs, math.Abs(v))
			}
		}
	}

	vmax, err = stats.Percentile(abs, 98)
	if err != nil {
		return 0, 0, fmt.Errorf("computing color range: %w", err)
	}

	return -vmax, vmax, nil
}

// Heatmap renders the grid to a PNG at path: diverging colormap centered
// on zero, optional significance contour, stimulus-onset line at t=0, axis
// ticks, colorbar, and title.
func Heatmap(path string, hm HeatmapData, opt HeatmapOptions) error {
	nFreqs := len(hm.Freqs)
	nTimes := len(hm.Times)

	if len(hm.Values) != nFreqs {
		return fmt.Errorf("heatmap has %d rows but %d frequencies", len(hm.Values), nFreqs)
	}
	for f, row := range hm.Values {
		if len(row) != nTimes {
			return fmt.Errorf("heatmap row %d has %d columns but %d times", f, len(row), nTimes)
		}
	}
	if hm.Mask != nil && len(hm.Mask) != nFreqs {
		return fmt.Errorf("mask has %d rows but %d frequencies", len(hm.Mask), nFreqs)
	}
	if nFreqs == 0 || nTimes == 0 {
		return fmt.Errorf("heatmap grid is empty")
	}

	if opt.DPI <= 0 {
		opt.DPI = 150
	}

	vmin, vmax := opt.VMin, opt.VMax
	if vmin == 0 && vmax == 0 {
		var err error
		if vmin, vmax, err = SymmetricRange(hm.Values); err != nil {
			return err
		}
	}

	// Fixed 9in x 5in figure; s scales every stroke and font with DPI.
	s := float64(opt.DPI) / 100.0
	width := 9.0 * float64(opt.DPI)
	height := 5.0 * float64(opt.DPI)

	dc := gg.NewContext(int(width), int(height))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	fnt, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	labelFace := truetype.NewFace(fnt, &truetype.Options{Size: 11 * s})
	titleFace := truetype.NewFace(fnt, &truetype.Options{Size: 13 * s})
	dc.SetFontFace(labelFace)

	left := 70 * s
	right := width - 110*s
	top := 45 * s
	bottom := height - 55*s
	plotW := right - left
	plotH := bottom - top

	cellW := plotW / float64(nTimes)
	cellH := plotH / float64(nFreqs)

	// Cells, frequency rows from the bottom up.
	for f := 0; f < nFreqs; f++ {
		for t := 0; t < nTimes; t++ {
			dc.SetColor(divergingColor(hm.Values[f][t], vmin, vmax))
			x := left + float64(t)*cellW
			y := bottom - float64(f+1)*cellH
			dc.DrawRectangle(x, y, cellW+0.5, cellH+0.5)
			dc.Fill()
		}
	}

	if hm.Mask != nil {
		drawMaskContour(dc, hm.Mask, left, bottom, cellW, cellH, s)
	}

	// Stimulus onset.
	t0, tEnd := hm.Times[0], hm.Times[nTimes-1]
	if t0 < 0 && tEnd > 0 {
		x := left + (0-t0)/(tEnd-t0)*plotW
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1 * s)
		dc.DrawLine(x, top, x, bottom)
		dc.Stroke()
	}

	// Plot frame.
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1 * s)
	dc.DrawRectangle(left, top, plotW, plotH)
	dc.Stroke()

	// X ticks and label.
	for _, tick := range niceTicks(t0, tEnd, 6) {
		x := left + (tick-t0)/(tEnd-t0)*plotW
		dc.DrawLine(x, bottom, x, bottom+4*s)
		dc.Stroke()
		dc.DrawStringAnchored(formatTick(tick), x, bottom+14*s, 0.5, 0.5)
	}
	dc.DrawStringAnchored("Time (s)", left+plotW/2, bottom+34*s, 0.5, 0.5)

	// Y ticks and label.
	f0, fEnd := hm.Freqs[0], hm.Freqs[nFreqs-1]
	for _, tick := range niceTicks(f0, fEnd, 6) {
		y := bottom - (tick-f0)/(fEnd-f0)*plotH
		dc.DrawLine(left-4*s, y, left, y)
		dc.Stroke()
		dc.DrawStringAnchored(formatTick(tick), left-22*s, y, 0.5, 0.5)
	}
	dc.Push()
	dc.RotateAbout(-math.Pi/2, 18*s, top+plotH/2)
	dc.DrawStringAnchored("Frequency (Hz)", 18*s, top+plotH/2, 0.5, 0.5)
	dc.Pop()

	drawColorbar(dc, right+20*s, top, 18*s, plotH, vmin, vmax, opt.ColorbarLabel, s)

	dc.SetFontFace(titleFace)
	dc.DrawStringAnchored(opt.Title, left+plotW/2, top/2, 0.5, 0.5)

	// Render to a byte buffer before touching the filesystem.
	buffer := bytes.NewBuffer([]byte{})
	if err := dc.EncodePNG(buffer); err != nil {
		return err
	}

	outFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer outFile.Close()

	if _, err := buffer.WriteTo(outFile); err != nil {
		return err
	}

	return nil
}

// drawMaskContour traces the boundary of the true region of mask: every
// cell edge whose neighbor (or the grid border) differs gets a segment,
// which together outline each cluster at the half-cell level.
func drawMaskContour(dc *gg.Context, mask [][]bool, left, bottom, cellW, cellH, s float64) {
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1.5 * s)

	at := func(f, t int) bool {
		if f < 0 || t < 0 || f >= len(mask) || t >= len(mask[0]) {
			return false
		}
		return mask[f][t]
	}

	for f := range mask {
		for t := range mask[f] {
			if !mask[f][t] {
				continue
			}

			x := left + float64(t)*cellW
			yTop := bottom - float64(f+1)*cellH
			yBot := bottom - float64(f)*cellH

			if !at(f, t-1) {
				dc.DrawLine(x, yTop, x, yBot)
			}
			if !at(f, t+1) {
				dc.DrawLine(x+cellW, yTop, x+cellW, yBot)
			}
			if !at(f+1, t) {
				dc.DrawLine(x, yTop, x+cellW, yTop)
			}
			if !at(f-1, t) {
				dc.DrawLine(x, yBot, x+cellW, yBot)
			}
		}
	}
	dc.Stroke()
}

func drawColorbar(dc *gg.Context, x, y, w, h float64, vmin, vmax float64, label string, s float64) {
	steps := 256
	stepH := h / float64(steps)

	for i := 0; i < steps; i++ {
		frac := float64(i) / float64(steps-1)
		v := vmax - frac*(vmax-vmin)
		dc.SetColor(divergingColor(v, vmin, vmax))
		dc.DrawRectangle(x, y+float64(i)*stepH, w, stepH+0.5)
		dc.Fill()
	}

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1 * s)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()

	dc.DrawStringAnchored(fmt.Sprintf("%.3f", vmax), x+w+6*s, y+5*s, 0, 0.5)
	dc.DrawStringAnchored("0", x+w+6*s, y+h/2, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.3f", vmin), x+w+6*s, y+h-5*s, 0, 0.5)

	if label != "" {
		dc.Push()
		dc.RotateAbout(math.Pi/2, x+w+58*s, y+h/2)
		dc.DrawStringAnchored(label, x+w+58*s, y+h/2, 0.5, 0.5)
		dc.Pop()
	}
}

// niceTicks picks up to n round tick values covering [lo, hi].
func niceTicks(lo, hi float64, n int) []float64 {
	if hi <= lo || n < 2 {
		return nil
	}

	step := niceNum((hi - lo) / float64(n-1))
	start := math.Ceil(lo/step) * step

	var ticks []float64
	for v := start; v <= hi+step/1e6; v += step {
		ticks = append(ticks, v)
	}

	return ticks
}

// niceNum rounds x up to 1, 2 or 5 times a power of ten.
func niceNum(x float64) float64 {
	exp := math.Floor(math.Log10(x))
	frac := x / math.Pow(10, exp)

	var nice float64
	switch {
	case frac <= 1:
		nice = 1
	case frac <= 2:
		nice = 2
	case frac <= 5:
		nice = 5
	default:
		nice = 10
	}

	return nice * math.Pow(10, exp)
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}

	return fmt.Sprintf("%.1f", v)
}
