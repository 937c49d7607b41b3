package render

import (
	"bufio"
	"fmt"
	"os"

	"github.com/carbocation/pfx"
)

// Report is the content of the plain-text run summary written next to the
// figure.
type Report struct {
	Title        string
	Channel      string
	LeftTrials   int
	RightTrials  int
	MatchedN     int
	BaselineMin  float64
	BaselineMax  float64
	BaselineMode string
	Freqs        []float64
	Stats        string
	FigurePath   string
}

// WriteReport writes the report as UTF-8 text to path. Failures propagate;
// there is nothing to retry.
func WriteReport(path string, r Report) error {
	if len(r.Freqs) == 0 {
		return fmt.Errorf("report requires a non-empty frequency grid")
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	fmt.Fprintln(w, r.Title)
	fmt.Fprintf(w, "Channel: %s\n", r.Channel)
	fmt.Fprintf(w, "Epochs Left/Right used: %d / %d (matched n=%d)\n", r.LeftTrials, r.RightTrials, r.MatchedN)
	fmt.Fprintf(w, "Baseline: (%g, %g), mode=%s\n", r.BaselineMin, r.BaselineMax, r.BaselineMode)
	fmt.Fprintf(w, "Freqs: %.1f-%.1f Hz (n=%d)\n", r.Freqs[0], r.Freqs[len(r.Freqs)-1], len(r.Freqs))
	fmt.Fprintf(w, "Stats: %s\n", r.Stats)
	fmt.Fprintf(w, "Output figure: %s\n", r.FigurePath)

	return w.Flush()
}
