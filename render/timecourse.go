package render

import (
	"bytes"
	"fmt"
	"os"

	chart "github.com/wcharczuk/go-chart/v2"
)

// LabeledSeries is one named line of a time-course plot.
type LabeledSeries struct {
	Name   string
	Values []float64
}

// TimeCourse renders named series against a shared time axis as a PNG line
// chart.
func TimeCourse(path, title string, times []float64, series []LabeledSeries) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to plot")
	}
	for _, s := range series {
		if len(s.Values) != len(times) {
			return fmt.Errorf("series %q has %d points but the time axis has %d", s.Name, len(s.Values), len(times))
		}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 450,
		XAxis: chart.XAxis{
			Name: "Time (s)",
		},
		YAxis: chart.YAxis{
			Name: "Power (logratio)",
		},
	}

	for _, s := range series {
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: times,
			YValues: s.Values,
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	// Render to a byte buffer
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
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
