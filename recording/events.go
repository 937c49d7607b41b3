package recording

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Event is one marker in the recording: the sample index at which it
// occurred and its integer event code.
type Event struct {
	Sample int `csv:"sample"`
	Code   int `csv:"code"`
}

// LoadEvents parses the tab-separated event list. The file carries a
// header row naming the "sample" and "code" columns; rows are ordered by
// sample index.
func LoadEvents(path string) ([]Event, error) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	// Tell gocsv to use tab as the delimiter
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = '\t'
		return r
	})

	events := []Event{}
	if err := gocsv.UnmarshalBytes(fileBytes, &events); err != nil {
		return nil, pfx.Err(err)
	}

	return events, nil
}
