// Package recording loads continuous EEG recordings and their event
// markers from a dataset directory laid out in the standard way: an
// EDF/EDF+ file holding the multichannel signal, next to a tab-separated
// event list.
package recording

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/OpenPSG/edf"
	"github.com/carbocation/pfx"
)

const (
	// RawFilename is the continuous-recording file expected under the
	// dataset root.
	RawFilename = "sample_audvis_raw.edf"

	// EventsFilename is the event-marker file expected under the dataset
	// root.
	EventsFilename = "sample_audvis_raw_eve.tsv"
)

// Recording is a continuous multichannel voltage signal. Data is
// channel-major: Data[i] holds every sample of channel ChannelNames[i], in
// microvolt-scaled physical units at SampleRate samples per second.
type Recording struct {
	Data         [][]float64
	SampleRate   float64
	ChannelNames []string
}

// Load reads the recording and its event list from the fixed layout under
// root.
func Load(root string) (*Recording, []Event, error) {
	rec, err := LoadEDF(filepath.Join(root, RawFilename))
	if err != nil {
		return nil, nil, err
	}

	events, err := LoadEvents(filepath.Join(root, EventsFilename))
	if err != nil {
		return nil, nil, err
	}

	return rec, events, nil
}

// LoadEDF reads every signal of an EDF/EDF+ file into memory. All signals
// must share a single sampling rate; mixed-rate recordings are rejected
// because epoching is defined against one common time base.
func LoadEDF(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	meta, err := readEDFMeta(f)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if meta.dataRecords < 0 {
		return nil, fmt.Errorf("recording %s does not declare its data record count", path)
	}
	if len(meta.labels) == 0 {
		return nil, fmt.Errorf("recording %s contains no signals", path)
	}
	if meta.recordSeconds <= 0 {
		return nil, fmt.Errorf("recording %s has a non-positive data record duration", path)
	}

	spr := meta.samplesPerRecord[0]
	for i, v := range meta.samplesPerRecord {
		if v != spr {
			return nil, fmt.Errorf("recording %s mixes sampling rates: signal %q has %d samples per record, signal %q has %d", path, meta.labels[0], spr, meta.labels[i], v)
		}
	}

	// Hand the file back to the edf reader for calibrated sample decoding.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, pfx.Err(err)
	}
	er, err := edf.Open(f)
	if err != nil {
		return nil, pfx.Err(err)
	}

	total := meta.dataRecords * spr
	data := make([][]float64, len(meta.labels))
	for i := range meta.labels {
		sr, err := er.Signal(i)
		if err != nil {
			return nil, pfx.Err(err)
		}

		buf := make([]float64, total)
		if _, err := sr.Read(buf); err != nil && err != io.EOF {
			return nil, pfx.Err(err)
		}
		data[i] = buf
	}

	return &Recording{
		Data:         data,
		SampleRate:   float64(spr) / meta.recordSeconds,
		ChannelNames: meta.labels,
	}, nil
}

// PickEEG restricts the recording, in place, to EEG-type channels,
// identified by the conventional "EEG" label prefix (e.g. "EEG 014",
// "EEG Fpz-Cz").
func (r *Recording) PickEEG() error {
	keepData := make([][]float64, 0, len(r.Data))
	keepNames := make([]string, 0, len(r.ChannelNames))

	for i, name := range r.ChannelNames {
		if strings.HasPrefix(name, "EEG") {
			keepData = append(keepData, r.Data[i])
			keepNames = append(keepNames, name)
		}
	}

	if len(keepNames) == 0 {
		return fmt.Errorf("recording contains no EEG channels")
	}

	r.Data = keepData
	r.ChannelNames = keepNames

	return nil
}

// Samples reports the per-channel sample count.
func (r *Recording) Samples() int {
	if len(r.Data) == 0 {
		return 0
	}

	return len(r.Data[0])
}

// edfMeta is the slice of the EDF header the loader needs beyond what the
// edf package's signal readers provide: labels, record geometry, and the
// record duration that fixes the sampling rate.
type edfMeta struct {
	dataRecords      int
	recordSeconds    float64
	labels           []string
	samplesPerRecord []int
}

// EDF header layout constants: byte offsets within the 256-byte fixed
// header, and per-signal field widths in the variable header.
const (
	edfFixedHeaderBytes  = 256
	edfPerSignalBytes    = 256
	edfLabelBytes        = 16
	edfSamplesFieldBytes = 8

	// Offset of the samples-per-record array within the variable header,
	// in multiples of the signal count: label(16) + transducer(80) +
	// dimension(8) + physical min/max(8+8) + digital min/max(8+8) +
	// prefiltering(80).
	edfSamplesArrayOffset = 16 + 80 + 8 + 8 + 8 + 8 + 8 + 80
)

func readEDFMeta(r io.Reader) (*edfMeta, error) {
	fixed := make([]byte, edfFixedHeaderBytes)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("reading EDF header: %w", err)
	}

	meta := &edfMeta{}

	var err error
	if meta.dataRecords, err = strconv.Atoi(strings.TrimSpace(string(fixed[236:244]))); err != nil {
		return nil, fmt.Errorf("parsing EDF data record count: %w", err)
	}
	if meta.recordSeconds, err = strconv.ParseFloat(strings.TrimSpace(string(fixed[244:252])), 64); err != nil {
		return nil, fmt.Errorf("parsing EDF data record duration: %w", err)
	}

	signalCount, err := strconv.Atoi(strings.TrimSpace(string(fixed[252:256])))
	if err != nil {
		return nil, fmt.Errorf("parsing EDF signal count: %w", err)
	}
	if signalCount < 0 {
		return nil, fmt.Errorf("EDF header declares %d signals", signalCount)
	}

	variable := make([]byte, signalCount*edfPerSignalBytes)
	if _, err := io.ReadFull(r, variable); err != nil {
		return nil, fmt.Errorf("reading EDF signal headers: %w", err)
	}

	meta.labels = make([]string, signalCount)
	for i := 0; i < signalCount; i++ {
		meta.labels[i] = strings.TrimSpace(string(variable[i*edfLabelBytes : (i+1)*edfLabelBytes]))
	}

	meta.samplesPerRecord = make([]int, signalCount)
	base := signalCount * edfSamplesArrayOffset
	for i := 0; i < signalCount; i++ {
		lo := base + i*edfSamplesFieldBytes
		field := strings.TrimSpace(string(variable[lo : lo+edfSamplesFieldBytes]))
		if meta.samplesPerRecord[i], err = strconv.Atoi(field); err != nil {
			return nil, fmt.Errorf("parsing samples per record for signal %q: %w", meta.labels[i], err)
		}
	}

	return meta, nil
}
