package tfr

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// MatchTrials truncates two single-channel power arrays (trial × freq ×
// time) to their common trial count so they can be differenced pairwise.
func MatchTrials(a, b [][][]float64) ([][][]float64, [][][]float64, int) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	return a[:n], b[:n], n
}

// TrialDifference computes a−b per trial over two matched single-channel
// power arrays.
func TrialDifference(a, b [][][]float64) ([][][]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("trial counts differ: %d vs %d", len(a), len(b))
	}

	out := make([][][]float64, len(a))
	for t := range a {
		if len(a[t]) != len(b[t]) {
			return nil, fmt.Errorf("frequency counts differ in trial %d: %d vs %d", t, len(a[t]), len(b[t]))
		}

		out[t] = make([][]float64, len(a[t]))
		for f := range a[t] {
			row := make([]float64, len(a[t][f]))
			floats.SubTo(row, a[t][f], b[t][f])
			out[t][f] = row
		}
	}

	return out, nil
}

// MeanMap collapses the trial axis of a single-channel power array to a
// freq × time mean.
func MeanMap(trials [][][]float64) [][]float64 {
	if len(trials) == 0 {
		return nil
	}

	n := float64(len(trials))
	out := make([][]float64, len(trials[0]))
	for f := range trials[0] {
		row := make([]float64, len(trials[0][f]))
		for t := range trials {
			floats.Add(row, trials[t][f])
		}
		floats.Scale(1.0/n, row)
		out[f] = row
	}

	return out
}

// FlattenTrials reshapes a single-channel power array to trials × features,
// concatenating frequency rows in order. The inverse of the feature index
// is (f, t) = (i / nTimes, i % nTimes).
func FlattenTrials(trials [][][]float64) [][]float64 {
	out := make([][]float64, len(trials))
	for t := range trials {
		var flat []float64
		for f := range trials[t] {
			flat = append(flat, trials[t][f]...)
		}
		out[t] = flat
	}

	return out
}
