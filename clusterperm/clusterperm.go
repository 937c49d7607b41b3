// Package clusterperm implements a nonparametric one-sample cluster
// permutation test over trial × feature arrays. Contiguous runs of
// above-threshold t statistics form clusters; cluster-level p-values come
// from a sign-flip permutation null distribution of the maximum absolute
// cluster mass, which controls the family-wise error rate across features.
package clusterperm

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Cluster is a half-open run [Start, End) of feature indices.
type Cluster struct {
	Start, End int
}

// Result holds the observed statistics of a test: the pointwise t values,
// the cluster-forming threshold used, and one p-value per cluster.
type Result struct {
	TObs      []float64
	Threshold float64
	Clusters  []Cluster
	PValues   []float64
}

// OneSample tests H0: mean = 0 at every feature of x (trials × features).
//
// The cluster-forming threshold is the two-tailed Student-t critical value
// at alpha=0.05 with n-1 degrees of freedom; positive and negative
// exceedances are clustered separately. Each permutation flips trial signs
// at random and records the maximum absolute cluster mass; the identity
// permutation is counted first, so the smallest attainable p-value is
// 1/nPerm. Results are deterministic for a fixed seed.
func OneSample(x [][]float64, nPerm int, seed int64) (*Result, error) {
	n := len(x)
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 trials, got %d", n)
	}
	if nPerm < 1 {
		return nil, fmt.Errorf("need at least 1 permutation, got %d", nPerm)
	}

	nFeatures := len(x[0])
	if nFeatures == 0 {
		return nil, fmt.Errorf("trials carry no features")
	}
	for i, row := range x {
		if len(row) != nFeatures {
			return nil, fmt.Errorf("trial %d has %d features, expected %d", i, len(row), nFeatures)
		}
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	threshold := tDist.Quantile(1.0 - 0.05/2.0)

	signs := make([]float64, n)
	for i := range signs {
		signs[i] = 1
	}

	tObs := tStat(x, signs, nil)
	clusters := findClusters(tObs, threshold)

	rng := rand.New(rand.NewSource(seed))
	null := make([]float64, nPerm)
	null[0] = maxAbsMass(tObs, threshold)

	tBuf := make([]float64, nFeatures)
	for p := 1; p < nPerm; p++ {
		for i := range signs {
			if rng.Intn(2) == 0 {
				signs[i] = 1
			} else {
				signs[i] = -1
			}
		}

		tPerm := tStat(x, signs, tBuf)
		null[p] = maxAbsMass(tPerm, threshold)
	}

	pValues := make([]float64, len(clusters))
	for ci, cl := range clusters {
		mass := math.Abs(clusterMass(tObs, cl))

		exceed := 0
		for _, v := range null {
			if v >= mass {
				exceed++
			}
		}

		pValues[ci] = float64(exceed) / float64(nPerm)
	}

	return &Result{
		TObs:      tObs,
		Threshold: threshold,
		Clusters:  clusters,
		PValues:   pValues,
	}, nil
}

// SignificantMask ORs together the features of every cluster with
// p < alpha.
func (r *Result) SignificantMask(alpha float64) []bool {
	mask := make([]bool, len(r.TObs))
	for i, cl := range r.Clusters {
		if r.PValues[i] < alpha {
			for j := cl.Start; j < cl.End; j++ {
				mask[j] = true
			}
		}
	}

	return mask
}

// ReshapeMask rearranges a flat feature mask into rows × cols, row-major.
func ReshapeMask(mask []bool, rows, cols int) ([][]bool, error) {
	if rows*cols != len(mask) {
		return nil, fmt.Errorf("cannot reshape %d features into %d x %d", len(mask), rows, cols)
	}

	out := make([][]bool, rows)
	for r := 0; r < rows; r++ {
		out[r] = mask[r*cols : (r+1)*cols]
	}

	return out, nil
}

// tStat computes the one-sample t statistic per feature after applying the
// given per-trial signs. Features with zero variance get t = 0.
func tStat(x [][]float64, signs []float64, dst []float64) []float64 {
	n := len(x)
	nFeatures := len(x[0])
	if dst == nil {
		dst = make([]float64, nFeatures)
	}

	column := make([]float64, n)
	sqrtN := math.Sqrt(float64(n))

	for j := 0; j < nFeatures; j++ {
		for i := range x {
			column[i] = signs[i] * x[i][j]
		}

		mean, std := stat.MeanStdDev(column, nil)
		if std == 0 {
			dst[j] = 0
			continue
		}

		dst[j] = mean / (std / sqrtN)
	}

	return dst
}

func findClusters(t []float64, threshold float64) []Cluster {
	clusters := runs(t, func(v float64) bool { return v > threshold })
	return append(clusters, runs(t, func(v float64) bool { return v < -threshold })...)
}

func runs(t []float64, exceeds func(float64) bool) []Cluster {
	var out []Cluster

	start := -1
	for i, v := range t {
		switch {
		case exceeds(v) && start < 0:
			start = i
		case !exceeds(v) && start >= 0:
			out = append(out, Cluster{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, Cluster{Start: start, End: len(t)})
	}

	return out
}

func clusterMass(t []float64, cl Cluster) float64 {
	var mass float64
	for i := cl.Start; i < cl.End; i++ {
		mass += t[i]
	}

	return mass
}

func maxAbsMass(t []float64, threshold float64) float64 {
	var max float64
	for _, cl := range findClusters(t, threshold) {
		if m := math.Abs(clusterMass(t, cl)); m > max {
			max = m
		}
	}

	return max
}
