package fuzzy

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// initialCenters produces the starting center matrix for one run. All
// strategies feed the same bootstrap: the initial membership is then
// derived from these centers via the spherical metric regardless of the
// configured model (see bootstrapMembership).
func (c *Clusterer) initialCenters(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	switch c.cfg.Init {
	case InitDataDriven:
		return dataDrivenCenters(data, k)
	case InitSupplied:
		if c.cfg.InitCenters != nil {
			return copyMatrix(c.cfg.InitCenters)
		}
		return centersFromMembership(data, normalizeColumns(c.cfg.InitMembership), c.cfg.FuzzinessExponent)
	default:
		return randomCenters(data, k, rng)
	}
}

// bootstrapMembership derives the initial membership matrix from the
// starting centers using Euclidean distances, so every run enters the
// optimization loop in a consistent state whatever the model.
func (c *Clusterer) bootstrapMembership(centers, data [][]float64, rng *rand.Rand) [][]float64 {
	dist := sphericalDistances(centers, data)
	finishDistances(dist, rng)
	return membershipUpdate(dist, c.cfg.FuzzinessExponent)
}

// randomCenters draws k centers uniformly within the per-feature min/max
// range of the data. A zero-width range is widened toward 1 so the draw
// never degenerates for constant features.
func randomCenters(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	nFeat := len(data[0])
	lo := make([]float64, nFeat)
	hi := make([]float64, nFeat)
	col := make([]float64, len(data))
	for f := 0; f < nFeat; f++ {
		for s, sample := range data {
			col[s] = sample[f]
		}
		lo[f] = floats.Min(col)
		hi[f] = floats.Max(col)
		if lo[f] == hi[f] {
			if lo[f] > 1 {
				lo[f] = 1
			}
			if hi[f] < 1 {
				hi[f] = 1
			}
		}
	}

	centers := make([][]float64, k)
	for j := range centers {
		center := make([]float64, nFeat)
		for f := range center {
			center[f] = lo[f] + rng.Float64()*(hi[f]-lo[f])
		}
		centers[j] = center
	}
	return centers
}

// dataDrivenCenters partitions the sample indices into k contiguous bins
// of near-equal size and uses the per-feature median of each bin as that
// cluster's starting center. Deterministic for a fixed sample order;
// callers wanting a particular binning must order their samples first.
func dataDrivenCenters(data [][]float64, k int) [][]float64 {
	m := len(data)
	nFeat := len(data[0])

	centers := make([][]float64, k)
	for j := range centers {
		start := j * m / k
		end := (j + 1) * m / k
		center := make([]float64, nFeat)
		col := make([]float64, 0, end-start)
		for f := 0; f < nFeat; f++ {
			col = col[:0]
			for s := start; s < end; s++ {
				col = append(col, data[s][f])
			}
			sort.Float64s(col)
			center[f] = stat.Quantile(0.5, stat.Empirical, col, nil)
		}
		centers[j] = center
	}
	return centers
}

// centersFromMembership converts a membership matrix into center estimates
// using the same membership^expo-weighted mean as the optimization loop.
func centersFromMembership(data, membership [][]float64, expo float64) [][]float64 {
	return weightedCenters(data, powMatrix(membership, expo))
}

// normalizeColumns scales a supplied membership matrix so every column
// sums to 1. Entries must be validated non-negative beforehand.
func normalizeColumns(membership [][]float64) [][]float64 {
	k := len(membership)
	m := len(membership[0])
	out := make([][]float64, k)
	colSum := make([]float64, m)
	for _, row := range membership {
		for s, v := range row {
			colSum[s] += v
		}
	}
	for j, row := range membership {
		or := make([]float64, m)
		for s, v := range row {
			or[s] = v / colSum[s]
		}
		out[j] = or
	}
	return out
}

func copyMatrix(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}
