package fuzzy

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// hardLabels reduces a membership matrix to arg-max cluster assignments.
func hardLabels(membership [][]float64) []int {
	m := len(membership[0])
	labels := make([]int, m)
	for s := 0; s < m; s++ {
		best := membership[0][s]
		for j := 1; j < len(membership); j++ {
			if membership[j][s] > best {
				best = membership[j][s]
				labels[s] = j
			}
		}
	}
	return labels
}

// varianceRatio computes the variance ratio criterion
// (between-cluster scatter / within-cluster scatter, each normalized by
// its degrees of freedom) over the hard arg-max assignment against the
// final centers. Higher values indicate better separated partitions.
func varianceRatio(data [][]float64, labels []int, centers [][]float64) float64 {
	n := len(data)
	k := len(centers)

	if k < 2 || n == k {
		return 0
	}

	nFeat := len(data[0])
	overall := make([]float64, nFeat)
	for _, sample := range data {
		for f, x := range sample {
			overall[f] += x
		}
	}
	for f := range overall {
		overall[f] /= float64(n)
	}

	counts := make([]int, k)
	for _, label := range labels {
		counts[label]++
	}

	bgss := 0.0
	for j, center := range centers {
		if counts[j] == 0 {
			continue
		}
		sum := 0.0
		for f, x := range center {
			d := x - overall[f]
			sum += d * d
		}
		bgss += float64(counts[j]) * sum
	}

	wgss := 0.0
	for s, sample := range data {
		center := centers[labels[s]]
		for f, x := range sample {
			d := x - center[f]
			wgss += d * d
		}
	}
	if wgss == 0 {
		return 0
	}

	return (bgss / float64(k-1)) / (wgss / float64(n-k))
}

// normalizedClassEntropy measures how fuzzy the final partition is:
// -(sum u*log10(u)) / M / log10(K), 0 for a fully crisp partition and 1
// for a maximally fuzzy one.
func normalizedClassEntropy(membership [][]float64) float64 {
	k := len(membership)
	if k < 2 {
		return 0
	}
	m := len(membership[0])

	sum := 0.0
	for _, row := range membership {
		for _, u := range row {
			if u > 0 {
				sum += u * math.Log10(u)
			}
		}
	}
	return -sum / float64(m) / math.Log10(float64(k))
}

// xieBeni computes the Xie-Beni index: total membership^expo-weighted
// squared distance divided by M times the minimum squared separation
// between any two centers. Lower is better separated.
func xieBeni(membership, distances, centers [][]float64, expo float64) float64 {
	k := len(centers)
	if k < 2 {
		return 0
	}
	m := len(membership[0])

	num := 0.0
	for j, row := range distances {
		for s, d := range row {
			num += math.Pow(membership[j][s], expo) * d * d
		}
	}

	minSep := math.Inf(1)
	for a := 0; a < k; a++ {
		for b := a + 1; b < k; b++ {
			sep := 0.0
			for f := range centers[a] {
				d := centers[a][f] - centers[b][f]
				sep += d * d
			}
			if sep < minSep {
				minSep = sep
			}
		}
	}
	if minSep == 0 {
		return math.Inf(1)
	}
	return num / (float64(m) * minSep)
}

// centerStd computes the per-cluster, per-feature population standard
// deviation of the hard-assigned samples. Empty clusters yield zeros.
func centerStd(data [][]float64, labels []int, k int) [][]float64 {
	nFeat := len(data[0])
	out := make([][]float64, k)
	col := make([]float64, 0, len(data))
	for j := 0; j < k; j++ {
		row := make([]float64, nFeat)
		for f := 0; f < nFeat; f++ {
			col = col[:0]
			for s, sample := range data {
				if labels[s] == j {
					col = append(col, sample[f])
				}
			}
			if len(col) > 0 {
				row[f] = stat.PopStdDev(col, nil)
			}
		}
		out[j] = row
	}
	return out
}
