package fuzzy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHardLabels(t *testing.T) {
	membership := [][]float64{
		{0.9, 0.2, 0.5},
		{0.1, 0.8, 0.5},
	}

	require.Equal(t, []int{0, 1, 0}, hardLabels(membership))
}

func TestNormalizedClassEntropyBounds(t *testing.T) {
	crisp := [][]float64{
		{1, 0, 1},
		{0, 1, 0},
	}
	require.InDelta(t, 0.0, normalizedClassEntropy(crisp), 1e-12)

	maximallyFuzzy := uniformMembership(4, 10)
	require.InDelta(t, 1.0, normalizedClassEntropy(maximallyFuzzy), 1e-12)

	// single cluster carries no entropy
	require.Equal(t, 0.0, normalizedClassEntropy(uniformMembership(1, 10)))
}

func TestVarianceRatioSeparatedBeatsOverlapping(t *testing.T) {
	separated := [][]float64{{0, 0}, {0.1, 0}, {10, 10}, {10.1, 10}}
	overlapping := [][]float64{{0, 0}, {1, 1}, {0.5, 0}, {1.5, 1}}
	labels := []int{0, 0, 1, 1}
	sepCenters := [][]float64{{0.05, 0}, {10.05, 10}}
	overCenters := [][]float64{{0.5, 0.5}, {1, 0.5}}

	vrcSep := varianceRatio(separated, labels, sepCenters)
	vrcOver := varianceRatio(overlapping, labels, overCenters)
	require.Greater(t, vrcSep, vrcOver)
	require.Greater(t, vrcSep, 0.0)
}

func TestVarianceRatioDegenerate(t *testing.T) {
	data := [][]float64{{1}, {2}}
	require.Equal(t, 0.0, varianceRatio(data, []int{0, 0}, [][]float64{{1.5}}))
	require.Equal(t, 0.0, varianceRatio(data, []int{0, 1}, [][]float64{{1}, {2}}))
}

func TestXieBeniSeparatedIsLower(t *testing.T) {
	data := [][]float64{{0, 0}, {0.1, 0}, {10, 10}, {10.1, 10}}
	membership := [][]float64{
		{0.99, 0.99, 0.01, 0.01},
		{0.01, 0.01, 0.99, 0.99},
	}
	sepCenters := [][]float64{{0.05, 0}, {10.05, 10}}
	closeCenters := [][]float64{{4.9, 5}, {5.1, 5}}
	distances := sphericalDistances(sepCenters, data)

	xbiSep := xieBeni(membership, distances, sepCenters, 2.0)
	xbiClose := xieBeni(membership, sphericalDistances(closeCenters, data), closeCenters, 2.0)
	require.Greater(t, xbiClose, xbiSep)
	require.False(t, math.IsNaN(xbiSep))

	// fewer than two clusters has no separation to measure
	require.Equal(t, 0.0, xieBeni(uniformMembership(1, 4), sphericalDistances([][]float64{{5, 5}}, data), [][]float64{{5, 5}}, 2.0))
}

func TestCenterStd(t *testing.T) {
	data := [][]float64{{0}, {2}, {10}, {10}}
	labels := []int{0, 0, 1, 1}

	std := centerStd(data, labels, 2)
	require.InDelta(t, 1.0, std[0][0], 1e-12) // population std of {0, 2}
	require.InDelta(t, 0.0, std[1][0], 1e-12)
}
