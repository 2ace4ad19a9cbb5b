package fuzzy

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func uniformMembership(k, m int) [][]float64 {
	u := make([][]float64, k)
	for j := range u {
		u[j] = make([]float64, m)
		for s := range u[j] {
			u[j][s] = 1 / float64(k)
		}
	}
	return u
}

func TestSphericalDistances(t *testing.T) {
	centers := [][]float64{{0, 0}, {3, 4}}
	data := [][]float64{{0, 0}, {3, 4}, {6, 8}}

	dist := sphericalDistances(centers, data)
	require.Len(t, dist, 2)
	require.Equal(t, 0.0, dist[0][0])
	require.InDelta(t, 5.0, dist[0][1], 1e-12)
	require.InDelta(t, 10.0, dist[0][2], 1e-12)
	require.InDelta(t, 5.0, dist[1][0], 1e-12)
	require.Equal(t, 0.0, dist[1][1])
}

func TestFinishDistancesFloorsAndRepairs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dist := [][]float64{{0, 1e-12, math.Inf(1), math.NaN(), 2.5}}

	finishDistances(dist, rng)
	for _, d := range dist[0] {
		require.False(t, math.IsNaN(d))
		require.False(t, math.IsInf(d, 0))
		require.GreaterOrEqual(t, d, distanceFloor)
	}
	require.Equal(t, 2.5, dist[0][4])
}

func TestPerClusterConstraintOneIsEuclidean(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	data := make([][]float64, 40)
	for i := range data {
		data[i] = []float64{rng.NormFloat64(), rng.NormFloat64() * 2}
	}
	centers := [][]float64{{-1, 0}, {1, 0}}
	membership := uniformMembership(2, len(data))

	logger := noopLogger()
	gk := perClusterDistances(centers, data, membership, 2.0, 1.0, logger)
	euclid := sphericalDistances(centers, data)

	for j := range gk {
		for s := range gk[j] {
			require.InDelta(t, euclid[j][s], gk[j][s], 1e-9)
		}
	}
}

func TestPooledDistancesFinite(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	data := make([][]float64, 60)
	for i := range data {
		data[i] = []float64{rng.NormFloat64(), rng.NormFloat64() + 3}
	}
	centers := [][]float64{{0, 3}, {1, 2}}
	membership := uniformMembership(2, len(data))

	dist := pooledDistances(centers, data, membership, 2.0, noopLogger())
	finishDistances(dist, rng)
	for j := range dist {
		require.Len(t, dist[j], len(data))
		for _, d := range dist[j] {
			require.False(t, math.IsNaN(d))
			require.False(t, math.IsInf(d, 0))
			require.GreaterOrEqual(t, d, distanceFloor)
		}
	}
}

func TestStabilizeClipsIllConditioned(t *testing.T) {
	a := mat.NewSymDense(2, []float64{1, 0, 0, 1e-15})

	out, clipped := stabilize(a)
	require.True(t, clipped)

	var eig mat.EigenSym
	require.True(t, eig.Factorize(out, false))
	vals := eig.Values(nil)
	maxVal := math.Max(vals[0], vals[1])
	minVal := math.Min(vals[0], vals[1])
	require.Greater(t, minVal, 0.0)
	require.LessOrEqual(t, maxVal/minVal, conditionLimit*1.01)
}

func TestStabilizeLeavesWellConditionedAlone(t *testing.T) {
	a := mat.NewSymDense(2, []float64{2, 0.5, 0.5, 1})

	out, clipped := stabilize(a)
	require.False(t, clipped)
	require.Equal(t, a, out)
}

func TestPseudoInverseRecoversInverse(t *testing.T) {
	a := mat.NewSymDense(2, []float64{4, 1, 1, 3})

	pinv := pseudoInverse(a)
	var prod mat.Dense
	prod.Mul(pinv, a)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			require.InDelta(t, want, prod.At(i, j), 1e-12)
		}
	}
}

func TestMetricMatrixIdentityScaled(t *testing.T) {
	// metric of (1/m)*I must be the identity: det^(1/n) cancels pinv's scale
	m := 200.0
	a := mat.NewSymDense(2, []float64{1 / m, 0, 0, 1 / m})

	metric := metricMatrix(a)
	require.InDelta(t, 1.0, metric.At(0, 0), 1e-12)
	require.InDelta(t, 1.0, metric.At(1, 1), 1e-12)
	require.InDelta(t, 0.0, metric.At(0, 1), 1e-12)
}
