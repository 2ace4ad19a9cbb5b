package fuzzy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMembershipUpdatePartitionOfUnity(t *testing.T) {
	distances := [][]float64{
		{1, 4, 0.5},
		{2, 1, 0.5},
		{3, 2, 8},
	}

	u := membershipUpdate(distances, 2.0)
	for s := 0; s < 3; s++ {
		sum := 0.0
		for j := 0; j < 3; j++ {
			require.GreaterOrEqual(t, u[j][s], 0.0)
			require.LessOrEqual(t, u[j][s], 1.0)
			sum += u[j][s]
		}
		require.InDelta(t, 1.0, sum, 1e-9)
	}
	// the closer cluster gets the larger membership
	require.Greater(t, u[0][0], u[1][0])
	require.Greater(t, u[1][1], u[0][1])
	// equidistant clusters split evenly
	require.InDelta(t, u[0][2], u[1][2], 1e-12)
}

func TestWeightedCentersCrisp(t *testing.T) {
	data := [][]float64{{0, 0}, {4, 0}, {10, 10}}
	mf := [][]float64{
		{1, 1, 0},
		{0, 0, 1},
	}

	centers := weightedCenters(data, mf)
	require.InDelta(t, 2.0, centers[0][0], 1e-12)
	require.InDelta(t, 0.0, centers[0][1], 1e-12)
	require.InDelta(t, 10.0, centers[1][0], 1e-12)
}

func TestObjective(t *testing.T) {
	distances := [][]float64{{2, 3}}
	mf := [][]float64{{0.5, 1}}

	// 4*0.5 + 9*1
	require.InDelta(t, 11.0, objective(distances, mf), 1e-12)
}

func TestOptimizeRollbackKeepsPreviousState(t *testing.T) {
	// two tight blobs: plain FCM is monotone, so force the loop through a
	// full run and check the trace never degrades
	rng := rand.New(rand.NewSource(5))
	data := make([][]float64, 0, 80)
	for i := 0; i < 40; i++ {
		data = append(data, []float64{rng.NormFloat64() * 0.1, rng.NormFloat64() * 0.1})
		data = append(data, []float64{5 + rng.NormFloat64()*0.1, 5 + rng.NormFloat64()*0.1})
	}

	c := &Clusterer{cfg: Config{
		MinClusters:          2,
		MaxClusters:          2,
		FuzzinessExponent:    2.0,
		MaxIterations:        50,
		TerminationThreshold: 1e-5,
		Model:                PerClusterCovariance,
	}, log: noopLogger()}

	centers := c.initialCenters(data, 2, rng)
	membership := c.bootstrapMembership(centers, data, rng)
	state, err := c.optimize(data, centers, membership, rng, noopLogger(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, state.trace)
	require.LessOrEqual(t, state.trace[len(state.trace)-1], state.trace[0])
	for s := range data {
		sum := 0.0
		for j := range state.membership {
			sum += state.membership[j][s]
		}
		require.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestOptimizeCancel(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	data := make([][]float64, 30)
	for i := range data {
		data[i] = []float64{rng.NormFloat64(), rng.NormFloat64()}
	}

	c := &Clusterer{cfg: Config{
		MinClusters:          2,
		MaxClusters:          2,
		FuzzinessExponent:    2.0,
		MaxIterations:        100,
		TerminationThreshold: 1e-9,
	}, log: noopLogger()}

	centers := c.initialCenters(data, 2, rng)
	membership := c.bootstrapMembership(centers, data, rng)
	calls := 0
	_, err := c.optimize(data, centers, membership, rng, noopLogger(), func(iter int, obj float64) bool {
		calls++
		return calls < 3
	})
	require.ErrorIs(t, err, ErrCanceled)
	require.Equal(t, 3, calls)
}
