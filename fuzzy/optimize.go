package fuzzy

import (
	"math"
	"math/rand"

	"github.com/geoclust/fuzzyclust/logging"
)

// loopState is the terminal state of one optimization run.
type loopState struct {
	centers    [][]float64
	membership [][]float64
	distances  [][]float64
	trace      []float64
	status     Status
}

// optimize is the alternating-optimization core. Each iteration
// re-estimates centers from the membership-weighted sample means,
// recomputes distances under the configured covariance model, updates the
// membership matrix, and evaluates the objective function. A run ends
// converged, rolled back (the covariance metrics change every iteration,
// so the objective is not guaranteed monotone; an increase discards the
// offending iteration and restores the previous state), or out of
// iterations. report is invoked once per iteration; a false return aborts
// with ErrCanceled.
func (c *Clusterer) optimize(data, centers, membership [][]float64, rng *rand.Rand, logger logging.Logger, report func(iter int, obj float64) bool) (*loopState, error) {
	expo := c.cfg.FuzzinessExponent
	mf := powMatrix(membership, expo)
	var distances [][]float64
	trace := make([]float64, 0, c.cfg.MaxIterations)
	status := StatusMaxIterations

	for i := 0; i < c.cfg.MaxIterations; i++ {
		prevCenters := centers
		prevMembership := membership
		prevDistances := distances

		// centers stay at their initial estimate on the first pass
		if i > 0 {
			centers = weightedCenters(data, mf)
		}
		distances = c.modelDistances(centers, data, membership, rng, logger)
		membership = membershipUpdate(distances, expo)
		mf = powMatrix(membership, expo)

		obj := objective(distances, mf)
		trace = append(trace, obj)

		if report != nil && !report(i, obj) {
			return nil, ErrCanceled
		}

		if i == 0 {
			continue
		}
		prev := trace[i-1]
		improvement := (prev - obj) / prev
		logger.Debug("iteration", logging.Fields{
			"iteration":   i,
			"objective":   obj,
			"improvement": improvement,
		})

		if obj > prev {
			centers = prevCenters
			membership = prevMembership
			distances = prevDistances
			trace = trace[:i]
			status = StatusRolledBack
			break
		}
		if improvement < c.cfg.TerminationThreshold/100 {
			status = StatusConverged
			break
		}
	}

	return &loopState{
		centers:    centers,
		membership: membership,
		distances:  distances,
		trace:      trace,
		status:     status,
	}, nil
}

// weightedCenters re-estimates each center as the mean of all samples
// weighted by membership^FuzzinessExponent.
func weightedCenters(data, mf [][]float64) [][]float64 {
	nFeat := len(data[0])
	centers := make([][]float64, len(mf))
	for j, weights := range mf {
		center := make([]float64, nFeat)
		wsum := 0.0
		for k, sample := range data {
			w := weights[k]
			if w == 0 {
				continue
			}
			wsum += w
			for f, x := range sample {
				center[f] += w * x
			}
		}
		for f := range center {
			center[f] /= wsum
		}
		centers[j] = center
	}
	return centers
}

// membershipUpdate applies the standard fuzzy membership rule
// u_jk = d_jk^(-2/(expo-1)) / sum_j d_jk^(-2/(expo-1)). Every column of
// the result sums to 1.
func membershipUpdate(distances [][]float64, expo float64) [][]float64 {
	k := len(distances)
	m := len(distances[0])
	p := -2 / (expo - 1)

	u := make([][]float64, k)
	colSum := make([]float64, m)
	for j, row := range distances {
		ur := make([]float64, m)
		for s, d := range row {
			v := math.Pow(d, p)
			ur[s] = v
			colSum[s] += v
		}
		u[j] = ur
	}
	for j := range u {
		for s := range u[j] {
			u[j][s] /= colSum[s]
		}
	}
	return u
}

// objective evaluates sum(distance^2 * membership^expo) over all
// cluster/sample pairs.
func objective(distances, mf [][]float64) float64 {
	sum := 0.0
	for j, row := range distances {
		for s, d := range row {
			sum += d * d * mf[j][s]
		}
	}
	return sum
}

// powMatrix raises every membership entry to the fuzzification exponent.
func powMatrix(membership [][]float64, expo float64) [][]float64 {
	out := make([][]float64, len(membership))
	for j, row := range membership {
		or := make([]float64, len(row))
		for s, v := range row {
			or[s] = math.Pow(v, expo)
		}
		out[j] = or
	}
	return out
}
