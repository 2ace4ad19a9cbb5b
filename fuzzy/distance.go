package fuzzy

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/geoclust/fuzzyclust/logging"
)

const (
	// distanceFloor avoids a degenerate division when a sample sits
	// exactly on a cluster center
	distanceFloor = 1e-10

	// conditionLimit is the covariance condition number above which
	// eigenvalue clipping kicks in
	conditionLimit = 1e10

	// machEps is the float64 machine epsilon, used for the
	// pseudo-inverse singular value cutoff
	machEps = 2.220446049250313e-16
)

// modelDistances computes the clusters x samples distance matrix under the
// configured covariance model. membership is ignored by the Spherical
// model; the other two weight their covariance estimates with
// membership^FuzzinessExponent. All returned entries are finite and
// >= distanceFloor.
func (c *Clusterer) modelDistances(centers, data, membership [][]float64, rng *rand.Rand, logger logging.Logger) [][]float64 {
	var dist [][]float64
	switch c.cfg.Model {
	case PooledCovariance:
		dist = pooledDistances(centers, data, membership, c.cfg.FuzzinessExponent, logger)
	case PerClusterCovariance:
		dist = perClusterDistances(centers, data, membership, c.cfg.FuzzinessExponent, c.cfg.ShapeConstraint, logger)
	default:
		dist = sphericalDistances(centers, data)
	}
	finishDistances(dist, rng)
	return dist
}

// sphericalDistances is the Euclidean metric of classic fuzzy c-means. It
// is also used to bootstrap the initial membership for every model.
func sphericalDistances(centers, data [][]float64) [][]float64 {
	dist := make([][]float64, len(centers))
	for j, center := range centers {
		row := make([]float64, len(data))
		for k, sample := range data {
			sum := 0.0
			for f := range center {
				d := sample[f] - center[f]
				sum += d * d
			}
			row[k] = math.Sqrt(sum)
		}
		dist[j] = row
	}
	return dist
}

// pooledDistances implements the determinant criterion: the
// membership-weighted covariances of all clusters are summed into one
// pooled matrix, so every cluster shares the same ellipsoid shape.
func pooledDistances(centers, data, membership [][]float64, expo float64, logger logging.Logger) [][]float64 {
	nFeat := len(data[0])
	mf := powMatrix(membership, expo)

	pooled := mat.NewSymDense(nFeat, nil)
	for j := range centers {
		pooled.AddSym(pooled, weightedCovariance(data, centers[j], mf[j]))
	}
	pooled, clipped := stabilize(pooled)
	if clipped {
		logger.Debug("clipped eigenvalues of ill-conditioned pooled covariance")
	}
	metric := metricMatrix(pooled)

	dist := make([][]float64, len(centers))
	diff := make([]float64, nFeat)
	for j, center := range centers {
		row := make([]float64, len(data))
		for k, sample := range data {
			for f := range center {
				diff[f] = sample[f] - center[f]
			}
			row[k] = mahalanobis(diff, metric)
		}
		dist[j] = row
	}
	return dist
}

// perClusterDistances implements Gustafson-Kessel clustering: each cluster
// gets its own covariance ellipsoid, blended toward a scaled identity by
// the shape constraint so clusters cannot collapse into needles. A
// constraint of 1 reduces the metric to the identity, i.e. spherical
// fuzzy c-means.
func perClusterDistances(centers, data, membership [][]float64, expo, constraint float64, logger logging.Logger) [][]float64 {
	nFeat := len(data[0])
	nSamp := len(data)
	mf := powMatrix(membership, expo)

	dist := make([][]float64, len(centers))
	diff := make([]float64, nFeat)
	for j, center := range centers {
		cov := weightedCovariance(data, center, mf[j])
		if constraint > 0 {
			blended := mat.NewSymDense(nFeat, nil)
			for a := 0; a < nFeat; a++ {
				for b := a; b < nFeat; b++ {
					v := (1 - constraint) * cov.At(a, b)
					if a == b {
						v += constraint / float64(nSamp)
					}
					blended.SetSym(a, b, v)
				}
			}
			cov = blended
		}
		cov, clipped := stabilize(cov)
		if clipped {
			logger.Debug("clipped eigenvalues of ill-conditioned cluster covariance", logging.Fields{
				"cluster": j,
			})
		}
		metric := metricMatrix(cov)

		row := make([]float64, nSamp)
		for k, sample := range data {
			for f := range center {
				diff[f] = sample[f] - center[f]
			}
			row[k] = mahalanobis(diff, metric)
		}
		dist[j] = row
	}
	return dist
}

// weightedCovariance accumulates sum_k w_k (x_k - c)(x_k - c)^T / sum_k w_k.
func weightedCovariance(data [][]float64, center, weights []float64) *mat.SymDense {
	nFeat := len(center)
	acc := make([]float64, nFeat*nFeat)
	wsum := 0.0
	for k, sample := range data {
		w := weights[k]
		if w == 0 {
			continue
		}
		wsum += w
		for a := 0; a < nFeat; a++ {
			wda := w * (sample[a] - center[a])
			for b := a; b < nFeat; b++ {
				acc[a*nFeat+b] += wda * (sample[b] - center[b])
			}
		}
	}
	cov := mat.NewSymDense(nFeat, nil)
	for a := 0; a < nFeat; a++ {
		for b := a; b < nFeat; b++ {
			cov.SetSym(a, b, acc[a*nFeat+b]/wsum)
		}
	}
	return cov
}

// stabilize repairs an ill-conditioned covariance estimate by clipping
// eigenvalues smaller than max/conditionLimit and reconstructing the
// matrix. The returned flag reports whether clipping happened.
func stabilize(a *mat.SymDense) (*mat.SymDense, bool) {
	var eig mat.EigenSym
	if !eig.Factorize(a, true) {
		return a, false
	}
	vals := eig.Values(nil)
	maxVal := vals[0]
	minVal := vals[0]
	for _, v := range vals[1:] {
		maxVal = math.Max(maxVal, v)
		minVal = math.Min(minVal, v)
	}
	if maxVal <= 0 {
		return a, false
	}
	if minVal > 0 && maxVal/minVal <= conditionLimit {
		return a, false
	}

	for i := range vals {
		if vals[i]*conditionLimit < maxVal {
			vals[i] = maxVal / conditionLimit
		}
	}

	n := a.SymmetricDim()
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	scaled := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			scaled.Set(i, j, vecs.At(i, j)*vals[j])
		}
	}
	var rec mat.Dense
	rec.Mul(scaled, vecs.T())

	out := mat.NewSymDense(n, nil)
	for a2 := 0; a2 < n; a2++ {
		for b := a2; b < n; b++ {
			out.SetSym(a2, b, 0.5*(rec.At(a2, b)+rec.At(b, a2)))
		}
	}
	return out, true
}

// metricMatrix derives the Mahalanobis-like metric det(A)^(1/n) * pinv(A)
// from a covariance matrix.
func metricMatrix(a *mat.SymDense) *mat.Dense {
	n := a.SymmetricDim()
	scale := math.Pow(mat.Det(a), 1/float64(n))
	pinv := pseudoInverse(a)
	pinv.Scale(scale, pinv)
	return pinv
}

// pseudoInverse computes the Moore-Penrose pseudo-inverse via SVD,
// dropping singular values below the usual eps * max(dims) * s_max cutoff.
func pseudoInverse(a mat.Matrix) *mat.Dense {
	r, c := a.Dims()
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return mat.NewDense(c, r, nil)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	dims := r
	if c > dims {
		dims = c
	}
	tol := 0.0
	if len(s) > 0 {
		tol = s[0] * float64(dims) * machEps
	}

	// scale columns of V by the inverted singular values
	vr, vc := v.Dims()
	scaled := mat.NewDense(vr, vc, nil)
	for j := 0; j < vc; j++ {
		inv := 0.0
		if s[j] > tol {
			inv = 1 / s[j]
		}
		for i := 0; i < vr; i++ {
			scaled.Set(i, j, v.At(i, j)*inv)
		}
	}

	var pinv mat.Dense
	pinv.Mul(scaled, u.T())
	return &pinv
}

// mahalanobis evaluates sqrt(diff^T metric diff), clamping tiny negative
// quadratic forms from roundoff to zero.
func mahalanobis(diff []float64, metric *mat.Dense) float64 {
	n := len(diff)
	sum := 0.0
	for a := 0; a < n; a++ {
		da := diff[a]
		if da == 0 {
			continue
		}
		for b := 0; b < n; b++ {
			sum += da * metric.At(a, b) * diff[b]
		}
	}
	if sum < 0 {
		sum = 0
	}
	return math.Sqrt(sum)
}

// finishDistances enforces the distance edge-case policy in place:
// non-finite entries become a small random positive perturbation so the
// optimization cannot stall on NaN/Inf, and everything is floored at
// distanceFloor.
func finishDistances(dist [][]float64, rng *rand.Rand) {
	for _, row := range dist {
		for k, d := range row {
			if math.IsInf(d, 0) || math.IsNaN(d) {
				d = distanceFloor * (1 + math.Abs(rng.NormFloat64()))
			}
			if d < distanceFloor {
				d = distanceFloor
			}
			row[k] = d
		}
	}
}
