// Package fuzzy implements unsupervised fuzzy clustering by alternating
// optimization: classic fuzzy c-means with spherical clusters, an advanced
// variant using one pooled covariance ellipsoid shared by all clusters, and
// Gustafson-Kessel clustering with a separate covariance ellipsoid per
// cluster. Samples receive continuous membership degrees per cluster rather
// than hard labels, and each partition is scored with the variance ratio
// criterion, normalized class entropy, and the Xie-Beni index.
//
// The package performs no I/O: callers hand in a dense matrix of finite
// feature vectors and receive memberships, centers, the objective-function
// trace, and validity indices back.
//
// References:
//   - Bezdek, J. C. (1981). "Pattern Recognition with Fuzzy Objective
//     Function Algorithms"
//   - Gustafson, D. E., & Kessel, W. C. (1979). "Fuzzy clustering with a
//     fuzzy covariance matrix"
//   - Spath, H. (1985). "Cluster Dissection and Analysis" (determinant
//     criterion)
//   - Xie, X. L., & Beni, G. (1991). "A validity measure for fuzzy
//     clustering"
//   - Calinski, T., & Harabasz, J. (1974). "A dendrite method for cluster
//     analysis"
package fuzzy
