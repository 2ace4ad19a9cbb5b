package fuzzy

import (
	"fmt"

	"github.com/geoclust/fuzzyclust/logging"
)

// Model selects the covariance model that shapes the distance metric
type Model int

const (
	// Spherical is classic fuzzy c-means: Euclidean distances, all
	// clusters spherical
	Spherical Model = iota

	// PooledCovariance is advanced fuzzy c-means: one membership-weighted
	// covariance matrix pooled over all clusters, so every cluster shares
	// the same ellipsoid shape
	PooledCovariance

	// PerClusterCovariance is Gustafson-Kessel clustering: each cluster
	// estimates its own covariance ellipsoid
	PerClusterCovariance
)

func (m Model) String() string {
	switch m {
	case Spherical:
		return "fcm"
	case PooledCovariance:
		return "det"
	case PerClusterCovariance:
		return "gk"
	default:
		return "unknown"
	}
}

// InitStrategy selects how each run obtains its starting cluster centers
type InitStrategy int

const (
	// InitRandom draws centers uniformly within the per-feature data range
	InitRandom InitStrategy = iota

	// InitDataDriven takes per-feature medians of contiguous index bins;
	// deterministic for a fixed sample order
	InitDataDriven

	// InitSupplied uses a caller-provided center or membership matrix
	InitSupplied
)

func (s InitStrategy) String() string {
	switch s {
	case InitRandom:
		return "random"
	case InitDataDriven:
		return "data driven"
	case InitSupplied:
		return "supplied"
	default:
		return "unknown"
	}
}

// Progress describes the state of one optimization run after an iteration.
// It is delivered to the Config.Progress callback.
type Progress struct {
	Clusters  int     `json:"clusters"`
	Run       int     `json:"run"`
	Iteration int     `json:"iteration"`
	Objective float64 `json:"objective"`
}

// Config contains parameters for a clustering fit.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// MinClusters and MaxClusters give the inclusive range of cluster
	// counts to fit. One result is returned per count. Default: 5 and 5.
	MinClusters int `json:"min_clusters"`
	MaxClusters int `json:"max_clusters"`

	// Model selects the covariance model. Default: Spherical.
	Model Model `json:"model"`

	// FuzzinessExponent controls how soft the partition is. Must be > 1;
	// higher values produce more overlapping memberships. Default: 1.5.
	FuzzinessExponent float64 `json:"fuzziness_exponent"`

	// MaxIterations bounds each optimization run. Default: 100.
	MaxIterations int `json:"max_iterations"`

	// TerminationThreshold stops a run when the relative improvement of
	// the objective function per iteration, in percent, falls below it.
	// Must be > 0. Default: 1e-5.
	TerminationThreshold float64 `json:"termination_threshold"`

	// ShapeConstraint blends each estimated covariance toward a scaled
	// identity to avoid needle-shaped clusters. Only used by
	// PerClusterCovariance. 0 leaves ellipsoids unconstrained, 1 is
	// equivalent to Spherical. Default: 0.
	ShapeConstraint float64 `json:"shape_constraint"`

	// Init selects the initialization strategy. Default: InitRandom.
	Init InitStrategy `json:"init"`

	// Runs is the number of independent random restarts per cluster
	// count. The restart with the lowest terminal objective wins. Only
	// meaningful with InitRandom; other strategies are deterministic and
	// run once. Default: 1.
	Runs int `json:"runs"`

	// InitCenters supplies starting centers for InitSupplied, shaped
	// clusters x features. Requires MinClusters == MaxClusters.
	InitCenters [][]float64 `json:"init_centers,omitempty"`

	// InitMembership supplies a starting membership matrix for
	// InitSupplied, shaped clusters x samples with non-negative entries.
	// Columns are normalized to sum to 1 before use. Requires
	// MinClusters == MaxClusters. Mutually exclusive with InitCenters.
	InitMembership [][]float64 `json:"init_membership,omitempty"`

	// RandomSeed makes random initialization reproducible. Restarts and
	// cluster counts derive their own seeds from it, so results do not
	// depend on Workers. Default: 42.
	RandomSeed int64 `json:"random_seed"`

	// Workers is the number of goroutines used to fan out independent
	// (cluster count, restart) runs. Each run owns private state.
	// Default: 1 (fully sequential).
	Workers int `json:"workers"`

	// Progress, when non-nil, is invoked once per completed iteration.
	// Returning false cancels the whole fit with ErrCanceled. Must be
	// safe for concurrent use when Workers > 1.
	Progress func(Progress) bool `json:"-"`

	// Logger receives run and iteration diagnostics. Nil means the
	// package-global logger.
	Logger logging.Logger `json:"-"`
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		MinClusters:          5,
		MaxClusters:          5,
		Model:                Spherical,
		FuzzinessExponent:    1.5,
		MaxIterations:        100,
		TerminationThreshold: 1e-5,
		Init:                 InitRandom,
		Runs:                 1,
		RandomSeed:           42,
		Workers:              1,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.FuzzinessExponent == 0 {
		cfg.FuzzinessExponent = 1.5
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 100
	}
	if cfg.TerminationThreshold == 0 {
		cfg.TerminationThreshold = 1e-5
	}
	if cfg.Runs == 0 {
		cfg.Runs = 1
	}
	if cfg.RandomSeed == 0 {
		cfg.RandomSeed = 42
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
}

// validateConfig checks data-independent fields; shape checks against the
// sample matrix happen in Fit.
func validateConfig(cfg *Config) error {
	if cfg.MinClusters < 1 {
		return fmt.Errorf("fuzzy: MinClusters must be >= 1, got %d", cfg.MinClusters)
	}
	if cfg.MaxClusters < cfg.MinClusters {
		return fmt.Errorf("fuzzy: MaxClusters (%d) must be >= MinClusters (%d)", cfg.MaxClusters, cfg.MinClusters)
	}
	switch cfg.Model {
	case Spherical, PooledCovariance, PerClusterCovariance:
	default:
		return fmt.Errorf("fuzzy: invalid Model %d", cfg.Model)
	}
	if cfg.FuzzinessExponent <= 1 {
		return fmt.Errorf("fuzzy: FuzzinessExponent must be > 1, got %g", cfg.FuzzinessExponent)
	}
	if cfg.MaxIterations < 1 {
		return fmt.Errorf("fuzzy: MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	if cfg.TerminationThreshold <= 0 {
		return fmt.Errorf("fuzzy: TerminationThreshold must be > 0, got %g", cfg.TerminationThreshold)
	}
	if cfg.ShapeConstraint < 0 || cfg.ShapeConstraint > 1 {
		return fmt.Errorf("fuzzy: ShapeConstraint must be in [0, 1], got %g", cfg.ShapeConstraint)
	}
	if cfg.Runs < 1 {
		return fmt.Errorf("fuzzy: Runs must be >= 1, got %d", cfg.Runs)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("fuzzy: Workers must be >= 1, got %d", cfg.Workers)
	}
	switch cfg.Init {
	case InitRandom, InitDataDriven:
		if cfg.InitCenters != nil || cfg.InitMembership != nil {
			return fmt.Errorf("fuzzy: InitCenters/InitMembership are only used with InitSupplied")
		}
	case InitSupplied:
		if cfg.InitCenters == nil && cfg.InitMembership == nil {
			return fmt.Errorf("fuzzy: InitSupplied requires InitCenters or InitMembership")
		}
		if cfg.InitCenters != nil && cfg.InitMembership != nil {
			return fmt.Errorf("fuzzy: InitCenters and InitMembership are mutually exclusive")
		}
		if cfg.MinClusters != cfg.MaxClusters {
			return fmt.Errorf("fuzzy: InitSupplied requires MinClusters == MaxClusters, got [%d, %d]",
				cfg.MinClusters, cfg.MaxClusters)
		}
	default:
		return fmt.Errorf("fuzzy: invalid InitStrategy %d", cfg.Init)
	}
	return nil
}
