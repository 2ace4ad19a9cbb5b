package fuzzy

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/geoclust/fuzzyclust/logging"
)

// ErrCanceled is returned by Fit when the Progress callback aborts the fit.
var ErrCanceled = errors.New("fuzzy: clustering canceled")

// Clusterer runs fuzzy clustering over a range of cluster counts
type Clusterer struct {
	cfg Config
	log logging.Logger
}

// New creates a Clusterer, filling zero-valued config fields with their
// defaults and validating the rest.
func New(cfg Config) (*Clusterer, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Clusterer{cfg: cfg, log: logger}, nil
}

// Fit clusters the sample matrix (samples x features, all entries finite)
// and returns one RunResult per cluster count in [MinClusters,
// MaxClusters], in order. With InitRandom, each count runs Runs
// independent restarts and the lowest terminal objective wins; the other
// strategies are deterministic and run once. The input is never mutated.
//
// Fit either returns a complete result set or a single error raised
// before any optimization starts; the only mid-fit error is ErrCanceled.
func (c *Clusterer) Fit(data [][]float64) ([]RunResult, error) {
	if err := c.validateData(data); err != nil {
		return nil, err
	}

	runs := c.cfg.Runs
	if c.cfg.Init != InitRandom {
		runs = 1
	}

	type job struct {
		k, run, seq int
	}
	var jobs []job
	for k := c.cfg.MinClusters; k <= c.cfg.MaxClusters; k++ {
		for r := 0; r < runs; r++ {
			jobs = append(jobs, job{k: k, run: r, seq: len(jobs)})
		}
	}

	c.log.Info("fuzzy clustering started", logging.Fields{
		"model":        c.cfg.Model.String(),
		"init":         c.cfg.Init.String(),
		"min_clusters": c.cfg.MinClusters,
		"max_clusters": c.cfg.MaxClusters,
		"runs":         runs,
		"samples":      len(data),
	})

	outcomes := make([]RunResult, len(jobs))
	errs := make([]error, len(jobs))
	var canceled atomic.Bool

	runJob := func(jb job) {
		if canceled.Load() {
			errs[jb.seq] = ErrCanceled
			return
		}
		// per-job seed: results are reproducible whatever Workers is
		rng := rand.New(rand.NewSource(c.cfg.RandomSeed + int64(jb.seq)))
		logger := c.log.WithFields(logging.Fields{"clusters": jb.k, "run": jb.run})
		logger.Debug("run started")
		res, err := c.runOnce(data, jb.k, jb.run, rng, logger, &canceled)
		if err != nil {
			errs[jb.seq] = err
			return
		}
		logger.Debug("run finished", logging.Fields{
			"status":     res.Status.String(),
			"iterations": res.Iterations,
			"objective":  res.ObjectiveTrace[len(res.ObjectiveTrace)-1],
		})
		outcomes[jb.seq] = res
	}

	if c.cfg.Workers > 1 {
		jobCh := make(chan job)
		var wg sync.WaitGroup
		for w := 0; w < c.cfg.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for jb := range jobCh {
					runJob(jb)
				}
			}()
		}
		for _, jb := range jobs {
			jobCh <- jb
		}
		close(jobCh)
		wg.Wait()
	} else {
		for _, jb := range jobs {
			runJob(jb)
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// keep the restart with the lowest terminal objective per count
	results := make([]RunResult, 0, c.cfg.MaxClusters-c.cfg.MinClusters+1)
	seq := 0
	for k := c.cfg.MinClusters; k <= c.cfg.MaxClusters; k++ {
		best := outcomes[seq]
		seq++
		for r := 1; r < runs; r++ {
			cand := outcomes[seq]
			seq++
			if lastValue(cand.ObjectiveTrace) < lastValue(best.ObjectiveTrace) {
				best = cand
			}
		}
		c.log.Info("cluster count fitted", logging.Fields{
			"clusters":  k,
			"objective": lastValue(best.ObjectiveTrace),
			"status":    best.Status.String(),
		})
		results = append(results, best)
	}

	c.log.Info("fuzzy clustering complete", logging.Fields{
		"model": c.cfg.Model.String(),
		"init":  c.cfg.Init.String(),
	})
	return results, nil
}

// runOnce executes one initialization plus one full optimization run and
// scores its terminal state.
func (c *Clusterer) runOnce(data [][]float64, k, run int, rng *rand.Rand, logger logging.Logger, canceled *atomic.Bool) (RunResult, error) {
	centers := c.initialCenters(data, k, rng)
	membership := c.bootstrapMembership(centers, data, rng)

	report := func(iter int, obj float64) bool {
		if canceled.Load() {
			return false
		}
		if c.cfg.Progress != nil && !c.cfg.Progress(Progress{
			Clusters:  k,
			Run:       run,
			Iteration: iter,
			Objective: obj,
		}) {
			canceled.Store(true)
			return false
		}
		return true
	}

	state, err := c.optimize(data, centers, membership, rng, logger, report)
	if err != nil {
		return RunResult{}, err
	}

	labels := hardLabels(state.membership)
	return RunResult{
		Clusters:       k,
		Membership:     state.membership,
		Centers:        state.centers,
		CenterStd:      centerStd(data, labels, k),
		Labels:         labels,
		ObjectiveTrace: state.trace,
		VRC:            varianceRatio(data, labels, state.centers),
		NCE:            normalizedClassEntropy(state.membership),
		XBI:            xieBeni(state.membership, state.distances, state.centers, c.cfg.FuzzinessExponent),
		Status:         state.status,
		Iterations:     len(state.trace),
	}, nil
}

// validateData checks the sample matrix and any supplied initialization
// matrices against it. All failures surface here, before any optimization
// starts.
func (c *Clusterer) validateData(data [][]float64) error {
	if len(data) == 0 {
		return fmt.Errorf("fuzzy: empty sample matrix")
	}
	nFeat := len(data[0])
	if nFeat == 0 {
		return fmt.Errorf("fuzzy: sample matrix has no features")
	}
	for s, row := range data {
		if len(row) != nFeat {
			return fmt.Errorf("fuzzy: ragged sample matrix: row %d has %d features, want %d", s, len(row), nFeat)
		}
		for f, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("fuzzy: non-finite value %g at sample %d, feature %d", v, s, f)
			}
		}
	}
	if c.cfg.MaxClusters > len(data) {
		return fmt.Errorf("fuzzy: MaxClusters (%d) cannot exceed the number of samples (%d)", c.cfg.MaxClusters, len(data))
	}

	if c.cfg.Init != InitSupplied {
		return nil
	}
	k := c.cfg.MinClusters
	if c.cfg.InitCenters != nil {
		if len(c.cfg.InitCenters) != k {
			return fmt.Errorf("fuzzy: InitCenters has %d rows, want %d clusters", len(c.cfg.InitCenters), k)
		}
		for j, row := range c.cfg.InitCenters {
			if len(row) != nFeat {
				return fmt.Errorf("fuzzy: InitCenters row %d has %d features, want %d", j, len(row), nFeat)
			}
		}
		return nil
	}
	if len(c.cfg.InitMembership) != k {
		return fmt.Errorf("fuzzy: InitMembership has %d rows, want %d clusters", len(c.cfg.InitMembership), k)
	}
	colSum := make([]float64, len(data))
	for j, row := range c.cfg.InitMembership {
		if len(row) != len(data) {
			return fmt.Errorf("fuzzy: InitMembership row %d has %d columns, want %d samples", j, len(row), len(data))
		}
		for s, u := range row {
			if u < 0 {
				return fmt.Errorf("fuzzy: negative membership %g at cluster %d, sample %d", u, j, s)
			}
			if math.IsNaN(u) || math.IsInf(u, 0) {
				return fmt.Errorf("fuzzy: non-finite membership %g at cluster %d, sample %d", u, j, s)
			}
			colSum[s] += u
		}
	}
	for s, sum := range colSum {
		if sum == 0 {
			return fmt.Errorf("fuzzy: InitMembership column %d sums to zero and cannot be normalized", s)
		}
	}
	return nil
}

func lastValue(trace []float64) float64 {
	return trace[len(trace)-1]
}
