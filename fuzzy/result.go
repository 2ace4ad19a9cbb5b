package fuzzy

// Status reports how an optimization run terminated
type Status int

const (
	// StatusConverged means the relative objective improvement dropped
	// below the termination threshold
	StatusConverged Status = iota

	// StatusRolledBack means the objective increased and the run was
	// restored to the previous iteration's state
	StatusRolledBack

	// StatusMaxIterations means the iteration budget ran out before
	// convergence; not an error, the result is still valid
	StatusMaxIterations
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusRolledBack:
		return "rolled back"
	case StatusMaxIterations:
		return "max iterations reached"
	default:
		return "unknown"
	}
}

// RunResult contains the terminal state of the best optimization run for
// one cluster count.
type RunResult struct {
	// Clusters is the cluster count this result belongs to
	Clusters int `json:"clusters"`

	// Membership is the clusters x samples grade-of-membership matrix.
	// Every column sums to 1 and all entries lie in [0, 1].
	Membership [][]float64 `json:"membership"`

	// Centers holds one representative point per cluster
	// (clusters x features)
	Centers [][]float64 `json:"centers"`

	// CenterStd is the per-cluster, per-feature standard deviation of the
	// hard-assigned samples (clusters x features)
	CenterStd [][]float64 `json:"center_std"`

	// Labels is the hard arg-max cluster assignment per sample
	Labels []int `json:"labels"`

	// ObjectiveTrace holds one objective-function value per kept
	// iteration; its last entry is the terminal objective
	ObjectiveTrace []float64 `json:"objective_trace"`

	// VRC is the variance ratio criterion (higher is better separated)
	VRC float64 `json:"vrc"`

	// NCE is the normalized class entropy in [0, 1]; 0 is fully crisp,
	// 1 maximally fuzzy
	NCE float64 `json:"nce"`

	// XBI is the Xie-Beni index (lower is better separated)
	XBI float64 `json:"xbi"`

	// Status reports how the run terminated
	Status Status `json:"status"`

	// Iterations is the number of kept iterations (len of ObjectiveTrace)
	Iterations int `json:"iterations"`
}
