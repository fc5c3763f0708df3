package cluster

// OutcomeKind tags the two ways a graph run can end before scoring.
type OutcomeKind int

const (
	// OutcomeFallback means no partition is available; the cluster is the
	// source-address set alone.
	OutcomeFallback OutcomeKind = iota
	// OutcomePartitioned means community detection produced candidate
	// communities to score.
	OutcomePartitioned
)

// Outcome is the explicit tagged result of the partitioning stage. The
// scorer branches on Kind instead of any ambient state.
type Outcome struct {
	Kind        OutcomeKind
	Sources     []string   // sorted source addresses, valid for both kinds
	Communities [][]string // candidate communities, Partitioned only
	Note        string     // extra reasoning, set when a partition failure forced the fallback
}
