package domain

// Confidence tiers for an identified owner cluster.
const (
	ConfidenceNone   = "None"
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// ClusterResult is the final owner-cluster verdict for one token.
// Corresponds to cluster_results table in PostgreSQL.
type ClusterResult struct {
	ID              int64                // BIGSERIAL primary key
	TokenAddress    string               // analyzed token contract, lowercase hex
	ClusterID       string               // stable identifier for the cluster
	Addresses       []string             // sorted, deduplicated cluster members
	ConfidenceLevel string               // None | Low | Medium | High
	Reasoning       string               // concatenated scoring justifications
	Message         string               // set when no cluster was identified
	ActiveTraders   []*ActiveTraderLinks // secondary analysis, informational
	CreatedAt       int64                // record creation timestamp (ms)
}

// ActiveTraderLinks reports how one high-activity trader outside the cluster
// relates to cluster members.
type ActiveTraderLinks struct {
	Address                  string // trader address, lowercase hex
	SwapCount                int    // swaps initiated by this address
	FundedByCluster          bool   // received a funding edge from a cluster member
	FundedCluster            bool   // extended a funding edge to a cluster member
	CoordinatedWithCluster   bool   // shares a coordinated_swap edge with the cluster
	CoordinatedActionDetails string // action label of the first coordinated link
}
