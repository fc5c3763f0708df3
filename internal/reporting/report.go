package reporting

import (
	"time"

	"evm-token-lab/internal/domain"
)

// Report represents the full analysis report for one token.
type Report struct {
	// Metadata
	TokenAddress string
	GeneratedAt  time.Time

	// Timeline Summary
	TimelineSummary TimelineSummary

	// Cluster result
	Cluster *domain.ClusterResult

	// Pattern reports (sorted by suspicion score descending)
	Patterns []*domain.PatternReport
}

// TimelineSummary describes the classified timeline.
type TimelineSummary struct {
	TotalRecords     int
	TransferCount    int
	BlockRangeStart  int64
	BlockRangeEnd    int64
	TypeCounts       []TypeCountRow // sorted by transaction type
	UniqueInitiators int
}

// TypeCountRow counts timeline records by transaction type.
type TypeCountRow struct {
	TransactionType string
	Count           int
	TotalValue      float64
}

// ActiveTraderRow is a rendered secondary-analysis row.
type ActiveTraderRow struct {
	Address                string
	SwapCount              int
	FundedByCluster        bool
	FundedCluster          bool
	CoordinatedWithCluster bool
	Details                string
}
