package reporting

import (
	"sort"
	"time"

	"evm-token-lab/internal/domain"
)

// Generator assembles reports from analysis output.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds a report from the classified timeline, cluster result and patterns.
func (g *Generator) Generate(
	tokenAddress string,
	timeline []*domain.TimelineRecord,
	cluster *domain.ClusterResult,
	patterns []*domain.PatternReport,
) *Report {
	return &Report{
		TokenAddress:    tokenAddress,
		GeneratedAt:     g.now(),
		TimelineSummary: summarizeTimeline(timeline),
		Cluster:         cluster,
		Patterns:        patterns,
	}
}

// summarizeTimeline computes the timeline summary section.
func summarizeTimeline(timeline []*domain.TimelineRecord) TimelineSummary {
	summary := TimelineSummary{TotalRecords: len(timeline)}
	if len(timeline) == 0 {
		return summary
	}

	summary.BlockRangeStart = timeline[0].BlockNumber
	summary.BlockRangeEnd = timeline[0].BlockNumber

	typeCounts := make(map[string]*TypeCountRow)
	initiators := make(map[string]struct{})

	for _, rec := range timeline {
		if rec.BlockNumber < summary.BlockRangeStart {
			summary.BlockRangeStart = rec.BlockNumber
		}
		if rec.BlockNumber > summary.BlockRangeEnd {
			summary.BlockRangeEnd = rec.BlockNumber
		}
		if rec.EventType == domain.EventTransfer {
			summary.TransferCount++
		}

		txType := rec.TransactionType
		if txType == "" {
			txType = "UNCLASSIFIED"
		}
		row := typeCounts[txType]
		if row == nil {
			row = &TypeCountRow{TransactionType: txType}
			typeCounts[txType] = row
		}
		row.Count++
		row.TotalValue += rec.Value

		for _, addr := range rec.Initiators {
			initiators[addr] = struct{}{}
		}
	}

	summary.UniqueInitiators = len(initiators)
	for _, row := range typeCounts {
		summary.TypeCounts = append(summary.TypeCounts, *row)
	}
	sort.Slice(summary.TypeCounts, func(i, j int) bool {
		return summary.TypeCounts[i].TransactionType < summary.TypeCounts[j].TransactionType
	})

	return summary
}

// activeTraderRows flattens the cluster's secondary analysis for rendering.
func activeTraderRows(cluster *domain.ClusterResult) []ActiveTraderRow {
	if cluster == nil {
		return nil
	}

	rows := make([]ActiveTraderRow, 0, len(cluster.ActiveTraders))
	for _, trader := range cluster.ActiveTraders {
		rows = append(rows, ActiveTraderRow{
			Address:                trader.Address,
			SwapCount:              trader.SwapCount,
			FundedByCluster:        trader.FundedByCluster,
			FundedCluster:          trader.FundedCluster,
			CoordinatedWithCluster: trader.CoordinatedWithCluster,
			Details:                trader.CoordinatedActionDetails,
		})
	}
	return rows
}
