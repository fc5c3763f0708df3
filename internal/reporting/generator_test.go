package reporting

import (
	"testing"
	"time"

	"evm-token-lab/internal/domain"
)

const testToken = "0x00000000000000000000000000000000000000aa"

func sampleTimeline() []*domain.TimelineRecord {
	return []*domain.TimelineRecord{
		{
			BlockNumber: 100, EventType: domain.EventTransfer,
			FromAddress: "0xa1", ToAddress: "0xb1", Value: 50,
		},
		{
			BlockNumber: 110, EventType: "SwapV2", TransactionType: domain.TxTypeBuy,
			FromAddress: "0xp1", ToAddress: "0xb1", Value: 500, Initiators: []string{"0xb1"},
		},
		{
			BlockNumber: 120, EventType: "SwapV2", TransactionType: domain.TxTypeBuy,
			FromAddress: "0xp1", ToAddress: "0xc1", Value: 300, Initiators: []string{"0xc1"},
		},
		{
			BlockNumber: 130, EventType: "SwapV2", TransactionType: domain.TxTypeSell,
			FromAddress: "0xb1", ToAddress: "0xp1", Value: 450, Initiators: []string{"0xb1"},
		},
	}
}

func TestGenerate_Metadata(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGenerator().WithClock(func() time.Time { return fixed })

	report := g.Generate(testToken, sampleTimeline(), nil, nil)

	if report.TokenAddress != testToken {
		t.Errorf("expected token %s, got %s", testToken, report.TokenAddress)
	}
	if !report.GeneratedAt.Equal(fixed) {
		t.Errorf("expected fixed clock %v, got %v", fixed, report.GeneratedAt)
	}
}

func TestSummarizeTimeline(t *testing.T) {
	summary := summarizeTimeline(sampleTimeline())

	if summary.TotalRecords != 4 {
		t.Errorf("expected 4 records, got %d", summary.TotalRecords)
	}
	if summary.TransferCount != 1 {
		t.Errorf("expected 1 plain transfer, got %d", summary.TransferCount)
	}
	if summary.BlockRangeStart != 100 || summary.BlockRangeEnd != 130 {
		t.Errorf("expected block range 100-130, got %d-%d",
			summary.BlockRangeStart, summary.BlockRangeEnd)
	}
	if summary.UniqueInitiators != 2 {
		t.Errorf("expected 2 unique initiators, got %d", summary.UniqueInitiators)
	}

	// BUY, SELL, UNCLASSIFIED sorted by type
	if len(summary.TypeCounts) != 3 {
		t.Fatalf("expected 3 type rows, got %d", len(summary.TypeCounts))
	}
	if summary.TypeCounts[0].TransactionType != domain.TxTypeBuy {
		t.Errorf("expected BUY first, got %s", summary.TypeCounts[0].TransactionType)
	}
	if summary.TypeCounts[0].Count != 2 || summary.TypeCounts[0].TotalValue != 800 {
		t.Errorf("wrong BUY row: %+v", summary.TypeCounts[0])
	}
	if summary.TypeCounts[2].TransactionType != "UNCLASSIFIED" {
		t.Errorf("expected UNCLASSIFIED last, got %s", summary.TypeCounts[2].TransactionType)
	}
}

func TestSummarizeTimeline_Empty(t *testing.T) {
	summary := summarizeTimeline(nil)

	if summary.TotalRecords != 0 {
		t.Errorf("expected 0 records, got %d", summary.TotalRecords)
	}
	if summary.BlockRangeStart != 0 || summary.BlockRangeEnd != 0 {
		t.Errorf("expected zero block range, got %d-%d",
			summary.BlockRangeStart, summary.BlockRangeEnd)
	}
	if len(summary.TypeCounts) != 0 {
		t.Errorf("expected no type rows, got %v", summary.TypeCounts)
	}
}

func TestActiveTraderRows(t *testing.T) {
	cluster := &domain.ClusterResult{
		ActiveTraders: []*domain.ActiveTraderLinks{
			{
				Address:                  "0xd1",
				SwapCount:                9,
				FundedByCluster:          true,
				CoordinatedWithCluster:   true,
				CoordinatedActionDetails: "BUY of 500 at block 100 with 2 others",
			},
		},
	}

	rows := activeTraderRows(cluster)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Address != "0xd1" || row.SwapCount != 9 {
		t.Errorf("wrong row: %+v", row)
	}
	if !row.FundedByCluster || row.FundedCluster || !row.CoordinatedWithCluster {
		t.Errorf("link flags not carried over: %+v", row)
	}
	if row.Details != cluster.ActiveTraders[0].CoordinatedActionDetails {
		t.Errorf("details not carried over: %s", row.Details)
	}

	if rows := activeTraderRows(nil); rows != nil {
		t.Errorf("expected nil for nil cluster, got %v", rows)
	}
}
