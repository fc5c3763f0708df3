package orchestrator

import (
	"context"
	"testing"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/evmaddr"
	"evm-token-lab/internal/storage/memory"
)

const (
	testToken = "0x00000000000000000000000000000000000000aa"
	testPool  = "0x0000000000000000000000000000000000000c01"
	srcAddr   = "0x0000000000000000000000000000000000000001"
	member1   = "0x0000000000000000000000000000000000000002"
	member2   = "0x0000000000000000000000000000000000000003"
)

func transferRecord(index int, block int64, txHash, from, to string, value float64) *domain.TimelineRecord {
	return &domain.TimelineRecord{
		TokenAddress:  testToken,
		TimelineIndex: index,
		BlockNumber:   block,
		TxHash:        txHash,
		EventType:     domain.EventTransfer,
		FromAddress:   from,
		ToAddress:     to,
		Value:         value,
	}
}

func swapRecord(index int, block int64, txHash, from, to string, value float64) *domain.TimelineRecord {
	return &domain.TimelineRecord{
		TokenAddress:  testToken,
		TimelineIndex: index,
		BlockNumber:   block,
		TxHash:        txHash,
		EventType:     "SwapV2",
		FromAddress:   from,
		ToAddress:     to,
		PairAddress:   testPool,
		Value:         value,
	}
}

// coordinatedTimeline builds a funding source, two funded members, lockstep
// buys in one block and lockstep sells in a later block.
func coordinatedTimeline() []*domain.TimelineRecord {
	return []*domain.TimelineRecord{
		transferRecord(0, 1, "0xfund0", evmaddr.Zero, srcAddr, 10000),
		transferRecord(1, 2, "0xfund1", srcAddr, member1, 1000),
		transferRecord(2, 3, "0xfund2", srcAddr, member2, 1000),
		swapRecord(3, 10, "0xbuy1", testPool, member1, 500),
		swapRecord(4, 10, "0xbuy2", testPool, member2, 500),
		swapRecord(5, 20, "0xsell1", member1, testPool, 480),
		swapRecord(6, 20, "0xsell2", member2, testPool, 480),
	}
}

func TestOrchestrator_AnalyzeCoordinatedCluster(t *testing.T) {
	o := New(Options{ExcludedAddresses: []string{testPool}})

	result, err := o.Analyze(context.Background(), testToken, coordinatedTimeline())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.Cluster == nil {
		t.Fatal("expected cluster result")
	}
	if result.Cluster.ConfidenceLevel != domain.ConfidenceHigh {
		t.Errorf("expected High confidence, got %s (%s)",
			result.Cluster.ConfidenceLevel, result.Cluster.Reasoning)
	}
	if result.Cluster.TokenAddress != testToken {
		t.Errorf("cluster missing token address: %s", result.Cluster.TokenAddress)
	}

	members := make(map[string]bool, len(result.Cluster.Addresses))
	for _, a := range result.Cluster.Addresses {
		members[a] = true
	}
	for _, want := range []string{srcAddr, member1, member2} {
		if !members[want] {
			t.Errorf("expected %s in cluster, got %v", want, result.Cluster.Addresses)
		}
	}

	// The swaps become classified records with initiators
	classifiedTypes := make(map[string]int)
	for _, r := range result.AggregatedTimeline {
		if r.TransactionType != "" {
			classifiedTypes[r.TransactionType]++
		}
	}
	if classifiedTypes[domain.TxTypeBuy] != 2 || classifiedTypes[domain.TxTypeSell] != 2 {
		t.Errorf("expected 2 buys and 2 sells, got %v", classifiedTypes)
	}
}

func TestOrchestrator_AnalyzeSetsPatternTokenAddress(t *testing.T) {
	o := New(Options{ExcludedAddresses: []string{testPool}})

	result, err := o.Analyze(context.Background(), testToken, coordinatedTimeline())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(result.Patterns) == 0 {
		t.Fatal("expected coordination pattern from the lockstep window")
	}
	for _, p := range result.Patterns {
		if p.TokenAddress != testToken {
			t.Errorf("pattern missing token address: %+v", p)
		}
	}

	var coordinated bool
	for _, p := range result.Patterns {
		if p.PatternType == domain.PatternCoordinated {
			coordinated = true
		}
	}
	if !coordinated {
		t.Errorf("expected a coordinated_trading report, got %v", result.Patterns)
	}
}

func TestOrchestrator_AnalyzePersistsResults(t *testing.T) {
	timelineStore := memory.NewTimelineStore()
	clusterStore := memory.NewClusterResultStore()
	patternStore := memory.NewPatternStore()

	o := New(Options{
		TimelineStore:     timelineStore,
		ClusterStore:      clusterStore,
		PatternStore:      patternStore,
		ExcludedAddresses: []string{testPool},
	})

	ctx := context.Background()
	if _, err := o.Analyze(ctx, testToken, coordinatedTimeline()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	stored, err := timelineStore.GetByToken(ctx, testToken)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if len(stored) == 0 {
		t.Error("aggregated timeline not persisted")
	}

	clusterResult, err := clusterStore.GetLatest(ctx, testToken)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if clusterResult.CreatedAt == 0 {
		t.Error("cluster result persisted without created_at")
	}

	reports, err := patternStore.GetByToken(ctx, testToken)
	if err != nil {
		t.Fatalf("GetByToken patterns: %v", err)
	}
	if len(reports) == 0 {
		t.Error("pattern reports not persisted")
	}
	for _, r := range reports {
		if r.CreatedAt == 0 {
			t.Errorf("report persisted without created_at: %+v", r)
		}
	}
}

func TestOrchestrator_AnalyzeEmptyTimeline(t *testing.T) {
	o := New(Options{})

	result, err := o.Analyze(context.Background(), testToken, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.Cluster == nil {
		t.Fatal("expected a cluster result even for an empty timeline")
	}
	if result.Cluster.ConfidenceLevel != domain.ConfidenceNone {
		t.Errorf("expected None confidence, got %s", result.Cluster.ConfidenceLevel)
	}
	if len(result.Patterns) != 0 {
		t.Errorf("expected no patterns, got %d", len(result.Patterns))
	}
}

func TestOrchestrator_ReanalysisIsIdempotent(t *testing.T) {
	o := New(Options{ExcludedAddresses: []string{testPool}})
	ctx := context.Background()

	first, err := o.Analyze(ctx, testToken, coordinatedTimeline())
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}

	second, err := o.Analyze(ctx, testToken, first.AggregatedTimeline)
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}

	if second.Cluster.ConfidenceLevel != first.Cluster.ConfidenceLevel {
		t.Errorf("confidence changed on reanalysis: %s vs %s",
			first.Cluster.ConfidenceLevel, second.Cluster.ConfidenceLevel)
	}
	if len(second.AggregatedTimeline) != len(first.AggregatedTimeline) {
		t.Errorf("timeline changed on reanalysis: %d vs %d",
			len(first.AggregatedTimeline), len(second.AggregatedTimeline))
	}
}

func TestOrchestrator_LockstepSurvivesAggregation(t *testing.T) {
	// member1 splits one buy across two same-transaction swap rows whose
	// per-row values match member2's single buy. Merging same-initiator
	// rows before graph construction would sum member1's values and hide
	// the lockstep.
	timeline := []*domain.TimelineRecord{
		swapRecord(0, 10, "0xt1", testPool, member1, 100),
		swapRecord(1, 10, "0xt1", testPool, member1, 100),
		swapRecord(2, 10, "0xt2", testPool, member2, 100),
	}

	o := New(Options{ExcludedAddresses: []string{testPool}})
	result, err := o.Analyze(context.Background(), testToken, timeline)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Cluster.ConfidenceLevel == domain.ConfidenceNone {
		t.Fatalf("expected a cluster from same-value swap lockstep, got None (%s)", result.Cluster.Message)
	}
	members := make(map[string]bool)
	for _, a := range result.Cluster.Addresses {
		members[a] = true
	}
	if !members[member1] || !members[member2] {
		t.Errorf("expected both traders in the cluster, got %v", result.Cluster.Addresses)
	}
}
