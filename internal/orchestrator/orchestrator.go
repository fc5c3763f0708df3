// Package orchestrator provides E2E analysis orchestration.
// It coordinates: classification → aggregation → graph → cluster → patterns
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"evm-token-lab/internal/classification"
	"evm-token-lab/internal/cluster"
	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/graph"
	"evm-token-lab/internal/observability"
	"evm-token-lab/internal/patterns"
	"evm-token-lab/internal/storage"
)

// Orchestrator coordinates the full analysis pipeline for one token.
// Flow: classify timeline → aggregate actions → build graph → identify cluster → detect patterns
type Orchestrator struct {
	// Stores (all optional; nil disables persistence)
	timelineStore storage.TimelineStore
	clusterStore  storage.ClusterResultStore
	patternStore  storage.PatternStore

	// Analysis components
	partitioner cluster.Partitioner
	patternCfg  patterns.Config

	// Options
	excludedAddresses []string
	verbose           bool
}

// Options for creating Orchestrator.
type Options struct {
	// Optional stores for persisting results
	TimelineStore storage.TimelineStore
	ClusterStore  storage.ClusterResultStore
	PatternStore  storage.PatternStore

	// Partitioner for community detection. Defaults to Louvain with a fixed seed.
	Partitioner cluster.Partitioner

	// Pattern detector configuration. Zero fields take defaults.
	PatternConfig patterns.Config

	// Infrastructure addresses excluded from graph and pattern analysis
	// (pools, routers). The token itself is always excluded.
	ExcludedAddresses []string

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	partitioner := opts.Partitioner
	if partitioner == nil {
		partitioner = cluster.NewLouvainPartitioner()
	}
	return &Orchestrator{
		timelineStore:     opts.TimelineStore,
		clusterStore:      opts.ClusterStore,
		patternStore:      opts.PatternStore,
		partitioner:       partitioner,
		patternCfg:        opts.PatternConfig,
		excludedAddresses: opts.ExcludedAddresses,
		verbose:           opts.Verbose,
	}
}

// Result contains the output of a full analysis run.
type Result struct {
	FilteredTimeline   []*domain.TimelineRecord
	AggregatedTimeline []*domain.TimelineRecord
	Alerts             []classification.CoordinationAlert
	Cluster            *domain.ClusterResult
	Patterns           []*domain.PatternReport
}

// Analyze runs the full pipeline over an already-normalized timeline.
// Phases:
//  1. Classify transactions (drops swap-internal transfers)
//  2. Aggregate same-transaction actions
//  3. Build the relationship graph
//  4. Partition and score the owner cluster
//  5. Detect manipulation patterns
func (o *Orchestrator) Analyze(ctx context.Context, tokenAddress string, timeline []*domain.TimelineRecord) (*Result, error) {
	result := &Result{}

	// Phase 1: Classification
	o.log("Phase 1: Classifying %d timeline records...", len(timeline))
	start := time.Now()
	classifier := classification.NewClassifier(tokenAddress)
	classified := classifier.Classify(timeline)
	result.FilteredTimeline = classified.Records
	result.Alerts = classified.Alerts
	for _, rec := range classified.Records {
		if rec.TransactionType != "" {
			observability.RecordClassification(rec.TransactionType)
		}
	}
	observability.RecordAnalysisPhase("classify", time.Since(start).Seconds())
	o.log("  %d records after filtering, %d coordination alerts", len(classified.Records), len(classified.Alerts))

	// Phase 2: Aggregation
	o.log("Phase 2: Aggregating same-transaction actions...")
	start = time.Now()
	result.AggregatedTimeline = classification.Aggregate(classified.Records)
	observability.RecordAnalysisPhase("aggregate", time.Since(start).Seconds())
	o.log("  %d records after aggregation", len(result.AggregatedTimeline))

	// Phase 3: Relationship graph
	o.log("Phase 3: Building relationship graph...")
	start = time.Now()
	excluded := append([]string{tokenAddress}, o.excludedAddresses...)
	// The graph reads the pre-aggregation rows: aggregation sums
	// same-initiator values, which would hide same-value swap lockstep.
	build := graph.Build(result.FilteredTimeline, excluded...)
	for _, edge := range build.Graph.Edges() {
		observability.RecordEdgeAdded(edge.Type)
	}
	observability.RecordAnalysisPhase("graph", time.Since(start).Seconds())
	o.log("  %d nodes, %d edges, %d sources", build.Graph.NodeCount(), build.Graph.EdgeCount(), len(build.Sources))

	// Phase 4: Cluster identification
	o.log("Phase 4: Identifying owner cluster...")
	start = time.Now()
	engine := cluster.NewEngine(o.partitioner)
	clusterResult := engine.Identify(build, tokenAddress)
	result.Cluster = clusterResult
	observability.RecordCluster(string(clusterResult.ConfidenceLevel))
	observability.RecordAnalysisPhase("cluster", time.Since(start).Seconds())
	o.log("  confidence=%s members=%d", clusterResult.ConfidenceLevel, len(clusterResult.Addresses))

	// Phase 5: Pattern detection
	o.log("Phase 5: Detecting manipulation patterns...")
	start = time.Now()
	detector := patterns.NewDetector(o.patternCfg, excluded...)
	result.Patterns = detector.DetectAll(result.AggregatedTimeline)
	for _, p := range result.Patterns {
		p.TokenAddress = tokenAddress
		observability.RecordPattern(p.PatternType)
	}
	observability.RecordAnalysisPhase("patterns", time.Since(start).Seconds())
	o.log("  %d patterns detected", len(result.Patterns))

	// Persist results when stores are configured.
	if err := o.persist(ctx, tokenAddress, result); err != nil {
		return nil, fmt.Errorf("persist results: %w", err)
	}

	return result, nil
}

// persist writes the analysis output to the configured stores.
func (o *Orchestrator) persist(ctx context.Context, tokenAddress string, result *Result) error {
	if o.timelineStore != nil && len(result.AggregatedTimeline) > 0 {
		err := o.timelineStore.InsertBulk(ctx, result.AggregatedTimeline)
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("store timeline: %w", err)
		}
	}

	if o.clusterStore != nil && result.Cluster != nil {
		if result.Cluster.CreatedAt == 0 {
			result.Cluster.CreatedAt = time.Now().UnixMilli()
		}
		err := o.clusterStore.Insert(ctx, result.Cluster)
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("store cluster result: %w", err)
		}
	}

	if o.patternStore != nil && len(result.Patterns) > 0 {
		now := time.Now().UnixMilli()
		for _, p := range result.Patterns {
			if p.CreatedAt == 0 {
				p.CreatedAt = now
			}
		}
		err := o.patternStore.InsertBulk(ctx, result.Patterns)
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("store pattern reports: %w", err)
		}
	}

	return nil
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
