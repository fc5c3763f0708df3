package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"evm-token-lab/internal/cluster"
	"evm-token-lab/internal/normalization"
	"evm-token-lab/internal/orchestrator"
	"evm-token-lab/internal/patterns"
	"evm-token-lab/internal/reporting"
	"evm-token-lab/internal/storage"
	"evm-token-lab/internal/storage/memory"
	"evm-token-lab/internal/storage/migrations"
	pgstore "evm-token-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	timelinePath := flag.String("timeline", "", "Path to the normalized timeline TSV file")
	token := flag.String("token", "", "Token contract address under analysis")
	pair := flag.String("pair", "", "Pool/pair contract address (excluded from graph analysis)")
	excluded := flag.String("excluded", "", "Comma-separated extra addresses to exclude (routers, bridges)")
	blockWindow := flag.Int64("block-window", 0, "Block window for coordination detection (default 100)")
	volumeThreshold := flag.Float64("volume-threshold", 0, "Pair volume threshold for pump detection (default 1000000)")
	seed := flag.Uint64("seed", cluster.DefaultSeed, "Random seed for community detection")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL DSN for persisting results (empty keeps results in memory)")
	outDir := flag.String("out-dir", "", "Directory for report files (empty prints JSON to stdout)")
	verbose := flag.Bool("verbose", false, "Verbose logging")

	flag.Parse()

	logger := log.New(os.Stdout, "[analyze] ", log.LstdFlags)

	if *timelinePath == "" {
		logger.Fatal("--timeline is required")
	}
	if *token == "" {
		logger.Fatal("--token is required")
	}

	if err := run(logger, *timelinePath, *token, *pair, *excluded, *blockWindow, *volumeThreshold, *seed, *postgresDSN, *outDir, *verbose); err != nil {
		if errors.Is(err, normalization.ErrMalformedInput) {
			logger.Fatalf("Malformed input: %v", err)
		}
		logger.Fatalf("Error: %v", err)
	}
}

func run(
	logger *log.Logger,
	timelinePath, token, pair, excludedList string,
	blockWindow int64,
	volumeThreshold float64,
	seed uint64,
	postgresDSN string,
	outDir string,
	verbose bool,
) error {
	ctx := context.Background()

	// Load and parse the timeline
	f, err := os.Open(timelinePath)
	if err != nil {
		return fmt.Errorf("open timeline file: %w", err)
	}
	defer f.Close()

	timeline, err := normalization.ParseTimeline(f, token)
	if err != nil {
		return err
	}
	logger.Printf("Loaded %d timeline records from %s", len(timeline), timelinePath)

	// Assemble exclusions
	var excludedAddrs []string
	if pair != "" {
		excludedAddrs = append(excludedAddrs, pair)
	}
	for _, addr := range strings.Split(excludedList, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			excludedAddrs = append(excludedAddrs, addr)
		}
	}

	partitioner := cluster.NewLouvainPartitioner()
	partitioner.Seed = seed

	var clusterStore storage.ClusterResultStore = memory.NewClusterResultStore()
	var patternStore storage.PatternStore = memory.NewPatternStore()
	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("apply postgres migrations: %w", err)
		}
		clusterStore = pgstore.NewClusterResultStore(pool)
		patternStore = pgstore.NewPatternStore(pool)
		logger.Printf("Persisting results to PostgreSQL")
	}

	orch := orchestrator.New(orchestrator.Options{
		TimelineStore: memory.NewTimelineStore(),
		ClusterStore:  clusterStore,
		PatternStore:  patternStore,
		Partitioner:   partitioner,
		PatternConfig: patterns.Config{
			BlockWindow:     blockWindow,
			VolumeThreshold: volumeThreshold,
		},
		ExcludedAddresses: excludedAddrs,
		Verbose:           verbose,
	})

	result, err := orch.Analyze(ctx, token, timeline)
	if err != nil {
		return err
	}

	for _, alert := range result.Alerts {
		logger.Printf("Coordination alert: tx %s %s by %s",
			alert.TxHash, alert.TransactionType, strings.Join(alert.Initiators, ", "))
	}

	clusterJSON, err := reporting.RenderClusterJSON(result.Cluster)
	if err != nil {
		return err
	}

	if outDir == "" {
		fmt.Println(clusterJSON)
		return nil
	}

	// Write the full report set
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	patternsJSON, err := reporting.RenderPatternsJSON(result.Patterns)
	if err != nil {
		return err
	}

	report := reporting.NewGenerator().Generate(token, result.AggregatedTimeline, result.Cluster, result.Patterns)

	files := map[string]string{
		"cluster.json":       clusterJSON,
		"patterns.json":      patternsJSON,
		"timeline_final.tsv": reporting.RenderTimelineTSV(result.AggregatedTimeline),
		"report.md":          reporting.RenderMarkdown(report),
	}
	for name, content := range files {
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		logger.Printf("Wrote %s", path)
	}

	logger.Printf("Analysis complete: confidence=%s members=%d patterns=%d (%s)",
		result.Cluster.ConfidenceLevel, len(result.Cluster.Addresses), len(result.Patterns),
		time.Now().Format(time.RFC3339))

	return nil
}
