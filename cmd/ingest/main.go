package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/ethrpc"
	"evm-token-lab/internal/ingestion"
	"evm-token-lab/internal/normalization"
	"evm-token-lab/internal/observability"
	"evm-token-lab/internal/storage"
	chstore "evm-token-lab/internal/storage/clickhouse"
	"evm-token-lab/internal/storage/memory"
	"evm-token-lab/internal/storage/migrations"
)

func main() {
	// .env is optional; flags take precedence over environment values.
	_ = godotenv.Load()

	// Parse flags
	mode := flag.String("mode", "backfill", "Ingestion mode: backfill or live")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("EVM_RPC_ENDPOINT"), "EVM JSON-RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("EVM_WS_ENDPOINT"), "EVM WebSocket endpoint")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	token := flag.String("token", "", "Token contract address")
	pair := flag.String("pair", "", "Pool/pair contract address")
	tokenPosition := flag.Int("token-position", 0, "Token slot in the pool: 0 or 1")
	fromBlock := flag.Int64("from-block", 0, "Start block for backfill")
	toBlock := flag.Int64("to-block", 0, "End block for backfill (0 = chain head)")
	token0Decimals := flag.Int("token0-decimals", 18, "Decimals of the pool's token0")
	token1Decimals := flag.Int("token1-decimals", 18, "Decimals of the pool's token1")
	flushInterval := flag.Duration("flush-interval", 30*time.Second, "Live mode store flush interval")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of ClickHouse")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *token == "" {
		logger.Fatal("--token is required")
	}
	if *pair == "" {
		logger.Fatal("--pair is required")
	}
	if *tokenPosition != 0 && *tokenPosition != 1 {
		logger.Fatal("--token-position must be 0 or 1")
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	position := domain.Token0
	if *tokenPosition == 1 {
		position = domain.Token1
	}

	var err error
	switch *mode {
	case "backfill":
		err = runBackfill(ctx, logger, backfillOptions{
			rpcEndpoint:    *rpcEndpoint,
			clickhouseDSN:  *clickhouseDSN,
			token:          *token,
			pair:           *pair,
			position:       position,
			fromBlock:      *fromBlock,
			toBlock:        *toBlock,
			token0Decimals: *token0Decimals,
			token1Decimals: *token1Decimals,
			useMemory:      *useMemory,
		})
	case "live":
		err = runLive(ctx, logger, liveOptions{
			wsEndpoint:    *wsEndpoint,
			clickhouseDSN: *clickhouseDSN,
			token:         *token,
			pair:          *pair,
			position:      position,
			flushInterval: *flushInterval,
			useMemory:     *useMemory,
		})
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// newTimelineStore opens the configured timeline store, running migrations
// for ClickHouse. The returned closer is a no-op for the memory store.
func newTimelineStore(ctx context.Context, clickhouseDSN string, useMemory bool) (storage.TimelineStore, func(), error) {
	if useMemory {
		return memory.NewTimelineStore(), func() {}, nil
	}
	if clickhouseDSN == "" {
		return nil, nil, fmt.Errorf("--clickhouse-dsn is required (use --use-memory for in-memory storage)")
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}
	store := chstore.NewTimelineStore(conn)
	return store, func() { conn.Close() }, nil
}

type backfillOptions struct {
	rpcEndpoint    string
	clickhouseDSN  string
	token          string
	pair           string
	position       domain.TokenPosition
	fromBlock      int64
	toBlock        int64
	token0Decimals int
	token1Decimals int
	useMemory      bool
}

// runBackfill fetches historical logs over HTTP RPC and stores the
// normalized timeline.
func runBackfill(ctx context.Context, logger *log.Logger, opts backfillOptions) error {
	if opts.rpcEndpoint == "" {
		return fmt.Errorf("--rpc-endpoint is required for backfill mode")
	}

	client := ethrpc.NewHTTPClient(opts.rpcEndpoint)

	toBlock := opts.toBlock
	if toBlock == 0 {
		head, err := client.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("fetch chain head: %w", err)
		}
		toBlock = head
	}
	logger.Printf("Backfilling %s blocks %d to %d", opts.token, opts.fromBlock, toBlock)

	source := ingestion.NewRPCEventSource(client)
	source.Token0Decimals = opts.token0Decimals
	source.Token1Decimals = opts.token1Decimals

	transfers, err := source.FetchTransfers(ctx, opts.token, opts.fromBlock, toBlock)
	if err != nil {
		return fmt.Errorf("fetch transfers: %w", err)
	}
	observability.RecordTransferFetched(len(transfers))

	pairEvents, err := source.FetchPairEvents(ctx, opts.pair, opts.fromBlock, toBlock)
	if err != nil {
		return fmt.Errorf("fetch pair events: %w", err)
	}
	observability.RecordPairEventsFetched("swap", len(pairEvents.Swaps))
	observability.RecordPairEventsFetched("mint", len(pairEvents.Mints))
	observability.RecordPairEventsFetched("burn", len(pairEvents.Burns))

	logger.Printf("Fetched %d transfers, %d swaps, %d mints, %d burns",
		len(transfers), len(pairEvents.Swaps), len(pairEvents.Mints), len(pairEvents.Burns))

	builder := normalization.NewBuilder(opts.token, opts.position)
	timeline := builder.Build(transfers, pairEvents.Swaps, pairEvents.Mints, pairEvents.Burns)

	store, closeStore, err := newTimelineStore(ctx, opts.clickhouseDSN, opts.useMemory)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.InsertBulk(ctx, timeline); err != nil {
		return fmt.Errorf("store timeline: %w", err)
	}
	logger.Printf("Stored %d timeline records", len(timeline))

	return nil
}

type liveOptions struct {
	wsEndpoint    string
	clickhouseDSN string
	token         string
	pair          string
	position      domain.TokenPosition
	flushInterval time.Duration
	useMemory     bool
}

// runLive tails transfer and swap logs over WebSocket, flushing normalized
// batches to the store on an interval.
func runLive(ctx context.Context, logger *log.Logger, opts liveOptions) error {
	if opts.wsEndpoint == "" {
		return fmt.Errorf("--ws-endpoint is required for live mode")
	}

	store, closeStore, err := newTimelineStore(ctx, opts.clickhouseDSN, opts.useMemory)
	if err != nil {
		return err
	}
	defer closeStore()

	builder := normalization.NewBuilder(opts.token, opts.position)

	var (
		mu               sync.Mutex
		pendingTransfers []*domain.TransferEvent
		pendingSwaps     []*domain.SwapEvent
		nextIndex        int
	)

	flush := func() {
		mu.Lock()
		defer mu.Unlock()

		transfers := pendingTransfers
		swaps := pendingSwaps
		pendingTransfers = nil
		pendingSwaps = nil

		if len(transfers) == 0 && len(swaps) == 0 {
			return
		}
		timeline := builder.Build(transfers, swaps, nil, nil)
		// Offset indexes so successive batches extend the stored timeline.
		for _, rec := range timeline {
			rec.TimelineIndex += nextIndex
		}
		if err := store.InsertBulk(ctx, timeline); err != nil {
			logger.Printf("Flush failed, dropping batch: %v", err)
			return
		}
		nextIndex += len(timeline)
		logger.Printf("Flushed %d timeline records (%d transfers, %d swaps)",
			len(timeline), len(transfers), len(swaps))
	}

	ticker := time.NewTicker(opts.flushInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				flush()
			}
		}
	}()

	logger.Println("Starting live ingestion...")
	streamErr := ingestion.StreamEvents(ctx, opts.wsEndpoint, opts.token, opts.pair,
		func(t *domain.TransferEvent) {
			mu.Lock()
			pendingTransfers = append(pendingTransfers, t)
			mu.Unlock()
			observability.RecordTransferFetched(1)
		},
		func(s *domain.SwapEvent) {
			mu.Lock()
			pendingSwaps = append(pendingSwaps, s)
			mu.Unlock()
			observability.RecordPairEventsFetched("swap", 1)
		},
	)

	flush()
	return streamErr
}
