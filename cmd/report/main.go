package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"evm-token-lab/internal/balances"
	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/ethrpc"
	pgstore "evm-token-lab/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	// Parse flags
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("EVM_RPC_ENDPOINT"), "EVM JSON-RPC HTTP endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clusterFile := flag.String("cluster-file", "", "Cluster JSON file (alternative to --postgres-dsn)")
	token := flag.String("token", "", "Token contract address")
	pair := flag.String("pair", "", "Pool/pair contract address")
	decimals := flag.Int("decimals", 18, "Token decimals")
	flag.Parse()

	ctx := context.Background()

	if *rpcEndpoint == "" {
		fmt.Fprintln(os.Stderr, "Error: --rpc-endpoint is required")
		os.Exit(1)
	}
	if *token == "" || *pair == "" {
		fmt.Fprintln(os.Stderr, "Error: --token and --pair are required")
		os.Exit(1)
	}
	if *clusterFile == "" && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: provide --cluster-file or --postgres-dsn to locate the cluster")
		os.Exit(1)
	}

	// Resolve the cluster member list
	clusterAddrs, err := loadClusterAddresses(ctx, *postgresDSN, *clusterFile, *token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading cluster: %v\n", err)
		os.Exit(1)
	}
	if len(clusterAddrs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: cluster has no member addresses")
		os.Exit(1)
	}

	// Fetch on-chain balances
	client := ethrpc.NewHTTPClient(*rpcEndpoint)
	source := balances.NewRPCSource(client, *decimals)

	report, err := balances.BuildReport(ctx, source, *token, *pair, clusterAddrs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building balance report: %v\n", err)
		os.Exit(1)
	}

	printReport(report)
}

// loadClusterAddresses reads cluster members from PostgreSQL (latest result
// for the token) or from a cluster JSON file.
func loadClusterAddresses(ctx context.Context, postgresDSN, clusterFile, token string) ([]string, error) {
	if clusterFile != "" {
		data, err := os.ReadFile(clusterFile)
		if err != nil {
			return nil, fmt.Errorf("read cluster file: %w", err)
		}
		var parsed struct {
			Addresses []string `json:"addresses"`
		}
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse cluster file: %w", err)
		}
		return parsed.Addresses, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	store := pgstore.NewClusterResultStore(pool)
	result, err := store.GetLatest(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load latest cluster result: %w", err)
	}
	if result.ConfidenceLevel == domain.ConfidenceNone {
		return nil, fmt.Errorf("latest result for %s identified no cluster", token)
	}
	return result.Addresses, nil
}

// printReport renders the comparative balance report to stdout.
func printReport(r *balances.Report) {
	fmt.Printf("Token: %s\n\n", r.TokenAddress)
	fmt.Printf("Cluster balance:  %18.6f\n", r.ClusterBalance)
	fmt.Printf("Pool balance:     %18.6f\n", r.PoolBalance)
	fmt.Printf("Total supply:     %18.6f\n", r.TotalSupply)
	fmt.Printf("Cluster / pool:   %17.2f%%\n", r.ClusterToPool*100)
	fmt.Printf("Cluster / supply: %17.2f%%\n", r.ClusterToSupply*100)
	fmt.Println()
	fmt.Println("Cluster member balances:")
	fmt.Println(strings.Repeat("-", 64))
	for _, h := range r.Holders {
		fmt.Printf("%-44s %18.6f\n", h.Address, h.Balance)
	}
}
