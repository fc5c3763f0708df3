package balances

import (
	"context"
	"fmt"
	"sort"
)

// HolderBalance is one address's share of the token.
type HolderBalance struct {
	Address string
	Balance float64
}

// Report compares the cluster's aggregate holdings against the pool and the
// total supply.
type Report struct {
	TokenAddress    string
	ClusterBalance  float64
	PoolBalance     float64
	TotalSupply     float64
	ClusterToPool   float64 // cluster balance / pool balance, 0 when pool holds nothing
	ClusterToSupply float64 // cluster balance / total supply, 0 when supply unknown
	Holders         []HolderBalance
}

// BuildReport fetches balances for every cluster member plus the pool and
// assembles the comparative report. Holders are ordered by balance
// descending.
func BuildReport(ctx context.Context, src Source, tokenAddress, poolAddress string, clusterAddrs []string) (*Report, error) {
	report := &Report{TokenAddress: tokenAddress}

	for _, addr := range clusterAddrs {
		bal, err := src.TokenBalance(ctx, tokenAddress, addr)
		if err != nil {
			return nil, fmt.Errorf("cluster member %s: %w", addr, err)
		}
		report.ClusterBalance += bal
		report.Holders = append(report.Holders, HolderBalance{Address: addr, Balance: bal})
	}
	sort.Slice(report.Holders, func(i, j int) bool {
		if report.Holders[i].Balance != report.Holders[j].Balance {
			return report.Holders[i].Balance > report.Holders[j].Balance
		}
		return report.Holders[i].Address < report.Holders[j].Address
	})

	pool, err := src.TokenBalance(ctx, tokenAddress, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", poolAddress, err)
	}
	report.PoolBalance = pool

	supply, err := src.TotalSupply(ctx, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("total supply: %w", err)
	}
	report.TotalSupply = supply

	if report.PoolBalance > 0 {
		report.ClusterToPool = report.ClusterBalance / report.PoolBalance
	}
	if report.TotalSupply > 0 {
		report.ClusterToSupply = report.ClusterBalance / report.TotalSupply
	}
	return report, nil
}
