// Package balances retrieves token balances for cluster members and compares
// cluster holdings against the pool and total supply.
package balances

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"evm-token-lab/internal/ethrpc"
)

// ERC-20 call selectors.
const (
	selectorBalanceOf   = "0x70a08231"
	selectorTotalSupply = "0x18160ddd"
)

// Source retrieves balances from external state.
type Source interface {
	// TokenBalance returns an address's balance of the token, decimal-adjusted.
	TokenBalance(ctx context.Context, tokenAddress, holder string) (float64, error)

	// TotalSupply returns the token's total supply, decimal-adjusted.
	TotalSupply(ctx context.Context, tokenAddress string) (float64, error)
}

// RPCSource implements Source over eth_call.
type RPCSource struct {
	client   *ethrpc.HTTPClient
	decimals int
}

// NewRPCSource creates a balance source. decimals adjusts raw amounts.
func NewRPCSource(client *ethrpc.HTTPClient, decimals int) *RPCSource {
	if decimals <= 0 {
		decimals = 18
	}
	return &RPCSource{client: client, decimals: decimals}
}

// Compile-time interface check.
var _ Source = (*RPCSource)(nil)

// TokenBalance calls balanceOf(holder).
func (s *RPCSource) TokenBalance(ctx context.Context, tokenAddress, holder string) (float64, error) {
	data := selectorBalanceOf + padAddress(holder)
	result, err := s.client.CallContract(ctx, tokenAddress, data, "latest")
	if err != nil {
		return 0, fmt.Errorf("balanceOf %s: %w", holder, err)
	}
	return parseAmount(result, s.decimals)
}

// TotalSupply calls totalSupply().
func (s *RPCSource) TotalSupply(ctx context.Context, tokenAddress string) (float64, error) {
	result, err := s.client.CallContract(ctx, tokenAddress, selectorTotalSupply, "latest")
	if err != nil {
		return 0, fmt.Errorf("totalSupply: %w", err)
	}
	return parseAmount(result, s.decimals)
}

// padAddress left-pads a 20-byte address to a 32-byte call argument.
func padAddress(addr string) string {
	hex := strings.TrimPrefix(strings.ToLower(addr), "0x")
	return strings.Repeat("0", 64-len(hex)) + hex
}

// parseAmount converts a 32-byte hex return value to a decimal-adjusted float.
func parseAmount(result string, decimals int) (float64, error) {
	b, err := ethrpc.ParseBig(result)
	if err != nil {
		return 0, fmt.Errorf("parse call result: %w", err)
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(b), scale).Float64()
	return out, nil
}
