// Package ingestion retrieves raw ledger events for a token and its pool
// from external sources. The analysis core consumes what it returns and
// never fetches anything itself.
package ingestion

import (
	"context"

	"evm-token-lab/internal/domain"
)

// PairEvents groups the pool-side events of one fetch.
type PairEvents struct {
	Swaps []*domain.SwapEvent
	Mints []*domain.MintEvent
	Burns []*domain.BurnEvent
}

// EventSource provides raw events from external sources.
type EventSource interface {
	// FetchTransfers returns token Transfer events within block range
	// [from, to] (inclusive). Events may be unordered; the timeline builder
	// enforces deterministic ordering.
	FetchTransfers(ctx context.Context, tokenAddress string, from, to int64) ([]*domain.TransferEvent, error)

	// FetchPairEvents returns Swap/Mint/Burn events for a pool within block
	// range [from, to] (inclusive).
	FetchPairEvents(ctx context.Context, pairAddress string, from, to int64) (*PairEvents, error)
}
