// Package stub provides a canned EventSource for tests and offline runs.
package stub

import (
	"context"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/ingestion"
)

// EventSource returns pre-seeded events filtered by block range.
type EventSource struct {
	Transfers []*domain.TransferEvent
	Pair      ingestion.PairEvents
}

// Compile-time interface check.
var _ ingestion.EventSource = (*EventSource)(nil)

// FetchTransfers returns seeded transfers within [from, to].
func (s *EventSource) FetchTransfers(_ context.Context, _ string, from, to int64) ([]*domain.TransferEvent, error) {
	var out []*domain.TransferEvent
	for _, t := range s.Transfers {
		if t.BlockNumber >= from && t.BlockNumber <= to {
			out = append(out, t)
		}
	}
	return out, nil
}

// FetchPairEvents returns seeded pool events within [from, to].
func (s *EventSource) FetchPairEvents(_ context.Context, _ string, from, to int64) (*ingestion.PairEvents, error) {
	out := &ingestion.PairEvents{}
	for _, e := range s.Pair.Swaps {
		if e.BlockNumber >= from && e.BlockNumber <= to {
			out.Swaps = append(out.Swaps, e)
		}
	}
	for _, e := range s.Pair.Mints {
		if e.BlockNumber >= from && e.BlockNumber <= to {
			out.Mints = append(out.Mints, e)
		}
	}
	for _, e := range s.Pair.Burns {
		if e.BlockNumber >= from && e.BlockNumber <= to {
			out.Burns = append(out.Burns, e)
		}
	}
	return out, nil
}
