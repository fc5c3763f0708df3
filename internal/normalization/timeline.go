package normalization

import (
	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/evmaddr"
)

// Builder merges normalized events of all kinds into one unified timeline.
// The token position tells it which side of each pool amount pair belongs to
// the analyzed token; callers must supply it rather than have it guessed.
type Builder struct {
	tokenAddress string
	position     domain.TokenPosition
}

// NewBuilder creates a timeline builder for one token.
func NewBuilder(tokenAddress string, position domain.TokenPosition) *Builder {
	return &Builder{
		tokenAddress: evmaddr.Normalize(tokenAddress),
		position:     position,
	}
}

// Build concatenates all event kinds into one sequence ordered by
// (block, tx hash) with ties broken by insertion order, then assigns a
// dense 0-based timeline index.
func (b *Builder) Build(
	transfers []*domain.TransferEvent,
	swaps []*domain.SwapEvent,
	mints []*domain.MintEvent,
	burns []*domain.BurnEvent,
) []*domain.TimelineRecord {
	records := make([]*domain.TimelineRecord, 0, len(transfers)+len(swaps)+len(mints)+len(burns))

	for _, t := range transfers {
		records = append(records, &domain.TimelineRecord{
			TokenAddress:    b.tokenAddress,
			BlockNumber:     t.BlockNumber,
			TxHash:          evmaddr.Normalize(t.TxHash),
			EventType:       domain.EventTransfer,
			FromAddress:     evmaddr.Normalize(t.From),
			ToAddress:       evmaddr.Normalize(t.To),
			Value:           t.Value,
			AggregatedCount: 1,
		})
	}

	for _, s := range swaps {
		tokenIn, tokenOut := s.Amount0In, s.Amount0Out
		otherIn, otherOut := s.Amount1In, s.Amount1Out
		if b.position == domain.Token1 {
			tokenIn, tokenOut = s.Amount1In, s.Amount1Out
			otherIn, otherOut = s.Amount0In, s.Amount0Out
		}
		records = append(records, &domain.TimelineRecord{
			TokenAddress:    b.tokenAddress,
			BlockNumber:     s.BlockNumber,
			TxHash:          evmaddr.Normalize(s.TxHash),
			EventType:       domain.EventSwap,
			FromAddress:     evmaddr.Normalize(s.Sender),
			ToAddress:       evmaddr.Normalize(s.Recipient),
			PairAddress:     evmaddr.Normalize(s.PairAddress),
			Value:           tokenIn + tokenOut,
			CounterValue:    otherIn + otherOut,
			AggregatedCount: 1,
		})
	}

	for _, m := range mints {
		records = append(records, &domain.TimelineRecord{
			TokenAddress:    b.tokenAddress,
			BlockNumber:     m.BlockNumber,
			TxHash:          evmaddr.Normalize(m.TxHash),
			EventType:       domain.EventMint,
			FromAddress:     evmaddr.Normalize(m.Sender),
			PairAddress:     evmaddr.Normalize(m.PairAddress),
			Value:           b.tokenAmount(m.Amount0, m.Amount1),
			CounterValue:    b.otherAmount(m.Amount0, m.Amount1),
			AggregatedCount: 1,
		})
	}

	for _, bu := range burns {
		records = append(records, &domain.TimelineRecord{
			TokenAddress:    b.tokenAddress,
			BlockNumber:     bu.BlockNumber,
			TxHash:          evmaddr.Normalize(bu.TxHash),
			EventType:       domain.EventBurn,
			FromAddress:     evmaddr.Normalize(bu.Sender),
			ToAddress:       evmaddr.Normalize(bu.To),
			PairAddress:     evmaddr.Normalize(bu.PairAddress),
			Value:           b.tokenAmount(bu.Amount0, bu.Amount1),
			CounterValue:    b.otherAmount(bu.Amount0, bu.Amount1),
			AggregatedCount: 1,
		})
	}

	domain.SortTimeline(records)
	return records
}

func (b *Builder) tokenAmount(amount0, amount1 float64) float64 {
	if b.position == domain.Token1 {
		return amount1
	}
	return amount0
}

func (b *Builder) otherAmount(amount0, amount1 float64) float64 {
	if b.position == domain.Token1 {
		return amount0
	}
	return amount1
}
