package ingestion

import (
	"context"
	"fmt"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/ethrpc"
)

// defaultDecimals is used when the caller does not know a token's decimals.
const defaultDecimals = 18

// RPCEventSource fetches events via eth_getLogs.
type RPCEventSource struct {
	client *ethrpc.HTTPClient

	// Token0Decimals/Token1Decimals adjust raw pool amounts. Both default
	// to 18.
	Token0Decimals int
	Token1Decimals int
}

// NewRPCEventSource creates an event source over a JSON-RPC client.
func NewRPCEventSource(client *ethrpc.HTTPClient) *RPCEventSource {
	return &RPCEventSource{
		client:         client,
		Token0Decimals: defaultDecimals,
		Token1Decimals: defaultDecimals,
	}
}

// Compile-time interface check.
var _ EventSource = (*RPCEventSource)(nil)

// FetchTransfers returns token Transfer events within [from, to].
func (s *RPCEventSource) FetchTransfers(ctx context.Context, tokenAddress string, from, to int64) ([]*domain.TransferEvent, error) {
	logs, err := s.client.GetLogs(ctx, ethrpc.LogFilter{
		FromBlock: ethrpc.FormatQuantity(from),
		ToBlock:   ethrpc.FormatQuantity(to),
		Address:   tokenAddress,
		Topics:    [][]string{{ethrpc.TopicTransfer}},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transfer logs: %w", err)
	}

	var transfers []*domain.TransferEvent
	for _, log := range logs {
		if log.Removed {
			continue
		}
		t, err := decodeTransfer(log, s.Token0Decimals)
		if err != nil {
			return nil, fmt.Errorf("decode transfer %s: %w", log.TransactionHash, err)
		}
		transfers = append(transfers, t)
	}
	return transfers, nil
}

// FetchPairEvents returns Swap/Mint/Burn events for a pool within [from, to].
func (s *RPCEventSource) FetchPairEvents(ctx context.Context, pairAddress string, from, to int64) (*PairEvents, error) {
	logs, err := s.client.GetLogs(ctx, ethrpc.LogFilter{
		FromBlock: ethrpc.FormatQuantity(from),
		ToBlock:   ethrpc.FormatQuantity(to),
		Address:   pairAddress,
		Topics: [][]string{{
			ethrpc.TopicV2Swap,
			ethrpc.TopicV2Mint,
			ethrpc.TopicV2Burn,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pair logs: %w", err)
	}

	events := &PairEvents{}
	for _, log := range logs {
		if log.Removed || len(log.Topics) == 0 {
			continue
		}
		switch log.Topics[0] {
		case ethrpc.TopicV2Swap:
			e, err := decodeSwap(log, s.Token0Decimals, s.Token1Decimals)
			if err != nil {
				return nil, fmt.Errorf("decode swap %s: %w", log.TransactionHash, err)
			}
			events.Swaps = append(events.Swaps, e)
		case ethrpc.TopicV2Mint:
			e, err := decodeMint(log, s.Token0Decimals, s.Token1Decimals)
			if err != nil {
				return nil, fmt.Errorf("decode mint %s: %w", log.TransactionHash, err)
			}
			events.Mints = append(events.Mints, e)
		case ethrpc.TopicV2Burn:
			e, err := decodeBurn(log, s.Token0Decimals, s.Token1Decimals)
			if err != nil {
				return nil, fmt.Errorf("decode burn %s: %w", log.TransactionHash, err)
			}
			events.Burns = append(events.Burns, e)
		}
	}
	return events, nil
}
