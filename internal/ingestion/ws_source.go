package ingestion

import (
	"context"
	"fmt"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/ethrpc"
)

// StreamEvents tails token transfers and pool events over a WebSocket
// subscription until the context is cancelled, invoking the handlers as
// decoded events arrive. Decode failures on individual logs are skipped; the
// stream only terminates on cancellation.
func StreamEvents(
	ctx context.Context,
	wsEndpoint, tokenAddress, pairAddress string,
	onTransfer func(*domain.TransferEvent),
	onSwap func(*domain.SwapEvent),
) error {
	filter := ethrpc.LogFilter{
		Topics: [][]string{{ethrpc.TopicTransfer, ethrpc.TopicV2Swap}},
	}

	client, err := ethrpc.NewWSClient(ctx, wsEndpoint, filter, nil)
	if err != nil {
		return fmt.Errorf("subscribe to logs: %w", err)
	}
	defer client.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case log, ok := <-client.Logs():
			if !ok {
				return nil
			}
			if len(log.Topics) == 0 {
				continue
			}
			switch log.Topics[0] {
			case ethrpc.TopicTransfer:
				if log.Address != tokenAddress {
					continue
				}
				if t, err := decodeTransfer(log, defaultDecimals); err == nil {
					onTransfer(t)
				}
			case ethrpc.TopicV2Swap:
				if log.Address != pairAddress {
					continue
				}
				if s, err := decodeSwap(log, defaultDecimals, defaultDecimals); err == nil {
					onSwap(s)
				}
			}
		}
	}
}
