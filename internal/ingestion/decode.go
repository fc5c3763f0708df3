package ingestion

import (
	"fmt"
	"math/big"
	"strings"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/ethrpc"
	"evm-token-lab/internal/evmaddr"
)

// wordLen is the byte length of one ABI-encoded word, as hex characters.
const wordLen = 64

// decodeTransfer decodes an ERC-20 Transfer log.
func decodeTransfer(log ethrpc.Log, decimals int) (*domain.TransferEvent, error) {
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("transfer log has %d topics, want 3", len(log.Topics))
	}
	block, err := ethrpc.ParseQuantity(log.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("parse block number: %w", err)
	}
	logIndex, _ := ethrpc.ParseQuantity(log.LogIndex)

	words, err := dataWords(log.Data, 1)
	if err != nil {
		return nil, err
	}

	return &domain.TransferEvent{
		BlockNumber: block,
		TxHash:      strings.ToLower(log.TransactionHash),
		LogIndex:    int(logIndex),
		From:        evmaddr.FromTopic(log.Topics[1]),
		To:          evmaddr.FromTopic(log.Topics[2]),
		Value:       toDecimal(words[0], decimals),
	}, nil
}

// decodeSwap decodes a Uniswap V2 Swap log
// (amount0In, amount1In, amount0Out, amount1Out).
func decodeSwap(log ethrpc.Log, decimals, counterDecimals int) (*domain.SwapEvent, error) {
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("swap log has %d topics, want 3", len(log.Topics))
	}
	block, err := ethrpc.ParseQuantity(log.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("parse block number: %w", err)
	}
	logIndex, _ := ethrpc.ParseQuantity(log.LogIndex)

	words, err := dataWords(log.Data, 4)
	if err != nil {
		return nil, err
	}

	return &domain.SwapEvent{
		BlockNumber: block,
		TxHash:      strings.ToLower(log.TransactionHash),
		LogIndex:    int(logIndex),
		PairAddress: evmaddr.Normalize(log.Address),
		Sender:      evmaddr.FromTopic(log.Topics[1]),
		Recipient:   evmaddr.FromTopic(log.Topics[2]),
		Amount0In:   toDecimal(words[0], decimals),
		Amount1In:   toDecimal(words[1], counterDecimals),
		Amount0Out:  toDecimal(words[2], decimals),
		Amount1Out:  toDecimal(words[3], counterDecimals),
	}, nil
}

// decodeMint decodes a Uniswap V2 Mint log (amount0, amount1).
func decodeMint(log ethrpc.Log, decimals, counterDecimals int) (*domain.MintEvent, error) {
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("mint log has %d topics, want 2", len(log.Topics))
	}
	block, err := ethrpc.ParseQuantity(log.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("parse block number: %w", err)
	}
	logIndex, _ := ethrpc.ParseQuantity(log.LogIndex)

	words, err := dataWords(log.Data, 2)
	if err != nil {
		return nil, err
	}

	return &domain.MintEvent{
		BlockNumber: block,
		TxHash:      strings.ToLower(log.TransactionHash),
		LogIndex:    int(logIndex),
		PairAddress: evmaddr.Normalize(log.Address),
		Sender:      evmaddr.FromTopic(log.Topics[1]),
		Amount0:     toDecimal(words[0], decimals),
		Amount1:     toDecimal(words[1], counterDecimals),
	}, nil
}

// decodeBurn decodes a Uniswap V2 Burn log (amount0, amount1; to in topics).
func decodeBurn(log ethrpc.Log, decimals, counterDecimals int) (*domain.BurnEvent, error) {
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("burn log has %d topics, want 3", len(log.Topics))
	}
	block, err := ethrpc.ParseQuantity(log.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("parse block number: %w", err)
	}
	logIndex, _ := ethrpc.ParseQuantity(log.LogIndex)

	words, err := dataWords(log.Data, 2)
	if err != nil {
		return nil, err
	}

	return &domain.BurnEvent{
		BlockNumber: block,
		TxHash:      strings.ToLower(log.TransactionHash),
		LogIndex:    int(logIndex),
		PairAddress: evmaddr.Normalize(log.Address),
		Sender:      evmaddr.FromTopic(log.Topics[1]),
		To:          evmaddr.FromTopic(log.Topics[2]),
		Amount0:     toDecimal(words[0], decimals),
		Amount1:     toDecimal(words[1], counterDecimals),
	}, nil
}

// dataWords splits the log data into 32-byte words, requiring at least n.
func dataWords(data string, n int) ([]*big.Int, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(data), "0x")
	if len(hex) < n*wordLen {
		return nil, fmt.Errorf("log data has %d hex chars, want at least %d", len(hex), n*wordLen)
	}
	words := make([]*big.Int, 0, len(hex)/wordLen)
	for i := 0; i+wordLen <= len(hex); i += wordLen {
		w, ok := new(big.Int).SetString(hex[i:i+wordLen], 16)
		if !ok {
			return nil, fmt.Errorf("invalid hex word at offset %d", i)
		}
		words = append(words, w)
	}
	return words, nil
}

// toDecimal converts a raw uint256 amount to a float adjusted by the token's
// decimals. Precision loss beyond float64 is acceptable for analysis.
func toDecimal(raw *big.Int, decimals int) float64 {
	if raw.Sign() == 0 {
		return 0
	}
	f := new(big.Float).SetInt(raw)
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	out, _ := new(big.Float).Quo(f, scale).Float64()
	return out
}
