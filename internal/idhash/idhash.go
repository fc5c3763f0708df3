package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SyntheticTxHash computes a deterministic transaction key for timeline rows
// that carry no transaction hash. Exported datasets only identify events by
// block, so all events of one block share one synthetic transaction.
// Formula: "0x" + SHA256(token_address|block_number)
// Returns a 66-character hash matching the shape of a real tx hash.
func SyntheticTxHash(tokenAddress string, blockNumber int64) string {
	data := fmt.Sprintf("%s|%d", tokenAddress, blockNumber)
	hash := sha256.Sum256([]byte(data))
	return "0x" + hex.EncodeToString(hash[:])
}
