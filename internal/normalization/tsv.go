package normalization

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/evmaddr"
	"evm-token-lab/internal/idhash"
)

// ErrMalformedInput is returned when a dataset cannot be parsed as tabular
// data at all. It is fatal: the run aborts with no partial result.
var ErrMalformedInput = errors.New("malformed input: dataset is not parsable as tabular data")

// Columns every timeline dataset must carry. Extra columns are ignored.
var requiredColumns = []string{
	"block_number",
	"event_type",
	"from_address",
	"to_address",
	"value_formatted",
	"transaction_type",
	"initiators",
}

// ParseTimeline reads a tab-separated unified timeline. Column names are
// matched after whitespace stripping; a structurally valid but empty dataset
// yields an empty slice, not an error. The returned records are re-sorted by
// (block, tx hash) and densely re-indexed.
func ParseTimeline(r io.Reader, tokenAddress string) ([]*domain.TimelineRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedInput, name)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []*domain.TimelineRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}

		block := ParseBlock(field(row, "block_number"))
		txHash := evmaddr.Normalize(field(row, "tx_hash"))
		if txHash == "" {
			txHash = idhash.SyntheticTxHash(tokenAddress, block)
		}

		rec := &domain.TimelineRecord{
			TokenAddress:    tokenAddress,
			BlockNumber:     block,
			TxHash:          txHash,
			EventType:       canonicalEventType(field(row, "event_type")),
			FromAddress:     evmaddr.Normalize(field(row, "from_address")),
			ToAddress:       evmaddr.Normalize(field(row, "to_address")),
			PairAddress:     evmaddr.Normalize(field(row, "pair_address")),
			Value:           ParseValue(field(row, "value_formatted")),
			TransactionType: parseTxType(field(row, "transaction_type")),
			Initiators:      parseInitiators(field(row, "initiators")),
			AggregatedCount: 1,
		}
		records = append(records, rec)
	}

	domain.SortTimeline(records)
	return records, nil
}

// canonicalEventType maps an event_type field onto the domain labels,
// case-insensitively. Exported timelines spell transfers "Transfer" while
// the domain constant is "TRANSFER"; unknown labels pass through trimmed.
func canonicalEventType(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "TRANSFER":
		return domain.EventTransfer
	case "V2_SWAP":
		return domain.EventSwap
	case "V3_SWAP":
		return domain.EventSwapV3
	case "V2_MINT":
		return domain.EventMint
	case "V3_MINT":
		return domain.EventMintV3
	case "V2_BURN":
		return domain.EventBurn
	case "V3_BURN":
		return domain.EventBurnV3
	}
	return s
}

// parseTxType canonicalizes a transaction_type field. Placeholder values
// collapse to the empty string (meaning "never classified").
func parseTxType(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "", "NAN", "NULL", "NONE", "<NA>":
		return ""
	}
	return s
}

// parseInitiators splits a comma-joined initiator set into normalized,
// sorted, deduplicated addresses.
func parseInitiators(s string) []string {
	s = evmaddr.Normalize(s)
	if s == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(s, ",") {
		addr := evmaddr.Normalize(part)
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
