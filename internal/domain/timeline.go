package domain

import (
	"sort"
	"strings"
)

// Transaction type labels assigned by the classifier. An empty string means
// the row never passed through classification (a plain, unrelated transfer).
const (
	TxTypeBuy     = "BUY"
	TxTypeSell    = "SELL"
	TxTypeMixed   = "MIXED"
	TxTypeSwap    = "SWAP"
	TxTypeMint    = "MINT"
	TxTypeUnknown = "UNKNOWN"
)

// TimelineRecord is one row of the unified timeline.
// Corresponds to timeline_records table in ClickHouse.
type TimelineRecord struct {
	TokenAddress     string    // analyzed token contract, lowercase hex
	TimelineIndex    int       // dense 0-based position after sorting
	BlockNumber      int64     // block the event landed in
	TxHash           string    // transaction hash, lowercase hex
	EventType        string    // TRANSFER | V2_Swap | V3_Swap | V2_Mint | ...
	FromAddress      string    // transfer sender, empty for pool events
	ToAddress        string    // transfer recipient, empty for pool events
	PairAddress      string    // emitting pool for swap/mint/burn rows
	Value            float64   // decimal-adjusted token amount
	CounterValue     float64   // other-side pool amount for swap/mint/burn rows
	TransactionType  string    // BUY | SELL | MIXED | SWAP | MINT | UNKNOWN | ""
	Initiators       []string  // resolved initiator set, sorted, may be empty
	TransferCount    int       // transfers folded into this row by the classifier
	RelatedTransfers string    // condensed summary of up to 3 folded transfers
	AggregatedCount  int       // rows merged by the aggregator, >= 1
	OriginalValues   []float64 // audit trail of pre-aggregation values
}

// InitiatorKey returns the canonical comma-joined initiator set, used as a
// grouping key by the aggregator and as the serialized form in exports.
func (r *TimelineRecord) InitiatorKey() string {
	if len(r.Initiators) == 0 {
		return ""
	}
	set := make([]string, len(r.Initiators))
	copy(set, r.Initiators)
	sort.Strings(set)
	return strings.Join(set, ",")
}

// SortTimeline orders records by (block, tx hash) ascending with a stable
// sort, then rewrites TimelineIndex to a dense 0-based sequence.
func SortTimeline(records []*TimelineRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].BlockNumber != records[j].BlockNumber {
			return records[i].BlockNumber < records[j].BlockNumber
		}
		return records[i].TxHash < records[j].TxHash
	})
	for i, r := range records {
		r.TimelineIndex = i
	}
}
