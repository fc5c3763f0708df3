package classification

import (
	"strings"

	"evm-token-lab/internal/domain"
)

// Aggregate consolidates classified rows sharing (tx hash, initiator set,
// transaction type) into one row with summed value. Rows lacking a
// transaction type or initiators pass through untouched. Value conservation
// holds: a merged row's value equals the sum of its original values. The
// output is re-sorted by (block, tx hash) and re-indexed.
func Aggregate(records []*domain.TimelineRecord) []*domain.TimelineRecord {
	type groupKey struct {
		txHash     string
		initiators string
		txType     string
	}

	groups := make(map[groupKey][]*domain.TimelineRecord)
	var order []groupKey
	var passthrough []*domain.TimelineRecord

	for _, r := range records {
		if r.TransactionType == "" || len(r.Initiators) == 0 {
			r.AggregatedCount = 1
			passthrough = append(passthrough, r)
			continue
		}
		key := groupKey{r.TxHash, r.InitiatorKey(), r.TransactionType}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	out := make([]*domain.TimelineRecord, 0, len(records))
	out = append(out, passthrough...)

	for _, key := range order {
		members := groups[key]
		if len(members) == 1 {
			members[0].AggregatedCount = 1
			out = append(out, members[0])
			continue
		}

		merged := *members[0]
		merged.Value = 0
		merged.TransferCount = 0
		merged.AggregatedCount = len(members)
		merged.OriginalValues = make([]float64, 0, len(members))

		var summaries []string
		for _, m := range members {
			merged.Value += m.Value
			merged.TransferCount += m.TransferCount
			merged.OriginalValues = append(merged.OriginalValues, m.Value)
			if m.RelatedTransfers != "" {
				summaries = append(summaries, m.RelatedTransfers)
			}
		}
		merged.RelatedTransfers = strings.Join(summaries, "; ")
		out = append(out, &merged)
	}

	domain.SortTimeline(out)
	return out
}
