// Package classification re-derives transaction-level actions from the
// unified timeline: swap and mint transactions absorb their redundant
// transfer restatements, gaining a transaction type and an initiator set.
package classification

import (
	"fmt"
	"sort"
	"strings"

	"evm-token-lab/internal/domain"
)

// RouterAddress is the Uniswap V2 router, never a legitimate initiator.
const RouterAddress = "0x7a250d5630b4cf539739df2c5dacb4c659f2488d"

// relatedTransferLimit caps the condensed transfer summary attached to a
// classified row.
const relatedTransferLimit = 3

// CoordinationAlert flags a transaction whose resolved initiator set holds
// more than one address. Informational; classification is unaffected.
type CoordinationAlert struct {
	TxHash          string   // transaction hash, lowercase hex
	TransactionType string   // BUY | SELL | MIXED | SWAP
	Initiators      []string // the multi-address initiator set
}

// Result carries the filtered timeline plus any coordination alerts.
type Result struct {
	Records []*domain.TimelineRecord
	Alerts  []CoordinationAlert
}

// Classifier resolves transaction types and initiators for one token.
type Classifier struct {
	tokenAddress string
}

// NewClassifier creates a classifier. The token's own contract address is
// excluded from every initiator set it produces.
func NewClassifier(tokenAddress string) *Classifier {
	return &Classifier{tokenAddress: strings.ToLower(tokenAddress)}
}

// Classify walks the timeline grouped by transaction hash. Swap groups are
// resolved to BUY/SELL/MIXED (or SWAP when nothing is pool-attributable),
// from embedded transfer rows when present and from the swap rows' own
// endpoints otherwise; attributed transfer rows are dropped; mint
// groups drop transfers whose value restates a mint amount. Rows already
// carrying a transaction type are left alone, so reclassifying an
// already-filtered timeline is a no-op. The output is re-sorted and
// re-indexed.
func (c *Classifier) Classify(records []*domain.TimelineRecord) *Result {
	groups, order := groupByTx(records)

	res := &Result{}
	for _, txHash := range order {
		group := groups[txHash]

		var swapRows, mintRows, transferRows, otherRows []*domain.TimelineRecord
		for _, r := range group {
			switch {
			case isSwapEvent(r.EventType) && r.TransactionType == "":
				swapRows = append(swapRows, r)
			case isMintEvent(r.EventType) && r.TransactionType == "":
				mintRows = append(mintRows, r)
			case r.EventType == domain.EventTransfer && r.TransactionType == "":
				transferRows = append(transferRows, r)
			default:
				otherRows = append(otherRows, r)
			}
		}

		switch {
		case len(swapRows) > 0:
			res.Records = append(res.Records, otherRows...)
			res.Records = append(res.Records, mintRows...)
			c.classifySwapGroup(res, txHash, swapRows, transferRows)
		case len(mintRows) > 0 && len(transferRows) > 0:
			res.Records = append(res.Records, otherRows...)
			res.Records = append(res.Records, swapRows...)
			c.classifyMintGroup(res, mintRows, transferRows)
		default:
			res.Records = append(res.Records, group...)
		}
	}

	domain.SortTimeline(res.Records)
	return res
}

// classifySwapGroup attributes each transfer to the pool side it touches,
// derives the transaction type, drops all transfers of the group, and
// annotates the retained swap rows. A group without transfer rows (one swap
// row per transaction, the shape ingestion produces) is attributed from the
// swap rows' own endpoints instead.
func (c *Classifier) classifySwapGroup(res *Result, txHash string, swapRows, transferRows []*domain.TimelineRecord) {
	pools := make(map[string]struct{})
	for _, s := range swapRows {
		if s.PairAddress != "" {
			pools[s.PairAddress] = struct{}{}
		}
	}

	attribution := transferRows
	if len(attribution) == 0 {
		attribution = swapRows
	}

	buyInits := make(map[string]struct{})
	sellInits := make(map[string]struct{})
	for _, t := range attribution {
		_, fromPool := pools[t.FromAddress]
		_, toPool := pools[t.ToAddress]
		switch {
		case fromPool:
			c.addInitiator(buyInits, t.ToAddress)
		case toPool:
			c.addInitiator(sellInits, t.FromAddress)
		}
		// Neither side is a known pool: a router hop, non-attributable.
	}

	var txType string
	var initiators []string
	switch {
	case len(buyInits) > 0 && len(sellInits) > 0:
		txType = domain.TxTypeMixed
		initiators = unionSorted(buyInits, sellInits)
	case len(buyInits) > 0:
		txType = domain.TxTypeBuy
		initiators = sortedKeys(buyInits)
	case len(sellInits) > 0:
		txType = domain.TxTypeSell
		initiators = sortedKeys(sellInits)
	default:
		// No pool-attributable transfer. Fall back to the swap event's own
		// sender/recipient fields.
		txType = domain.TxTypeSwap
		fallback := make(map[string]struct{})
		for _, s := range swapRows {
			c.addInitiator(fallback, s.FromAddress)
			c.addInitiator(fallback, s.ToAddress)
		}
		initiators = sortedKeys(fallback)
	}

	summary := summarizeTransfers(transferRows)
	for _, s := range swapRows {
		s.TransactionType = txType
		s.Initiators = initiators
		s.TransferCount = len(transferRows)
		s.RelatedTransfers = summary
		res.Records = append(res.Records, s)
	}

	if len(initiators) > 1 {
		res.Alerts = append(res.Alerts, CoordinationAlert{
			TxHash:          txHash,
			TransactionType: txType,
			Initiators:      initiators,
		})
	}
}

// classifyMintGroup drops transfers that restate a mint amount and marks the
// mint rows MINT, with initiators drawn from the dropped transfers' senders.
func (c *Classifier) classifyMintGroup(res *Result, mintRows, transferRows []*domain.TimelineRecord) {
	amounts := make(map[float64]struct{})
	pools := make(map[string]struct{})
	for _, m := range mintRows {
		amounts[m.Value] = struct{}{}
		amounts[m.CounterValue] = struct{}{}
		if m.PairAddress != "" {
			pools[m.PairAddress] = struct{}{}
		}
	}

	inits := make(map[string]struct{})
	dropped := 0
	for _, t := range transferRows {
		if _, match := amounts[t.Value]; !match {
			res.Records = append(res.Records, t)
			continue
		}
		dropped++
		from := t.FromAddress
		if _, isPool := pools[from]; isPool || from == RouterAddress {
			continue
		}
		c.addInitiator(inits, from)
	}

	initiators := sortedKeys(inits)
	for _, m := range mintRows {
		m.TransactionType = domain.TxTypeMint
		m.Initiators = initiators
		m.TransferCount = dropped
		res.Records = append(res.Records, m)
	}
}

// addInitiator adds a candidate address, skipping empties and the token's
// own contract.
func (c *Classifier) addInitiator(set map[string]struct{}, addr string) {
	if addr == "" || addr == c.tokenAddress {
		return
	}
	set[addr] = struct{}{}
}

// summarizeTransfers condenses up to relatedTransferLimit transfers into a
// short textual audit trail.
func summarizeTransfers(transfers []*domain.TimelineRecord) string {
	var parts []string
	for i, t := range transfers {
		if i == relatedTransferLimit {
			parts = append(parts, fmt.Sprintf("+%d more", len(transfers)-relatedTransferLimit))
			break
		}
		parts = append(parts, fmt.Sprintf("%s->%s:%g", t.FromAddress, t.ToAddress, t.Value))
	}
	return strings.Join(parts, "; ")
}

// groupByTx groups records by transaction hash, preserving first-occurrence
// order of the hashes.
func groupByTx(records []*domain.TimelineRecord) (map[string][]*domain.TimelineRecord, []string) {
	groups := make(map[string][]*domain.TimelineRecord)
	var order []string
	for _, r := range records {
		if _, ok := groups[r.TxHash]; !ok {
			order = append(order, r.TxHash)
		}
		groups[r.TxHash] = append(groups[r.TxHash], r)
	}
	return groups, order
}

func isSwapEvent(eventType string) bool {
	return strings.Contains(eventType, "Swap")
}

func isMintEvent(eventType string) bool {
	return strings.Contains(eventType, "Mint")
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func unionSorted(a, b map[string]struct{}) []string {
	merged := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		merged[k] = struct{}{}
	}
	for k := range b {
		merged[k] = struct{}{}
	}
	return sortedKeys(merged)
}
