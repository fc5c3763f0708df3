package patterns

import (
	"fmt"
	"sort"

	"evm-token-lab/internal/domain"
)

// Coordination window thresholds.
const (
	minWindowTxs     = 5 // transactions a window needs before inspection
	minTxsPerAddress = 3 // transactions an address must appear in
	minHotAddresses  = 2 // co-occurring heavy addresses to flag a window
)

// DetectCoordination partitions the timeline into fixed-size block windows
// and flags windows where several addresses each participate in many of the
// window's transactions.
func (d *Detector) DetectCoordination(records []*domain.TimelineRecord) []*domain.PatternReport {
	type window struct {
		txs       map[string]struct{}
		addrTxs   map[string]map[string]struct{}
		minBlock  int64
		maxBlock  int64
		populated bool
	}

	windows := make(map[int64]*window)
	for _, r := range records {
		if r.TxHash == "" {
			continue
		}
		id := r.BlockNumber / d.cfg.BlockWindow
		w, ok := windows[id]
		if !ok {
			w = &window{
				txs:     make(map[string]struct{}),
				addrTxs: make(map[string]map[string]struct{}),
			}
			windows[id] = w
		}
		w.txs[r.TxHash] = struct{}{}
		if !w.populated || r.BlockNumber < w.minBlock {
			w.minBlock = r.BlockNumber
		}
		if !w.populated || r.BlockNumber > w.maxBlock {
			w.maxBlock = r.BlockNumber
		}
		w.populated = true

		for _, addr := range d.participants(r) {
			if w.addrTxs[addr] == nil {
				w.addrTxs[addr] = make(map[string]struct{})
			}
			w.addrTxs[addr][r.TxHash] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(windows))
	for id := range windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var reports []*domain.PatternReport
	for _, id := range ids {
		w := windows[id]
		txCount := len(w.txs)
		if txCount < minWindowTxs {
			continue
		}

		var hot []string
		hotAppearances := 0
		for addr, txs := range w.addrTxs {
			if len(txs) >= minTxsPerAddress {
				hot = append(hot, addr)
				hotAppearances += len(txs)
			}
		}
		if len(hot) < minHotAddresses {
			continue
		}
		sort.Strings(hot)

		concentration := float64(hotAppearances) / float64(len(hot)*txCount)
		score := minf(float64(len(hot))*15, 45)
		score += concentration * 30
		score += minf(float64(txCount)*2, 25)

		reports = append(reports, &domain.PatternReport{
			PatternType:    domain.PatternCoordinated,
			Addresses:      hot,
			SuspicionScore: capScore(score),
			Description: fmt.Sprintf("coordinated burst in blocks %d-%d: %d addresses active across %d transactions",
				w.minBlock, w.maxBlock, len(hot), txCount),
			TxCount:   txCount,
			BlockSpan: w.maxBlock - w.minBlock,
		})
	}

	rankReports(reports)
	return reports
}

// participants lists the non-excluded addresses a record involves.
func (d *Detector) participants(r *domain.TimelineRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(addr string) {
		if d.isExcluded(addr) {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	add(r.FromAddress)
	add(r.ToAddress)
	for _, init := range r.Initiators {
		add(init)
	}
	return out
}
