package patterns

import (
	"fmt"
	"sort"
	"strings"

	"evm-token-lab/internal/domain"
)

// Cycle length bounds for circular-trading detection.
const (
	minCycleLen = 3
	maxCycleLen = 5
)

// pairStats aggregates all transfers along one directed address pair.
type pairStats struct {
	TxCount    int
	TotalValue float64
	MinBlock   int64
	MaxBlock   int64
}

// DetectCircular enumerates simple cycles of length 3..5 in the directed
// transfer graph. Shorter cycles and tighter block spans score higher.
func (d *Detector) DetectCircular(transfers []transfer) []*domain.PatternReport {
	adj, stats := directedIndex(transfers)

	nodes := make([]string, 0, len(adj))
	for from := range adj {
		nodes = append(nodes, from)
	}
	sort.Strings(nodes)

	var reports []*domain.PatternReport
	seen := make(map[string]struct{})

	var dfs func(start string, path []string)
	dfs = func(start string, path []string) {
		current := path[len(path)-1]
		for _, next := range adj[current] {
			if next == start && len(path) >= minCycleLen {
				cycle := append([]string(nil), path...)
				key := strings.Join(cycle, ">")
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				reports = append(reports, d.scoreCycle(cycle, stats))
				continue
			}
			// Canonical form: the start is the minimal address, so any
			// smaller node belongs to a cycle rooted elsewhere.
			if next <= start || len(path) == maxCycleLen {
				continue
			}
			if contains(path, next) {
				continue
			}
			extended := make([]string, len(path)+1)
			copy(extended, path)
			extended[len(path)] = next
			dfs(start, extended)
		}
	}

	for _, start := range nodes {
		dfs(start, []string{start})
	}

	rankReports(reports)
	return reports
}

// scoreCycle applies the circular-trading score to one cycle.
func (d *Detector) scoreCycle(cycle []string, stats map[[2]string]*pairStats) *domain.PatternReport {
	txCount := 0
	totalValue := 0.0
	minBlock, maxBlock := int64(-1), int64(0)
	for i := range cycle {
		from, to := cycle[i], cycle[(i+1)%len(cycle)]
		st := stats[[2]string{from, to}]
		if st == nil {
			continue
		}
		txCount += st.TxCount
		totalValue += st.TotalValue
		if minBlock < 0 || st.MinBlock < minBlock {
			minBlock = st.MinBlock
		}
		if st.MaxBlock > maxBlock {
			maxBlock = st.MaxBlock
		}
	}
	blockSpan := maxBlock - minBlock

	score := float64(6-len(cycle)) * 20
	score += minf(float64(txCount)*5, 50)
	score += minf(totalValue/1e6, 30)
	score += maxf(0, 20-float64(blockSpan)/100)

	return &domain.PatternReport{
		PatternType:    domain.PatternCircular,
		Addresses:      cycle,
		SuspicionScore: capScore(score),
		Description: fmt.Sprintf("circular trading across %d addresses over %d transfers spanning %d blocks",
			len(cycle), txCount, blockSpan),
		TxCount:    txCount,
		TotalValue: totalValue,
		BlockSpan:  blockSpan,
	}
}

// directedIndex builds the adjacency lists and per-pair aggregates.
func directedIndex(transfers []transfer) (map[string][]string, map[[2]string]*pairStats) {
	adj := make(map[string][]string)
	stats := make(map[[2]string]*pairStats)
	for _, t := range transfers {
		key := [2]string{t.From, t.To}
		st, ok := stats[key]
		if !ok {
			st = &pairStats{MinBlock: t.Block, MaxBlock: t.Block}
			stats[key] = st
			adj[t.From] = append(adj[t.From], t.To)
		}
		st.TxCount++
		st.TotalValue += t.Value
		if t.Block < st.MinBlock {
			st.MinBlock = t.Block
		}
		if t.Block > st.MaxBlock {
			st.MaxBlock = t.Block
		}
	}
	for from := range adj {
		sort.Strings(adj[from])
	}
	return adj, stats
}

func contains(path []string, addr string) bool {
	for _, p := range path {
		if p == addr {
			return true
		}
	}
	return false
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
