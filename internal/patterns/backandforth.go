package patterns

import (
	"fmt"
	"sort"

	"evm-token-lab/internal/domain"
)

// minInteractions is the minimum combined transfer count in both directions
// for a pair to qualify as back-and-forth trading.
const minInteractions = 5

// DetectBackAndForth finds address pairs trading in both directions. The
// score rewards directional balance, total interaction count, value
// symmetry, and time clustering of the transfers.
func (d *Detector) DetectBackAndForth(transfers []transfer) []*domain.PatternReport {
	type pairFlow struct {
		countAB, countBA int
		valueAB, valueBA float64
		blocks           []int64
	}

	flows := make(map[[2]string]*pairFlow)
	for _, t := range transfers {
		a, b := t.From, t.To
		forward := true
		if b < a {
			a, b = b, a
			forward = false
		}
		key := [2]string{a, b}
		f, ok := flows[key]
		if !ok {
			f = &pairFlow{}
			flows[key] = f
		}
		if forward {
			f.countAB++
			f.valueAB += t.Value
		} else {
			f.countBA++
			f.valueBA += t.Value
		}
		f.blocks = append(f.blocks, t.Block)
	}

	keys := make([][2]string, 0, len(flows))
	for k := range flows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	var reports []*domain.PatternReport
	for _, key := range keys {
		f := flows[key]
		total := f.countAB + f.countBA
		if f.countAB == 0 || f.countBA == 0 || total < minInteractions {
			continue
		}

		balance := float64(min(f.countAB, f.countBA)) / float64(max(f.countAB, f.countBA))
		valueSym := 0.0
		if maxVal := maxf(f.valueAB, f.valueBA); maxVal > 0 {
			valueSym = 1 - (maxf(f.valueAB, f.valueBA)-minf(f.valueAB, f.valueBA))/maxVal
		}
		clustering := blockClustering(f.blocks, d.cfg.BlockWindow)

		score := balance*25 + minf(float64(total)*4, 25) + valueSym*25 + clustering*25

		sort.Slice(f.blocks, func(i, j int) bool { return f.blocks[i] < f.blocks[j] })
		span := f.blocks[len(f.blocks)-1] - f.blocks[0]

		reports = append(reports, &domain.PatternReport{
			PatternType:    domain.PatternBackAndForth,
			Addresses:      []string{key[0], key[1]},
			SuspicionScore: capScore(score),
			Description: fmt.Sprintf("back-and-forth trading between %s and %s: %d interactions (%d/%d) over %d blocks",
				key[0], key[1], total, f.countAB, f.countBA, span),
			TxCount:    total,
			TotalValue: f.valueAB + f.valueBA,
			BlockSpan:  span,
		})
	}

	rankReports(reports)
	return reports
}

// blockClustering measures how much of the activity falls into one burst:
// blocks are grouped into runs with gaps at most window apart, and the
// largest run's share of all blocks is returned.
func blockClustering(blocks []int64, window int64) float64 {
	if len(blocks) == 0 {
		return 0
	}
	sorted := make([]int64, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	best, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] <= window {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return float64(best) / float64(len(sorted))
}
