package patterns

import (
	"fmt"
	"math"
	"sort"

	"evm-token-lab/internal/domain"
)

// DetectVolumePumping finds address pairs whose combined transfer volume
// crosses the configured threshold. The score rewards high total value, high
// transaction count, repeated identical values, and short, regular block
// intervals.
func (d *Detector) DetectVolumePumping(transfers []transfer) []*domain.PatternReport {
	type pairVolume struct {
		total  float64
		count  int
		values map[float64]int
		blocks []int64
	}

	volumes := make(map[[2]string]*pairVolume)
	for _, t := range transfers {
		a, b := t.From, t.To
		if b < a {
			a, b = b, a
		}
		key := [2]string{a, b}
		v, ok := volumes[key]
		if !ok {
			v = &pairVolume{values: make(map[float64]int)}
			volumes[key] = v
		}
		v.total += t.Value
		v.count++
		v.values[t.Value]++
		v.blocks = append(v.blocks, t.Block)
	}

	keys := make([][2]string, 0, len(volumes))
	for k := range volumes {
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
		v := volumes[key]
		if v.total < d.cfg.VolumeThreshold {
			continue
		}

		score := minf(v.total/d.cfg.VolumeThreshold*10, 30)
		score += minf(float64(v.count)*4, 25)

		maxRepeat := 0
		for _, n := range v.values {
			if n > maxRepeat {
				maxRepeat = n
			}
		}
		score += float64(maxRepeat) / float64(v.count) * 25

		score += intervalRegularity(v.blocks) * 20

		sort.Slice(v.blocks, func(i, j int) bool { return v.blocks[i] < v.blocks[j] })
		span := v.blocks[len(v.blocks)-1] - v.blocks[0]

		reports = append(reports, &domain.PatternReport{
			PatternType:    domain.PatternVolumePump,
			Addresses:      []string{key[0], key[1]},
			SuspicionScore: capScore(score),
			Description: fmt.Sprintf("volume pumping between %s and %s: %.0f total across %d transfers",
				key[0], key[1], v.total, v.count),
			TxCount:    v.count,
			TotalValue: v.total,
			BlockSpan:  span,
		})
	}

	rankReports(reports)
	return reports
}

// intervalRegularity returns 1 for perfectly regular block intervals and
// approaches 0 as they become erratic. Single-block activity counts as
// perfectly regular.
func intervalRegularity(blocks []int64) float64 {
	if len(blocks) < 3 {
		return 1
	}
	sorted := make([]int64, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	intervals := make([]float64, 0, len(sorted)-1)
	var mean float64
	for i := 1; i < len(sorted); i++ {
		iv := float64(sorted[i] - sorted[i-1])
		intervals = append(intervals, iv)
		mean += iv
	}
	mean /= float64(len(intervals))
	if mean == 0 {
		return 1
	}

	var variance float64
	for _, iv := range intervals {
		variance += (iv - mean) * (iv - mean)
	}
	variance /= float64(len(intervals))

	cv := math.Sqrt(variance) / mean
	return maxf(0, 1-cv)
}
