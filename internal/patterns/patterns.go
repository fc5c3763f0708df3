// Package patterns runs the manipulation pattern detectors over a filtered
// timeline: circular trading cycles, back-and-forth pairs, volume pumping,
// and time-windowed coordination bursts. Detectors are independent and never
// mutate the graph or influence the cluster scorer.
package patterns

import (
	"sort"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/evmaddr"
)

// Config tunes the detectors.
type Config struct {
	BlockWindow     int64   // window size in blocks for time clustering
	VolumeThreshold float64 // minimum pair volume for pumping analysis
}

// DefaultConfig returns the detector defaults.
func DefaultConfig() Config {
	return Config{
		BlockWindow:     100,
		VolumeThreshold: 1_000_000,
	}
}

// maxScore caps every suspicion score.
const maxScore = 100.0

// Detector runs all pattern analyses for one token.
type Detector struct {
	cfg      Config
	excluded map[string]struct{}
}

// NewDetector creates a detector. Excluded addresses (token contract, pool)
// never participate in a pattern.
func NewDetector(cfg Config, excluded ...string) *Detector {
	if cfg.BlockWindow <= 0 {
		cfg.BlockWindow = DefaultConfig().BlockWindow
	}
	if cfg.VolumeThreshold <= 0 {
		cfg.VolumeThreshold = DefaultConfig().VolumeThreshold
	}
	ex := make(map[string]struct{}, len(excluded)+1)
	ex[evmaddr.Zero] = struct{}{}
	for _, a := range excluded {
		if n := evmaddr.Normalize(a); n != "" {
			ex[n] = struct{}{}
		}
	}
	return &Detector{cfg: cfg, excluded: ex}
}

// DetectAll runs every detector and returns the combined reports ranked by
// score descending, ties broken by pattern type and first address.
func (d *Detector) DetectAll(records []*domain.TimelineRecord) []*domain.PatternReport {
	transfers := d.transfersOf(records)

	var reports []*domain.PatternReport
	reports = append(reports, d.DetectCircular(transfers)...)
	reports = append(reports, d.DetectBackAndForth(transfers)...)
	reports = append(reports, d.DetectVolumePumping(transfers)...)
	reports = append(reports, d.DetectCoordination(records)...)

	rankReports(reports)
	return reports
}

// transfer is a directed token movement between two non-excluded addresses.
type transfer struct {
	From, To string
	Value    float64
	Block    int64
	TxHash   string
}

// transfersOf extracts plain transfer rows with both endpoints usable.
func (d *Detector) transfersOf(records []*domain.TimelineRecord) []transfer {
	var out []transfer
	for _, r := range records {
		if r.EventType != domain.EventTransfer || r.TransactionType != "" {
			continue
		}
		if d.isExcluded(r.FromAddress) || d.isExcluded(r.ToAddress) || r.FromAddress == r.ToAddress {
			continue
		}
		out = append(out, transfer{
			From:   r.FromAddress,
			To:     r.ToAddress,
			Value:  r.Value,
			Block:  r.BlockNumber,
			TxHash: r.TxHash,
		})
	}
	return out
}

func (d *Detector) isExcluded(addr string) bool {
	if addr == "" {
		return true
	}
	_, ok := d.excluded[addr]
	return ok
}

func rankReports(reports []*domain.PatternReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].SuspicionScore != reports[j].SuspicionScore {
			return reports[i].SuspicionScore > reports[j].SuspicionScore
		}
		if reports[i].PatternType != reports[j].PatternType {
			return reports[i].PatternType < reports[j].PatternType
		}
		return firstAddress(reports[i]) < firstAddress(reports[j])
	})
}

func firstAddress(r *domain.PatternReport) string {
	if len(r.Addresses) == 0 {
		return ""
	}
	return r.Addresses[0]
}

func capScore(s float64) float64 {
	if s > maxScore {
		return maxScore
	}
	if s < 0 {
		return 0
	}
	return s
}
