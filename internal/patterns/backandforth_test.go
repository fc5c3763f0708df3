package patterns

import (
	"testing"

	"evm-token-lab/internal/domain"
)

func TestDetectBackAndForth_SymmetricPair(t *testing.T) {
	d := NewDetector(DefaultConfig())
	transfers := []transfer{
		{From: "0xa1", To: "0xb1", Value: 100, Block: 10},
		{From: "0xb1", To: "0xa1", Value: 100, Block: 15},
		{From: "0xa1", To: "0xb1", Value: 100, Block: 20},
		{From: "0xb1", To: "0xa1", Value: 100, Block: 25},
		{From: "0xa1", To: "0xb1", Value: 100, Block: 30},
		{From: "0xb1", To: "0xa1", Value: 100, Block: 35},
	}

	reports := d.DetectBackAndForth(transfers)

	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	r := reports[0]
	if r.PatternType != domain.PatternBackAndForth {
		t.Errorf("wrong pattern type: %s", r.PatternType)
	}
	if len(r.Addresses) != 2 || r.Addresses[0] != "0xa1" || r.Addresses[1] != "0xb1" {
		t.Errorf("addresses not a sorted pair: %v", r.Addresses)
	}
	if r.TxCount != 6 {
		t.Errorf("expected TxCount 6, got %d", r.TxCount)
	}
	if r.TotalValue != 600 {
		t.Errorf("expected total value 600, got %f", r.TotalValue)
	}
	if r.BlockSpan != 25 {
		t.Errorf("expected block span 25, got %d", r.BlockSpan)
	}

	// balance 1, min(6*4,25)=24, value symmetry 1, all blocks in one burst
	want := 25.0 + 24 + 25 + 25
	if r.SuspicionScore != want {
		t.Errorf("expected score %f, got %f", want, r.SuspicionScore)
	}
}

func TestDetectBackAndForth_BelowMinInteractions(t *testing.T) {
	d := NewDetector(DefaultConfig())
	transfers := []transfer{
		{From: "0xa1", To: "0xb1", Value: 100, Block: 10},
		{From: "0xb1", To: "0xa1", Value: 100, Block: 15},
		{From: "0xa1", To: "0xb1", Value: 100, Block: 20},
		{From: "0xb1", To: "0xa1", Value: 100, Block: 25},
	}

	if reports := d.DetectBackAndForth(transfers); len(reports) != 0 {
		t.Errorf("4 interactions should not qualify, got %v", reports)
	}
}

func TestDetectBackAndForth_OneDirectional(t *testing.T) {
	d := NewDetector(DefaultConfig())
	var transfers []transfer
	for i := int64(0); i < 8; i++ {
		transfers = append(transfers, transfer{From: "0xa1", To: "0xb1", Value: 50, Block: 10 + i})
	}

	if reports := d.DetectBackAndForth(transfers); len(reports) != 0 {
		t.Errorf("one-directional flow should not qualify, got %v", reports)
	}
}

func TestDetectBackAndForth_AsymmetryLowersScore(t *testing.T) {
	d := NewDetector(DefaultConfig())
	transfers := []transfer{
		{From: "0xa1", To: "0xb1", Value: 1000, Block: 10},
		{From: "0xa1", To: "0xb1", Value: 1000, Block: 11},
		{From: "0xa1", To: "0xb1", Value: 1000, Block: 12},
		{From: "0xa1", To: "0xb1", Value: 1000, Block: 13},
		{From: "0xb1", To: "0xa1", Value: 100, Block: 14},
	}

	reports := d.DetectBackAndForth(transfers)

	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	// balance 1/4, min(5*4,25)=20, value symmetry 100/4000, single burst
	want := 0.25*25 + 20 + (1-(4000.0-100)/4000)*25 + 25
	if reports[0].SuspicionScore != want {
		t.Errorf("expected score %f, got %f", want, reports[0].SuspicionScore)
	}
}

func TestBlockClustering(t *testing.T) {
	// 4 of 5 blocks inside one run, one far outlier
	got := blockClustering([]int64{10, 20, 30, 40, 5000}, 100)
	if got != 0.8 {
		t.Errorf("expected 0.8, got %f", got)
	}
	if got := blockClustering(nil, 100); got != 0 {
		t.Errorf("expected 0 for empty input, got %f", got)
	}
	if got := blockClustering([]int64{7}, 100); got != 1 {
		t.Errorf("expected 1 for single block, got %f", got)
	}
}
