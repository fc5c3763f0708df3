package patterns

import (
	"testing"

	"evm-token-lab/internal/domain"
)

func TestDetectVolumePumping_AboveThreshold(t *testing.T) {
	d := NewDetector(DefaultConfig())
	var transfers []transfer
	for i := int64(0); i < 5; i++ {
		transfers = append(transfers, transfer{
			From: "0xa1", To: "0xb1", Value: 400_000, Block: 10 + i*10,
		})
	}

	reports := d.DetectVolumePumping(transfers)

	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	r := reports[0]
	if r.PatternType != domain.PatternVolumePump {
		t.Errorf("wrong pattern type: %s", r.PatternType)
	}
	if r.TotalValue != 2_000_000 {
		t.Errorf("expected total 2000000, got %f", r.TotalValue)
	}
	if r.TxCount != 5 {
		t.Errorf("expected 5 transfers, got %d", r.TxCount)
	}
	if r.BlockSpan != 40 {
		t.Errorf("expected block span 40, got %d", r.BlockSpan)
	}

	// min(2*10,30)=20, min(5*4,25)=20, all values identical (+25),
	// perfectly regular intervals (+20)
	want := 20.0 + 20 + 25 + 20
	if r.SuspicionScore != want {
		t.Errorf("expected score %f, got %f", want, r.SuspicionScore)
	}
}

func TestDetectVolumePumping_BelowThreshold(t *testing.T) {
	d := NewDetector(DefaultConfig())
	transfers := []transfer{
		{From: "0xa1", To: "0xb1", Value: 500_000, Block: 10},
		{From: "0xb1", To: "0xa1", Value: 400_000, Block: 20},
	}

	if reports := d.DetectVolumePumping(transfers); len(reports) != 0 {
		t.Errorf("volume below threshold should not qualify, got %v", reports)
	}
}

func TestDetectVolumePumping_ScoreCappedAt100(t *testing.T) {
	d := NewDetector(DefaultConfig())
	var transfers []transfer
	for i := int64(0); i < 10; i++ {
		transfers = append(transfers, transfer{
			From: "0xa1", To: "0xb1", Value: 1_000_000, Block: 100 + i,
		})
	}

	reports := d.DetectVolumePumping(transfers)

	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	if reports[0].SuspicionScore != maxScore {
		t.Errorf("expected score %f, got %f", maxScore, reports[0].SuspicionScore)
	}
}

func TestDetectVolumePumping_CustomThreshold(t *testing.T) {
	d := NewDetector(Config{VolumeThreshold: 1000})
	transfers := []transfer{
		{From: "0xa1", To: "0xb1", Value: 600, Block: 10},
		{From: "0xa1", To: "0xb1", Value: 600, Block: 12},
	}

	if reports := d.DetectVolumePumping(transfers); len(reports) != 1 {
		t.Errorf("expected lowered threshold to qualify the pair, got %d reports", len(reports))
	}
}

func TestIntervalRegularity(t *testing.T) {
	if got := intervalRegularity([]int64{10, 20, 30, 40}); got != 1 {
		t.Errorf("regular intervals should score 1, got %f", got)
	}
	if got := intervalRegularity([]int64{10, 50}); got != 1 {
		t.Errorf("fewer than 3 blocks should score 1, got %f", got)
	}
	if got := intervalRegularity([]int64{10, 10, 10}); got != 1 {
		t.Errorf("same-block activity should score 1, got %f", got)
	}
	regular := intervalRegularity([]int64{10, 20, 30, 40, 50})
	erratic := intervalRegularity([]int64{10, 11, 500, 501, 5000})
	if erratic >= regular {
		t.Errorf("erratic intervals (%f) should score below regular (%f)", erratic, regular)
	}
}
