package reporting

import (
	"encoding/json"
	"testing"

	"evm-token-lab/internal/domain"
)

func TestRenderClusterJSON(t *testing.T) {
	cluster := &domain.ClusterResult{
		TokenAddress:    testToken,
		ClusterID:       "RugPull_Owner_Cluster_1",
		Addresses:       []string{"0xa1", "0xb1"},
		ConfidenceLevel: domain.ConfidenceHigh,
		Reasoning:       "coordinated buys across 2 addresses",
		ActiveTraders: []*domain.ActiveTraderLinks{
			{Address: "0xd1", SwapCount: 9, CoordinatedWithCluster: true},
		},
	}

	out, err := RenderClusterJSON(cluster)
	if err != nil {
		t.Fatalf("RenderClusterJSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded["token_address"] != testToken {
		t.Errorf("wrong token_address: %v", decoded["token_address"])
	}
	if decoded["cluster_id"] != "RugPull_Owner_Cluster_1" {
		t.Errorf("wrong cluster_id: %v", decoded["cluster_id"])
	}
	if decoded["confidence_level"] != domain.ConfidenceHigh {
		t.Errorf("wrong confidence_level: %v", decoded["confidence_level"])
	}

	addrs, ok := decoded["addresses"].([]interface{})
	if !ok || len(addrs) != 2 {
		t.Errorf("wrong addresses: %v", decoded["addresses"])
	}

	traders, ok := decoded["most_active_traders"].([]interface{})
	if !ok || len(traders) != 1 {
		t.Fatalf("wrong most_active_traders: %v", decoded["most_active_traders"])
	}
	trader := traders[0].(map[string]interface{})
	if trader["address"] != "0xd1" || trader["swap_count"] != float64(9) {
		t.Errorf("wrong trader row: %v", trader)
	}
	if trader["coordinated_with_cluster"] != true {
		t.Errorf("coordination flag missing: %v", trader)
	}
}

func TestRenderClusterJSON_NoCluster(t *testing.T) {
	cluster := &domain.ClusterResult{
		TokenAddress:    testToken,
		ConfidenceLevel: domain.ConfidenceNone,
		Message:         "no suspicious cluster identified",
	}

	out, err := RenderClusterJSON(cluster)
	if err != nil {
		t.Fatalf("RenderClusterJSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded["message"] != cluster.Message {
		t.Errorf("wrong message: %v", decoded["message"])
	}
	if _, present := decoded["addresses"]; present {
		t.Errorf("empty addresses should be omitted: %s", out)
	}
	if _, present := decoded["cluster_id"]; present {
		t.Errorf("empty cluster_id should be omitted: %s", out)
	}
}

func TestRenderPatternsJSON(t *testing.T) {
	patterns := []*domain.PatternReport{
		{
			PatternType:    domain.PatternBackAndForth,
			Addresses:      []string{"0xa1", "0xb1"},
			SuspicionScore: 99,
			Description:    "back-and-forth trading",
			TxCount:        6,
			TotalValue:     600,
			BlockSpan:      25,
		},
	}

	out, err := RenderPatternsJSON(patterns)
	if err != nil {
		t.Fatalf("RenderPatternsJSON: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 report, got %d", len(decoded))
	}

	p := decoded[0]
	if p["pattern_type"] != domain.PatternBackAndForth {
		t.Errorf("wrong pattern_type: %v", p["pattern_type"])
	}
	if p["suspicion_score"] != float64(99) {
		t.Errorf("wrong suspicion_score: %v", p["suspicion_score"])
	}
	if p["block_span"] != float64(25) {
		t.Errorf("wrong block_span: %v", p["block_span"])
	}
}

func TestRenderPatternsJSON_Empty(t *testing.T) {
	out, err := RenderPatternsJSON(nil)
	if err != nil {
		t.Fatalf("RenderPatternsJSON: %v", err)
	}
	if out != "[]" {
		t.Errorf("expected empty array, got %s", out)
	}
}
