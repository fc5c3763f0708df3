package reporting

import (
	"encoding/json"
	"fmt"

	"evm-token-lab/internal/domain"
)

// clusterJSON is the wire shape for a cluster result.
type clusterJSON struct {
	TokenAddress    string            `json:"token_address"`
	ClusterID       string            `json:"cluster_id,omitempty"`
	Addresses       []string          `json:"addresses,omitempty"`
	ConfidenceLevel string            `json:"confidence_level,omitempty"`
	Reasoning       string            `json:"reasoning,omitempty"`
	Message         string            `json:"message,omitempty"`
	ActiveTraders   []activeTraderJSON `json:"most_active_traders,omitempty"`
}

type activeTraderJSON struct {
	Address                  string `json:"address"`
	SwapCount                int    `json:"swap_count"`
	FundedByCluster          bool   `json:"funded_by_cluster"`
	FundedCluster            bool   `json:"funded_cluster"`
	CoordinatedWithCluster   bool   `json:"coordinated_with_cluster"`
	CoordinatedActionDetails string `json:"coordinated_action_details,omitempty"`
}

// RenderClusterJSON renders a cluster result as indented JSON.
func RenderClusterJSON(r *domain.ClusterResult) (string, error) {
	out := clusterJSON{
		TokenAddress:    r.TokenAddress,
		ClusterID:       r.ClusterID,
		Addresses:       r.Addresses,
		ConfidenceLevel: string(r.ConfidenceLevel),
		Reasoning:       r.Reasoning,
		Message:         r.Message,
	}
	for _, trader := range r.ActiveTraders {
		out.ActiveTraders = append(out.ActiveTraders, activeTraderJSON{
			Address:                  trader.Address,
			SwapCount:                trader.SwapCount,
			FundedByCluster:          trader.FundedByCluster,
			FundedCluster:            trader.FundedCluster,
			CoordinatedWithCluster:   trader.CoordinatedWithCluster,
			CoordinatedActionDetails: trader.CoordinatedActionDetails,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal cluster result: %w", err)
	}
	return string(data), nil
}

// patternJSON is the wire shape for a pattern report.
type patternJSON struct {
	PatternType    string   `json:"pattern_type"`
	Addresses      []string `json:"addresses"`
	SuspicionScore float64  `json:"suspicion_score"`
	Description    string   `json:"description"`
	TxCount        int      `json:"tx_count"`
	TotalValue     float64  `json:"total_value"`
	BlockSpan      int64    `json:"block_span"`
}

// RenderPatternsJSON renders pattern reports as indented JSON.
func RenderPatternsJSON(patterns []*domain.PatternReport) (string, error) {
	out := make([]patternJSON, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, patternJSON{
			PatternType:    p.PatternType,
			Addresses:      p.Addresses,
			SuspicionScore: p.SuspicionScore,
			Description:    p.Description,
			TxCount:        p.TxCount,
			TotalValue:     p.TotalValue,
			BlockSpan:      p.BlockSpan,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal pattern reports: %w", err)
	}
	return string(data), nil
}
