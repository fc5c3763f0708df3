package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Token Forensics Report\n\n")
	sb.WriteString(fmt.Sprintf("Token: `%s`\n\n", r.TokenAddress))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Timeline Summary
	sb.WriteString("## Timeline Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Records | %d |\n", r.TimelineSummary.TotalRecords))
	sb.WriteString(fmt.Sprintf("| Plain Transfers | %d |\n", r.TimelineSummary.TransferCount))
	sb.WriteString(fmt.Sprintf("| Block Range | %d - %d |\n", r.TimelineSummary.BlockRangeStart, r.TimelineSummary.BlockRangeEnd))
	sb.WriteString(fmt.Sprintf("| Unique Initiators | %d |\n", r.TimelineSummary.UniqueInitiators))
	sb.WriteString("\n")

	if len(r.TimelineSummary.TypeCounts) > 0 {
		sb.WriteString("### Records by Transaction Type\n\n")
		sb.WriteString("| Type | Count | Total Value |\n")
		sb.WriteString("|------|-------|-------------|\n")
		for _, row := range r.TimelineSummary.TypeCounts {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.6f |\n",
				row.TransactionType, row.Count, row.TotalValue))
		}
		sb.WriteString("\n")
	}

	// Cluster
	sb.WriteString("## Cluster Analysis\n\n")
	if r.Cluster != nil && r.Cluster.ConfidenceLevel != "" && len(r.Cluster.Addresses) > 0 {
		sb.WriteString(fmt.Sprintf("**Cluster:** %s\n\n", r.Cluster.ClusterID))
		sb.WriteString(fmt.Sprintf("**Confidence:** %s\n\n", r.Cluster.ConfidenceLevel))
		sb.WriteString(fmt.Sprintf("**Reasoning:** %s\n\n", r.Cluster.Reasoning))
		sb.WriteString("### Member Addresses\n\n")
		for _, addr := range r.Cluster.Addresses {
			sb.WriteString(fmt.Sprintf("- `%s`\n", addr))
		}
		sb.WriteString("\n")
	} else if r.Cluster != nil && r.Cluster.Message != "" {
		sb.WriteString(r.Cluster.Message + "\n\n")
	} else {
		sb.WriteString("No cluster identified.\n\n")
	}

	// Active traders
	traders := activeTraderRows(r.Cluster)
	sb.WriteString("## Most Active Traders\n\n")
	if len(traders) > 0 {
		sb.WriteString("| Address | Swaps | Funded By Cluster | Funded Cluster | Coordinated | Details |\n")
		sb.WriteString("|---------|-------|-------------------|----------------|-------------|--------|\n")
		for _, t := range traders {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s |\n",
				t.Address, t.SwapCount,
				yesNo(t.FundedByCluster), yesNo(t.FundedCluster), yesNo(t.CoordinatedWithCluster),
				t.Details))
		}
	} else {
		sb.WriteString("No active traders outside the cluster.\n")
	}
	sb.WriteString("\n")

	// Patterns
	sb.WriteString("## Manipulation Patterns\n\n")
	if len(r.Patterns) > 0 {
		sb.WriteString("| Pattern | Score | Txs | Total Value | Block Span | Addresses |\n")
		sb.WriteString("|---------|-------|-----|-------------|------------|----------|\n")
		for _, p := range r.Patterns {
			sb.WriteString(fmt.Sprintf("| %s | %.1f | %d | %.6f | %d | %s |\n",
				p.PatternType, p.SuspicionScore, p.TxCount, p.TotalValue, p.BlockSpan,
				strings.Join(p.Addresses, ", ")))
		}
		sb.WriteString("\n")
		for _, p := range r.Patterns {
			sb.WriteString(fmt.Sprintf("- **%s** (%.1f): %s\n", p.PatternType, p.SuspicionScore, p.Description))
		}
	} else {
		sb.WriteString("No manipulation patterns detected.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
