package reporting

import (
	"fmt"
	"strconv"
	"strings"

	"evm-token-lab/internal/domain"
)

// timelineHeader mirrors the ingestion column order so exported
// timelines can be fed back into the analyzer.
var timelineHeader = []string{
	"block_number",
	"event_type",
	"from_address",
	"to_address",
	"value_formatted",
	"transaction_type",
	"initiators",
	"tx_hash",
	"pair_address",
	"transfer_count",
	"related_transfers",
}

// RenderTimelineTSV renders a classified timeline as tab-separated values.
func RenderTimelineTSV(records []*domain.TimelineRecord) string {
	var sb strings.Builder

	sb.WriteString(strings.Join(timelineHeader, "\t"))
	sb.WriteString("\n")

	for _, rec := range records {
		fields := []string{
			strconv.FormatInt(rec.BlockNumber, 10),
			rec.EventType,
			rec.FromAddress,
			rec.ToAddress,
			formatValue(rec.Value),
			rec.TransactionType,
			strings.Join(rec.Initiators, ","),
			rec.TxHash,
			rec.PairAddress,
			strconv.Itoa(rec.TransferCount),
			rec.RelatedTransfers,
		}
		sb.WriteString(strings.Join(fields, "\t"))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatValue prints values without scientific notation and without
// trailing zeros, matching the formatting of the ingested files.
func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// RenderPatternsCSV renders pattern reports as a CSV string.
func RenderPatternsCSV(patterns []*domain.PatternReport) string {
	var sb strings.Builder

	sb.WriteString("pattern_type,suspicion_score,tx_count,total_value,block_span,addresses,description\n")
	for _, p := range patterns {
		sb.WriteString(fmt.Sprintf("%s,%.2f,%d,%.6f,%d,%s,%s\n",
			p.PatternType,
			p.SuspicionScore,
			p.TxCount,
			p.TotalValue,
			p.BlockSpan,
			csvQuote(strings.Join(p.Addresses, ";")),
			csvQuote(p.Description)))
	}

	return sb.String()
}

// csvQuote quotes a field if it contains a comma or quote.
func csvQuote(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
