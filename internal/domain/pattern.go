package domain

// Pattern type labels produced by the detectors.
const (
	PatternCircular     = "circular_trading"
	PatternBackAndForth = "back_and_forth"
	PatternVolumePump   = "volume_pumping"
	PatternCoordinated  = "coordinated_trading"
)

// PatternReport is one detected manipulation pattern.
// Corresponds to pattern_reports table in PostgreSQL.
type PatternReport struct {
	ID             int64    // BIGSERIAL primary key
	TokenAddress   string   // analyzed token contract, lowercase hex
	PatternType    string   // circular_trading | back_and_forth | ...
	Addresses      []string // participating addresses, detector-specific order
	SuspicionScore float64  // 0-100 heuristic rating
	Description    string   // human-readable summary
	TxCount        int      // transactions contributing to the pattern
	TotalValue     float64  // total token value moved within the pattern
	BlockSpan      int64    // blocks between first and last contribution
	CreatedAt      int64    // record creation timestamp (ms)
}
