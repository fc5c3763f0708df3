package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/storage"
)

// PatternStore implements storage.PatternStore using PostgreSQL.
type PatternStore struct {
	pool *Pool
}

// NewPatternStore creates a new PatternStore.
func NewPatternStore(pool *Pool) *PatternStore {
	return &PatternStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PatternStore = (*PatternStore)(nil)

// InsertBulk adds multiple reports atomically.
func (s *PatternStore) InsertBulk(ctx context.Context, reports []*domain.PatternReport) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO pattern_reports (
			token_address, pattern_type, addresses, suspicion_score, description, tx_count, total_value, block_span, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, r := range reports {
		addresses := r.Addresses
		if addresses == nil {
			addresses = []string{}
		}
		_, err := tx.Exec(ctx, query,
			r.TokenAddress,
			r.PatternType,
			addresses,
			r.SuspicionScore,
			r.Description,
			r.TxCount,
			r.TotalValue,
			r.BlockSpan,
			r.CreatedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert pattern report in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByToken retrieves all reports for a token, ordered by suspicion score DESC.
func (s *PatternStore) GetByToken(ctx context.Context, tokenAddress string) ([]*domain.PatternReport, error) {
	query := `
		SELECT id, token_address, pattern_type, addresses, suspicion_score, description, tx_count, total_value, block_span, created_at
		FROM pattern_reports
		WHERE token_address = $1
		ORDER BY suspicion_score DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("get pattern reports by token: %w", err)
	}
	defer rows.Close()

	return scanPatternReports(rows)
}

// GetByType retrieves reports of one pattern type for a token, ordered by suspicion score DESC.
func (s *PatternStore) GetByType(ctx context.Context, tokenAddress, patternType string) ([]*domain.PatternReport, error) {
	query := `
		SELECT id, token_address, pattern_type, addresses, suspicion_score, description, tx_count, total_value, block_span, created_at
		FROM pattern_reports
		WHERE token_address = $1 AND pattern_type = $2
		ORDER BY suspicion_score DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenAddress, patternType)
	if err != nil {
		return nil, fmt.Errorf("get pattern reports by type: %w", err)
	}
	defer rows.Close()

	return scanPatternReports(rows)
}

// scanPatternReports scans multiple rows into a slice of PatternReport.
func scanPatternReports(rows pgx.Rows) ([]*domain.PatternReport, error) {
	var reports []*domain.PatternReport

	for rows.Next() {
		var r domain.PatternReport

		err := rows.Scan(
			&r.ID,
			&r.TokenAddress,
			&r.PatternType,
			&r.Addresses,
			&r.SuspicionScore,
			&r.Description,
			&r.TxCount,
			&r.TotalValue,
			&r.BlockSpan,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pattern report row: %w", err)
		}

		reports = append(reports, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pattern report rows: %w", err)
	}

	return reports, nil
}
