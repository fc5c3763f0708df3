package clickhouse

import (
	"context"
	"fmt"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/storage"
)

// TimelineStore implements storage.TimelineStore using ClickHouse.
type TimelineStore struct {
	conn *Conn
}

// NewTimelineStore creates a new TimelineStore.
func NewTimelineStore(conn *Conn) *TimelineStore {
	return &TimelineStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TimelineStore = (*TimelineStore)(nil)

// InsertBulk adds multiple records. Fails entire batch on duplicate
// (token_address, timeline_index).
func (s *TimelineStore) InsertBulk(ctx context.Context, records []*domain.TimelineRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		token string
		index int
	}
	seen := make(map[key]struct{})
	for _, r := range records {
		k := key{r.TokenAddress, r.TimelineIndex}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, r := range records {
		exists, err := s.exists(ctx, r.TokenAddress, r.TimelineIndex)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO timeline_records (
			token_address, timeline_index, block_number, tx_hash, event_type,
			from_address, to_address, pair_address, value, counter_value,
			transaction_type, initiators, transfer_count, related_transfers,
			aggregated_count, original_values
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.TokenAddress, uint32(r.TimelineIndex), uint64(r.BlockNumber), r.TxHash, r.EventType,
			r.FromAddress, r.ToAddress, r.PairAddress, r.Value, r.CounterValue,
			r.TransactionType, r.Initiators, uint32(r.TransferCount), r.RelatedTransfers,
			uint32(r.AggregatedCount), r.OriginalValues,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByToken retrieves all records for a token, ordered by timeline index ASC.
func (s *TimelineStore) GetByToken(ctx context.Context, tokenAddress string) ([]*domain.TimelineRecord, error) {
	query := `
		SELECT token_address, timeline_index, block_number, tx_hash, event_type,
		       from_address, to_address, pair_address, value, counter_value,
		       transaction_type, initiators, transfer_count, related_transfers,
		       aggregated_count, original_values
		FROM timeline_records
		WHERE token_address = ?
		ORDER BY timeline_index ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("query by token: %w", err)
	}
	defer rows.Close()

	return scanTimelineRecords(rows)
}

// GetByBlockRange retrieves records for a token within [start, end] (inclusive).
func (s *TimelineStore) GetByBlockRange(ctx context.Context, tokenAddress string, start, end int64) ([]*domain.TimelineRecord, error) {
	query := `
		SELECT token_address, timeline_index, block_number, tx_hash, event_type,
		       from_address, to_address, pair_address, value, counter_value,
		       transaction_type, initiators, transfer_count, related_transfers,
		       aggregated_count, original_values
		FROM timeline_records
		WHERE token_address = ? AND block_number >= ? AND block_number <= ?
		ORDER BY timeline_index ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenAddress, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by block range: %w", err)
	}
	defer rows.Close()

	return scanTimelineRecords(rows)
}

// exists checks if a record with the given key exists.
func (s *TimelineStore) exists(ctx context.Context, tokenAddress string, timelineIndex int) (bool, error) {
	query := `
		SELECT count(*) FROM timeline_records
		WHERE token_address = ? AND timeline_index = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, tokenAddress, uint32(timelineIndex)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanTimelineRecords scans multiple rows into a slice.
func scanTimelineRecords(rows chRows) ([]*domain.TimelineRecord, error) {
	var records []*domain.TimelineRecord

	for rows.Next() {
		var r domain.TimelineRecord
		var timelineIndex, transferCount, aggregatedCount uint32
		var blockNumber uint64

		err := rows.Scan(
			&r.TokenAddress, &timelineIndex, &blockNumber, &r.TxHash, &r.EventType,
			&r.FromAddress, &r.ToAddress, &r.PairAddress, &r.Value, &r.CounterValue,
			&r.TransactionType, &r.Initiators, &transferCount, &r.RelatedTransfers,
			&aggregatedCount, &r.OriginalValues,
		)
		if err != nil {
			return nil, fmt.Errorf("scan timeline record row: %w", err)
		}

		r.TimelineIndex = int(timelineIndex)
		r.BlockNumber = int64(blockNumber)
		r.TransferCount = int(transferCount)
		r.AggregatedCount = int(aggregatedCount)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline record rows: %w", err)
	}

	return records, nil
}
