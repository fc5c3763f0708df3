package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/storage"
)

// ClusterResultStore implements storage.ClusterResultStore using PostgreSQL.
type ClusterResultStore struct {
	pool *Pool
}

// NewClusterResultStore creates a new ClusterResultStore.
func NewClusterResultStore(pool *Pool) *ClusterResultStore {
	return &ClusterResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClusterResultStore = (*ClusterResultStore)(nil)

// Insert adds a new result. Returns ErrDuplicateKey if (token_address, created_at) exists.
func (s *ClusterResultStore) Insert(ctx context.Context, r *domain.ClusterResult) error {
	traders, err := json.Marshal(r.ActiveTraders)
	if err != nil {
		return fmt.Errorf("marshal active traders: %w", err)
	}

	addresses := r.Addresses
	if addresses == nil {
		addresses = []string{}
	}

	query := `
		INSERT INTO cluster_results (
			token_address, cluster_id, addresses, confidence_level, reasoning, message, active_traders, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err = s.pool.QueryRow(ctx, query,
		r.TokenAddress,
		r.ClusterID,
		addresses,
		r.ConfidenceLevel,
		r.Reasoning,
		r.Message,
		traders,
		r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert cluster result: %w", err)
	}
	return nil
}

// GetByToken retrieves all results for a token, ordered by created_at ASC.
func (s *ClusterResultStore) GetByToken(ctx context.Context, tokenAddress string) ([]*domain.ClusterResult, error) {
	query := `
		SELECT id, token_address, cluster_id, addresses, confidence_level, reasoning, message, active_traders, created_at
		FROM cluster_results
		WHERE token_address = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("get cluster results by token: %w", err)
	}
	defer rows.Close()

	var results []*domain.ClusterResult
	for rows.Next() {
		r, err := scanClusterResult(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cluster result rows: %w", err)
	}

	return results, nil
}

// GetLatest retrieves the most recent result for a token. Returns ErrNotFound if none exists.
func (s *ClusterResultStore) GetLatest(ctx context.Context, tokenAddress string) (*domain.ClusterResult, error) {
	query := `
		SELECT id, token_address, cluster_id, addresses, confidence_level, reasoning, message, active_traders, created_at
		FROM cluster_results
		WHERE token_address = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, tokenAddress)
	r, err := scanClusterResult(row.Scan)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest cluster result: %w", err)
	}
	return r, nil
}

// scanClusterResult scans one row via the given scan function.
func scanClusterResult(scan func(dest ...any) error) (*domain.ClusterResult, error) {
	var r domain.ClusterResult
	var traders []byte

	err := scan(
		&r.ID,
		&r.TokenAddress,
		&r.ClusterID,
		&r.Addresses,
		&r.ConfidenceLevel,
		&r.Reasoning,
		&r.Message,
		&traders,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(traders) > 0 {
		if err := json.Unmarshal(traders, &r.ActiveTraders); err != nil {
			return nil, fmt.Errorf("unmarshal active traders: %w", err)
		}
	}
	return &r, nil
}
