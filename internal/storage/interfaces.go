package storage

import (
	"context"

	"evm-token-lab/internal/domain"
)

// TimelineStore provides access to unified timeline storage.
type TimelineStore interface {
	// InsertBulk adds multiple records. Fails entire batch on duplicate
	// (token_address, timeline_index).
	InsertBulk(ctx context.Context, records []*domain.TimelineRecord) error

	// GetByToken retrieves all records for a token, ordered by timeline index ASC.
	GetByToken(ctx context.Context, tokenAddress string) ([]*domain.TimelineRecord, error)

	// GetByBlockRange retrieves records for a token within [start, end] (inclusive).
	GetByBlockRange(ctx context.Context, tokenAddress string, start, end int64) ([]*domain.TimelineRecord, error)
}

// ClusterResultStore provides access to cluster_results storage.
type ClusterResultStore interface {
	// Insert adds a new result. Returns ErrDuplicateKey if (token_address, created_at) exists.
	Insert(ctx context.Context, r *domain.ClusterResult) error

	// GetByToken retrieves all results for a token, ordered by created_at ASC.
	GetByToken(ctx context.Context, tokenAddress string) ([]*domain.ClusterResult, error)

	// GetLatest retrieves the most recent result for a token. Returns ErrNotFound if none exists.
	GetLatest(ctx context.Context, tokenAddress string) (*domain.ClusterResult, error)
}

// PatternStore provides access to pattern_reports storage.
type PatternStore interface {
	// InsertBulk adds multiple reports atomically.
	InsertBulk(ctx context.Context, reports []*domain.PatternReport) error

	// GetByToken retrieves all reports for a token, ordered by suspicion score DESC.
	GetByToken(ctx context.Context, tokenAddress string) ([]*domain.PatternReport, error)

	// GetByType retrieves reports of one pattern type for a token, ordered by suspicion score DESC.
	GetByType(ctx context.Context, tokenAddress, patternType string) ([]*domain.PatternReport, error)
}
