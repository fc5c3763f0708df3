package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/storage"
)

// ClusterResultStore is an in-memory implementation of storage.ClusterResultStore.
type ClusterResultStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.ClusterResult // keyed by composite key
	nextID int64
}

// NewClusterResultStore creates a new in-memory cluster result store.
func NewClusterResultStore() *ClusterResultStore {
	return &ClusterResultStore{
		data:   make(map[string]*domain.ClusterResult),
		nextID: 1,
	}
}

// clusterKey generates a unique key for a result.
func clusterKey(tokenAddress string, createdAt int64) string {
	return fmt.Sprintf("%s|%d", tokenAddress, createdAt)
}

// Insert adds a new result. Returns ErrDuplicateKey if (token_address, created_at) exists.
func (s *ClusterResultStore) Insert(_ context.Context, r *domain.ClusterResult) error {
	if r == nil || r.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	key := clusterKey(r.TokenAddress, r.CreatedAt)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	clone := cloneClusterResult(r)
	clone.ID = s.nextID
	s.nextID++
	s.data[key] = clone
	r.ID = clone.ID
	return nil
}

// GetByToken retrieves all results for a token, ordered by created_at ASC.
func (s *ClusterResultStore) GetByToken(_ context.Context, tokenAddress string) ([]*domain.ClusterResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ClusterResult
	for _, r := range s.data {
		if r.TokenAddress == tokenAddress {
			result = append(result, cloneClusterResult(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// GetLatest retrieves the most recent result for a token. Returns ErrNotFound if none exists.
func (s *ClusterResultStore) GetLatest(ctx context.Context, tokenAddress string) (*domain.ClusterResult, error) {
	results, err := s.GetByToken(ctx, tokenAddress)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, storage.ErrNotFound
	}
	return results[len(results)-1], nil
}

// cloneClusterResult copies a result including its nested slices.
func cloneClusterResult(r *domain.ClusterResult) *domain.ClusterResult {
	clone := *r
	if len(r.Addresses) > 0 {
		clone.Addresses = append([]string(nil), r.Addresses...)
	}
	if len(r.ActiveTraders) > 0 {
		clone.ActiveTraders = make([]*domain.ActiveTraderLinks, len(r.ActiveTraders))
		for i, t := range r.ActiveTraders {
			tc := *t
			clone.ActiveTraders[i] = &tc
		}
	}
	return &clone
}

var _ storage.ClusterResultStore = (*ClusterResultStore)(nil)
