package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/storage"
)

// TimelineStore is an in-memory implementation of storage.TimelineStore.
type TimelineStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TimelineRecord // keyed by composite key
}

// NewTimelineStore creates a new in-memory timeline store.
func NewTimelineStore() *TimelineStore {
	return &TimelineStore{
		data: make(map[string]*domain.TimelineRecord),
	}
}

// timelineKey generates a unique key for a record.
func timelineKey(tokenAddress string, timelineIndex int) string {
	return fmt.Sprintf("%s|%d", tokenAddress, timelineIndex)
}

// InsertBulk adds multiple records. Fails entire batch on any duplicate.
func (s *TimelineStore) InsertBulk(_ context.Context, records []*domain.TimelineRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.TokenAddress == "" {
			return storage.ErrInvalidInput
		}
		key := timelineKey(r.TokenAddress, r.TimelineIndex)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		s.data[timelineKey(r.TokenAddress, r.TimelineIndex)] = cloneRecord(r)
	}

	return nil
}

// GetByToken retrieves all records for a token, ordered by timeline index ASC.
func (s *TimelineStore) GetByToken(_ context.Context, tokenAddress string) ([]*domain.TimelineRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TimelineRecord
	for _, r := range s.data {
		if r.TokenAddress == tokenAddress {
			result = append(result, cloneRecord(r))
		}
	}

	sortByIndex(result)
	return result, nil
}

// GetByBlockRange retrieves records for a token within [start, end] (inclusive).
func (s *TimelineStore) GetByBlockRange(_ context.Context, tokenAddress string, start, end int64) ([]*domain.TimelineRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TimelineRecord
	for _, r := range s.data {
		if r.TokenAddress == tokenAddress && r.BlockNumber >= start && r.BlockNumber <= end {
			result = append(result, cloneRecord(r))
		}
	}

	sortByIndex(result)
	return result, nil
}

func sortByIndex(records []*domain.TimelineRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].TimelineIndex < records[j].TimelineIndex
	})
}

// cloneRecord copies a record including its slice fields so callers never
// share mutable state with the store.
func cloneRecord(r *domain.TimelineRecord) *domain.TimelineRecord {
	clone := *r
	if len(r.Initiators) > 0 {
		clone.Initiators = append([]string(nil), r.Initiators...)
	}
	if len(r.OriginalValues) > 0 {
		clone.OriginalValues = append([]float64(nil), r.OriginalValues...)
	}
	return &clone
}

var _ storage.TimelineStore = (*TimelineStore)(nil)
