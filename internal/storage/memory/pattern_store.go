package memory

import (
	"context"
	"sort"
	"sync"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/storage"
)

// PatternStore is an in-memory implementation of storage.PatternStore.
type PatternStore struct {
	mu     sync.RWMutex
	data   []*domain.PatternReport
	nextID int64
}

// NewPatternStore creates a new in-memory pattern store.
func NewPatternStore() *PatternStore {
	return &PatternStore{nextID: 1}
}

// InsertBulk adds multiple reports atomically.
func (s *PatternStore) InsertBulk(_ context.Context, reports []*domain.PatternReport) error {
	if len(reports) == 0 {
		return nil
	}

	for _, r := range reports {
		if r == nil || r.TokenAddress == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range reports {
		clone := clonePatternReport(r)
		clone.ID = s.nextID
		s.nextID++
		s.data = append(s.data, clone)
	}

	return nil
}

// GetByToken retrieves all reports for a token, ordered by suspicion score DESC.
func (s *PatternStore) GetByToken(_ context.Context, tokenAddress string) ([]*domain.PatternReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PatternReport
	for _, r := range s.data {
		if r.TokenAddress == tokenAddress {
			result = append(result, clonePatternReport(r))
		}
	}

	sortByScore(result)
	return result, nil
}

// GetByType retrieves reports of one pattern type for a token, ordered by suspicion score DESC.
func (s *PatternStore) GetByType(_ context.Context, tokenAddress, patternType string) ([]*domain.PatternReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PatternReport
	for _, r := range s.data {
		if r.TokenAddress == tokenAddress && r.PatternType == patternType {
			result = append(result, clonePatternReport(r))
		}
	}

	sortByScore(result)
	return result, nil
}

func sortByScore(reports []*domain.PatternReport) {
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].SuspicionScore != reports[j].SuspicionScore {
			return reports[i].SuspicionScore > reports[j].SuspicionScore
		}
		return reports[i].ID < reports[j].ID
	})
}

// clonePatternReport copies a report including its address list.
func clonePatternReport(r *domain.PatternReport) *domain.PatternReport {
	clone := *r
	if len(r.Addresses) > 0 {
		clone.Addresses = append([]string(nil), r.Addresses...)
	}
	return &clone
}

var _ storage.PatternStore = (*PatternStore)(nil)
