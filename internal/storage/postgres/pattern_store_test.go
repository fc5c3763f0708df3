package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evm-token-lab/internal/domain"
)

func createTestPatternReport(patternType string, score float64) *domain.PatternReport {
	return &domain.PatternReport{
		TokenAddress:   testToken,
		PatternType:    patternType,
		Addresses:      []string{"0xa1", "0xb1"},
		SuspicionScore: score,
		Description:    "circular trading across 2 addresses",
		TxCount:        6,
		TotalValue:     1200,
		BlockSpan:      40,
		CreatedAt:      1000,
	}
}

func TestPatternStore_InsertBulkAndGetByToken(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPatternStore(pool)

	reports := []*domain.PatternReport{
		createTestPatternReport(domain.PatternCircular, 40),
		createTestPatternReport(domain.PatternVolumePump, 90),
		createTestPatternReport(domain.PatternBackAndForth, 65),
	}
	require.NoError(t, store.InsertBulk(ctx, reports))

	retrieved, err := store.GetByToken(ctx, testToken)
	require.NoError(t, err)
	require.Len(t, retrieved, 3)

	assert.Equal(t, domain.PatternVolumePump, retrieved[0].PatternType)
	assert.Equal(t, domain.PatternBackAndForth, retrieved[1].PatternType)
	assert.Equal(t, domain.PatternCircular, retrieved[2].PatternType)

	first := retrieved[0]
	assert.NotZero(t, first.ID)
	assert.Equal(t, []string{"0xa1", "0xb1"}, first.Addresses)
	assert.InDelta(t, 90, first.SuspicionScore, 0.0001)
	assert.Equal(t, 6, first.TxCount)
	assert.InDelta(t, 1200, first.TotalValue, 0.0001)
	assert.Equal(t, int64(40), first.BlockSpan)
	assert.Equal(t, int64(1000), first.CreatedAt)
}

func TestPatternStore_GetByType(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPatternStore(pool)

	reports := []*domain.PatternReport{
		createTestPatternReport(domain.PatternCircular, 40),
		createTestPatternReport(domain.PatternCircular, 80),
		createTestPatternReport(domain.PatternVolumePump, 90),
	}
	require.NoError(t, store.InsertBulk(ctx, reports))

	circular, err := store.GetByType(ctx, testToken, domain.PatternCircular)
	require.NoError(t, err)
	require.Len(t, circular, 2)
	assert.InDelta(t, 80, circular[0].SuspicionScore, 0.0001)
	assert.InDelta(t, 40, circular[1].SuspicionScore, 0.0001)

	none, err := store.GetByType(ctx, testToken, domain.PatternCoordinated)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPatternStore_InsertBulkEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPatternStore(pool)
	assert.NoError(t, store.InsertBulk(context.Background(), nil))
}
