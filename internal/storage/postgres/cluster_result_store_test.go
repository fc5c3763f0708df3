package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/storage"
)

const testToken = "0x00000000000000000000000000000000000000aa"

func createTestClusterResult(createdAt int64) *domain.ClusterResult {
	return &domain.ClusterResult{
		TokenAddress:    testToken,
		ClusterID:       "RugPull_Owner_Cluster_1",
		Addresses:       []string{"0xa1", "0xb1", "0xc1"},
		ConfidenceLevel: domain.ConfidenceHigh,
		Reasoning:       "coordinated buys and sells across 3 addresses",
		ActiveTraders: []*domain.ActiveTraderLinks{
			{
				Address:                  "0xd1",
				SwapCount:                12,
				FundedByCluster:          true,
				CoordinatedWithCluster:   true,
				CoordinatedActionDetails: "BUY of 500 at block 100 with 2 others",
			},
		},
		CreatedAt: createdAt,
	}
}

func TestClusterResultStore_InsertAndGetLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClusterResultStore(pool)

	result := createTestClusterResult(1000)
	err := store.Insert(ctx, result)
	require.NoError(t, err)
	assert.NotZero(t, result.ID)

	retrieved, err := store.GetLatest(ctx, testToken)
	require.NoError(t, err)

	assert.Equal(t, result.ClusterID, retrieved.ClusterID)
	assert.Equal(t, result.Addresses, retrieved.Addresses)
	assert.Equal(t, result.ConfidenceLevel, retrieved.ConfidenceLevel)
	assert.Equal(t, result.Reasoning, retrieved.Reasoning)
	assert.Equal(t, result.CreatedAt, retrieved.CreatedAt)
	require.Len(t, retrieved.ActiveTraders, 1)
	assert.Equal(t, "0xd1", retrieved.ActiveTraders[0].Address)
	assert.Equal(t, 12, retrieved.ActiveTraders[0].SwapCount)
	assert.True(t, retrieved.ActiveTraders[0].FundedByCluster)
	assert.Equal(t, result.ActiveTraders[0].CoordinatedActionDetails, retrieved.ActiveTraders[0].CoordinatedActionDetails)
}

func TestClusterResultStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClusterResultStore(pool)

	require.NoError(t, store.Insert(ctx, createTestClusterResult(1000)))

	err := store.Insert(ctx, createTestClusterResult(1000))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestClusterResultStore_GetByTokenOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClusterResultStore(pool)

	for _, ts := range []int64{3000, 1000, 2000} {
		require.NoError(t, store.Insert(ctx, createTestClusterResult(ts)))
	}

	results, err := store.GetByToken(ctx, testToken)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(1000), results[0].CreatedAt)
	assert.Equal(t, int64(2000), results[1].CreatedAt)
	assert.Equal(t, int64(3000), results[2].CreatedAt)
}

func TestClusterResultStore_GetLatestNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewClusterResultStore(pool).GetLatest(context.Background(), "0xunknown")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClusterResultStore_NoClusterResult(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClusterResultStore(pool)

	// An analysis that found nothing still leaves a row
	empty := &domain.ClusterResult{
		TokenAddress:    testToken,
		ConfidenceLevel: domain.ConfidenceNone,
		Message:         "no suspicious cluster identified",
		CreatedAt:       1000,
	}
	require.NoError(t, store.Insert(ctx, empty))

	retrieved, err := store.GetLatest(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceNone, retrieved.ConfidenceLevel)
	assert.Equal(t, empty.Message, retrieved.Message)
	assert.Empty(t, retrieved.Addresses)
	assert.Empty(t, retrieved.ActiveTraders)
}
