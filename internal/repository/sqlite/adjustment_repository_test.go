package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hac-portal/internal/domain"
)

func TestAdjustmentLedger(t *testing.T) {
	db := newTestDB(t)
	initRepos(t, db)
	repo := NewAdjustmentRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	seconds := []int64{3600, -1800, 600}
	for i, s := range seconds {
		adj := &domain.BalanceAdjustment{
			UserID:      7,
			Seconds:     s,
			Reason:      "correction",
			AdminUserID: 1,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		_, err := repo.Create(ctx, adj)
		require.NoError(t, err)
	}

	listed, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	// newest first
	assert.Equal(t, int64(600), listed[0].Seconds)
	assert.Equal(t, int64(3600), listed[2].Seconds)

	other, err := repo.ListByUser(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, other)
}
