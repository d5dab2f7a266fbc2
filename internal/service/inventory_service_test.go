package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hac-portal/internal/domain"
	"hac-portal/internal/repository/sqlite"
)

func newInventoryFixture(t *testing.T) InventoryService {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	items := sqlite.NewInventoryRepository(db)
	require.NoError(t, items.Init(context.Background()))
	return NewInventoryService(items)
}

func TestInventorySeedOnce(t *testing.T) {
	svc := newInventoryFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	items, err := svc.List(ctx)
	require.NoError(t, err)
	seeded := len(items)
	require.NotZero(t, seeded)

	// a second run against a populated table is a no-op
	require.NoError(t, svc.Seed(ctx))
	items, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, seeded)
}

func TestInventoryNameRequired(t *testing.T) {
	svc := newInventoryFixture(t)
	ctx := context.Background()

	err := svc.Create(ctx, &domain.InventoryItem{Name: "   "})
	assert.ErrorIs(t, err, ErrNameRequired)

	item := domain.InventoryItem{Name: "Bomba Peristáltica", Quantity: "1"}
	require.NoError(t, svc.Create(ctx, &item))

	item.Name = ""
	assert.ErrorIs(t, svc.Update(ctx, &item), ErrNameRequired)
}

func TestInventorySelection(t *testing.T) {
	svc := newInventoryFixture(t)
	ctx := context.Background()

	a := domain.InventoryItem{Name: "Anemómetro"}
	b := domain.InventoryItem{Name: "Brújula"}
	require.NoError(t, svc.Create(ctx, &a))
	require.NoError(t, svc.Create(ctx, &b))

	all, err := svc.Selection(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := svc.Selection(ctx, []int64{b.ID})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Brújula", one[0].Name)

	_, err = svc.Selection(ctx, []int64{9999})
	assert.ErrorIs(t, err, ErrNoSelection)
}
