package repository

import (
	"context"

	"hac-portal/internal/domain"
)

// InventoryRepository defines persistence for the equipment inventory.
type InventoryRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, item *domain.InventoryItem) (int64, error)
	Get(ctx context.Context, id int64) (*domain.InventoryItem, error)
	Update(ctx context.Context, item *domain.InventoryItem) error
	Delete(ctx context.Context, id int64) error
	// List returns all items ordered by name.
	List(ctx context.Context) ([]domain.InventoryItem, error)
	// ListByIDs returns the matching items ordered by name.
	ListByIDs(ctx context.Context, ids []int64) ([]domain.InventoryItem, error)
	Count(ctx context.Context) (int64, error)
}
