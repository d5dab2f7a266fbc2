package repository

import (
	"context"

	"hac-portal/internal/domain"
)

// AdjustmentRepository defines persistence for the balance ledger.
// The ledger is append-only: there is no update or delete.
type AdjustmentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, adj *domain.BalanceAdjustment) (int64, error)
	// ListByUser returns the user's adjustments, newest first.
	ListByUser(ctx context.Context, userID int64) ([]domain.BalanceAdjustment, error)
}
