package repository

import (
	"context"
	"errors"

	"hac-portal/internal/domain"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// UserRepository defines persistence operations for the user directory.
// The directory is seeded from configuration at startup; business logic
// only ever sees this interface, so it can be swapped for a real user
// store without touching services.
type UserRepository interface {
	Init(ctx context.Context) error
	Upsert(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
