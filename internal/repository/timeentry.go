package repository

import (
	"context"
	"errors"
	"time"

	"hac-portal/internal/domain"
)

// ErrOpenEntry is returned when inserting an open entry for a user who
// already has one. The storage layer enforces the single-open-entry
// invariant, so concurrent clock-ins cannot both succeed.
var ErrOpenEntry = errors.New("open time entry already exists")

// TimeEntryRepository defines persistence operations for time entries.
type TimeEntryRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, entry *domain.TimeEntry) (int64, error)
	Get(ctx context.Context, id int64) (*domain.TimeEntry, error)
	// GetOpen returns the user's open entry, ErrNotFound if none.
	GetOpen(ctx context.Context, userID int64) (*domain.TimeEntry, error)
	SetClockOut(ctx context.Context, id int64, clockOut time.Time) error
	Update(ctx context.Context, id int64, clockIn time.Time, clockOut *time.Time) error
	Delete(ctx context.Context, id int64) error
	// ListByUser returns all of the user's entries, newest clock-in first.
	ListByUser(ctx context.Context, userID int64) ([]domain.TimeEntry, error)
	// ListCompleted returns only entries with a clock-out set.
	ListCompleted(ctx context.Context, userID int64) ([]domain.TimeEntry, error)
}
