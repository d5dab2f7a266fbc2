package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hac-portal/internal/balance"
	"hac-portal/internal/domain"
	"hac-portal/internal/repository"
)

var (
	// ErrAlreadyClockedIn is returned when the user has an open entry.
	ErrAlreadyClockedIn = errors.New("already clocked in")
	// ErrNotClockedIn is returned when no open entry exists to close.
	ErrNotClockedIn = errors.New("not clocked in")
	// ErrInvalidInterval rejects intervals where clock-out is not after clock-in.
	ErrInvalidInterval = errors.New("clock-out must be after clock-in")
	// ErrReasonRequired rejects balance adjustments without a reason.
	ErrReasonRequired = errors.New("adjustment reason is required")
)

// TrackingService coordinates clocking, entry maintenance and the
// balance ledger.
type TrackingService interface {
	ClockIn(ctx context.Context, userID int64) (*domain.TimeEntry, error)
	ClockOut(ctx context.Context, userID int64) (*domain.TimeEntry, error)
	// ActiveEntry returns the open entry, nil if the user is clocked out.
	ActiveEntry(ctx context.Context, userID int64) (*domain.TimeEntry, error)
	Entries(ctx context.Context, userID int64) ([]domain.TimeEntry, error)
	AddManualEntry(ctx context.Context, userID int64, clockIn, clockOut time.Time) (*domain.TimeEntry, error)
	UpdateEntry(ctx context.Context, id int64, clockIn time.Time, clockOut *time.Time) error
	DeleteEntry(ctx context.Context, id int64) error
	Balance(ctx context.Context, user *domain.User) (balance.Summary, error)
	Adjustments(ctx context.Context, userID int64) ([]domain.BalanceAdjustment, error)
	// SetBalance appends the adjustment that moves the user's total to
	// newTotal (a "[sign]HH:MM" string) and returns the created record.
	SetBalance(ctx context.Context, user *domain.User, adminID int64, newTotal, reason string) (*domain.BalanceAdjustment, error)
}

type trackingService struct {
	entries     repository.TimeEntryRepository
	adjustments repository.AdjustmentRepository
	now         func() time.Time
}

func NewTrackingService(entries repository.TimeEntryRepository, adjustments repository.AdjustmentRepository) TrackingService {
	return &trackingService{
		entries:     entries,
		adjustments: adjustments,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *trackingService) ClockIn(ctx context.Context, userID int64) (*domain.TimeEntry, error) {
	entry := &domain.TimeEntry{
		UserID:  userID,
		ClockIn: s.now(),
	}
	// no read-then-write: the partial unique index decides the race
	if _, err := s.entries.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrOpenEntry) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, err
	}
	return entry, nil
}

func (s *trackingService) ClockOut(ctx context.Context, userID int64) (*domain.TimeEntry, error) {
	entry, err := s.entries.GetOpen(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotClockedIn
		}
		return nil, err
	}

	out := s.now()
	if err := s.entries.SetClockOut(ctx, entry.ID, out); err != nil {
		return nil, err
	}
	entry.ClockOut = &out
	return entry, nil
}

func (s *trackingService) ActiveEntry(ctx context.Context, userID int64) (*domain.TimeEntry, error) {
	entry, err := s.entries.GetOpen(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (s *trackingService) Entries(ctx context.Context, userID int64) ([]domain.TimeEntry, error) {
	return s.entries.ListByUser(ctx, userID)
}

// AddManualEntry records a backfilled interval. Both timestamps are set
// up front, so the user's clocked status never changes.
func (s *trackingService) AddManualEntry(ctx context.Context, userID int64, clockIn, clockOut time.Time) (*domain.TimeEntry, error) {
	if !clockOut.After(clockIn) {
		return nil, ErrInvalidInterval
	}

	out := clockOut.UTC()
	entry := &domain.TimeEntry{
		UserID:   userID,
		ClockIn:  clockIn.UTC(),
		ClockOut: &out,
	}
	if _, err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *trackingService) UpdateEntry(ctx context.Context, id int64, clockIn time.Time, clockOut *time.Time) error {
	if clockOut != nil && !clockOut.After(clockIn) {
		return ErrInvalidInterval
	}
	if _, err := s.entries.Get(ctx, id); err != nil {
		return err
	}
	if err := s.entries.Update(ctx, id, clockIn, clockOut); err != nil {
		if errors.Is(err, repository.ErrOpenEntry) {
			return ErrAlreadyClockedIn
		}
		return err
	}
	return nil
}

func (s *trackingService) DeleteEntry(ctx context.Context, id int64) error {
	return s.entries.Delete(ctx, id)
}

func (s *trackingService) Balance(ctx context.Context, user *domain.User) (balance.Summary, error) {
	if !user.TracksBalance() {
		return balance.Compute(0, nil, nil), nil
	}

	entries, err := s.entries.ListCompleted(ctx, user.ID)
	if err != nil {
		return balance.Summary{}, err
	}
	adjustments, err := s.adjustments.ListByUser(ctx, user.ID)
	if err != nil {
		return balance.Summary{}, err
	}
	return balance.Compute(user.DailyHours, entries, adjustments), nil
}

func (s *trackingService) Adjustments(ctx context.Context, userID int64) ([]domain.BalanceAdjustment, error) {
	return s.adjustments.ListByUser(ctx, userID)
}

func (s *trackingService) SetBalance(ctx context.Context, user *domain.User, adminID int64, newTotal, reason string) (*domain.BalanceAdjustment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	desired, err := balance.Parse(newTotal)
	if err != nil {
		return nil, err
	}

	current, err := s.Balance(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("compute current balance: %w", err)
	}

	adj := &domain.BalanceAdjustment{
		UserID:      user.ID,
		Seconds:     balance.AdjustmentFor(desired, current.Seconds),
		Reason:      reason,
		AdminUserID: adminID,
		CreatedAt:   s.now(),
	}
	if _, err := s.adjustments.Create(ctx, adj); err != nil {
		return nil, err
	}
	return adj, nil
}
