package domain

import "time"

// TimeEntry is one worked interval. ClockOut is nil while the user is
// on the clock; at most one entry per user may be open at a time.
type TimeEntry struct {
	ID       int64
	UserID   int64
	ClockIn  time.Time
	ClockOut *time.Time
}

func (e *TimeEntry) Open() bool {
	return e.ClockOut == nil
}

// Duration returns the worked span of a completed entry, zero while open.
func (e *TimeEntry) Duration() time.Duration {
	if e.ClockOut == nil {
		return 0
	}
	return e.ClockOut.Sub(e.ClockIn)
}

// BalanceAdjustment is one record of the append-only correction ledger.
// Adjustments are never updated or deleted.
type BalanceAdjustment struct {
	ID          int64
	UserID      int64
	Seconds     int64
	Reason      string
	AdminUserID int64
	CreatedAt   time.Time
}
