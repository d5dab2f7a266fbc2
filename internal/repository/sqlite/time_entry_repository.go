package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hac-portal/internal/domain"
	"hac-portal/internal/repository"
)

const createTimeEntriesTable = `
CREATE TABLE IF NOT EXISTS time_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	clock_in DATETIME NOT NULL,
	clock_out DATETIME NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS time_entries_open_per_user
	ON time_entries (user_id) WHERE clock_out IS NULL;
CREATE INDEX IF NOT EXISTS time_entries_user_clock_in
	ON time_entries (user_id, clock_in);
`

type TimeEntryRepository struct {
	db *sql.DB
}

func NewTimeEntryRepository(db *sql.DB) repository.TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTimeEntriesTable); err != nil {
		return fmt.Errorf("create time_entries table: %w", err)
	}
	return nil
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry *domain.TimeEntry) (int64, error) {
	var clockOut any
	if entry.ClockOut != nil {
		clockOut = entry.ClockOut.UTC()
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO time_entries (user_id, clock_in, clock_out)
VALUES (?, ?, ?)`,
		entry.UserID,
		entry.ClockIn.UTC(),
		clockOut,
	)
	if err != nil {
		// the partial unique index rejects a second open entry
		if entry.ClockOut == nil && strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, fmt.Errorf("insert time entry: %w", repository.ErrOpenEntry)
		}
		return 0, fmt.Errorf("insert time entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("time entry last insert id: %w", err)
	}
	entry.ID = id
	return id, nil
}

func (r *TimeEntryRepository) Get(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, clock_in, clock_out
FROM time_entries
WHERE id = ?`,
		id,
	)
	return scanTimeEntry(row)
}

func (r *TimeEntryRepository) GetOpen(ctx context.Context, userID int64) (*domain.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, clock_in, clock_out
FROM time_entries
WHERE user_id = ? AND clock_out IS NULL`,
		userID,
	)
	return scanTimeEntry(row)
}

func (r *TimeEntryRepository) SetClockOut(ctx context.Context, id int64, clockOut time.Time) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE time_entries SET clock_out = ? WHERE id = ?`,
		clockOut.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set clock out: %w", err)
	}
	return requireRowAffected(res, "time entry")
}

func (r *TimeEntryRepository) Update(ctx context.Context, id int64, clockIn time.Time, clockOut *time.Time) error {
	var out any
	if clockOut != nil {
		out = clockOut.UTC()
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE time_entries SET clock_in = ?, clock_out = ? WHERE id = ?`,
		clockIn.UTC(), out, id,
	)
	if err != nil {
		if clockOut == nil && strings.Contains(strings.ToLower(err.Error()), "unique") {
			return fmt.Errorf("update time entry: %w", repository.ErrOpenEntry)
		}
		return fmt.Errorf("update time entry: %w", err)
	}
	return requireRowAffected(res, "time entry")
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete time entry: %w", err)
	}
	return requireRowAffected(res, "time entry")
}

func (r *TimeEntryRepository) ListByUser(ctx context.Context, userID int64) ([]domain.TimeEntry, error) {
	return r.list(ctx, `
SELECT id, user_id, clock_in, clock_out
FROM time_entries
WHERE user_id = ?
ORDER BY clock_in DESC`, userID)
}

func (r *TimeEntryRepository) ListCompleted(ctx context.Context, userID int64) ([]domain.TimeEntry, error) {
	return r.list(ctx, `
SELECT id, user_id, clock_in, clock_out
FROM time_entries
WHERE user_id = ? AND clock_out IS NOT NULL
ORDER BY clock_in DESC`, userID)
}

func (r *TimeEntryRepository) list(ctx context.Context, query string, args ...any) ([]domain.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time entries: %w", err)
	}
	return entries, nil
}

func scanTimeEntry(row interface {
	Scan(dest ...any) error
}) (*domain.TimeEntry, error) {
	var (
		entry    domain.TimeEntry
		clockOut sql.NullTime
	)
	if err := row.Scan(&entry.ID, &entry.UserID, &entry.ClockIn, &clockOut); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("time entry: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan time entry: %w", err)
	}
	if clockOut.Valid {
		t := clockOut.Time
		entry.ClockOut = &t
	}
	return &entry, nil
}

func requireRowAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, repository.ErrNotFound)
	}
	return nil
}
