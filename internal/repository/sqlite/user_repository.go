package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hac-portal/internal/domain"
	"hac-portal/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	daily_hours REAL NOT NULL DEFAULT 0,
	role TEXT NOT NULL DEFAULT 'employee',
	can_backfill INTEGER NOT NULL DEFAULT 0,
	can_manage_inventory INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Upsert inserts the user or, when the username already exists, updates
// its quota, role, capabilities and password hash in place. Used by the
// startup seed so a config change takes effect on restart.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.UpdatedAt = now
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, password_hash, daily_hours, role, can_backfill, can_manage_inventory, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(username) DO UPDATE SET
	password_hash = excluded.password_hash,
	daily_hours = excluded.daily_hours,
	role = excluded.role,
	can_backfill = excluded.can_backfill,
	can_manage_inventory = excluded.can_manage_inventory,
	updated_at = excluded.updated_at`,
		user.Username,
		user.PasswordHash,
		user.DailyHours,
		string(user.Role),
		boolToInt(user.CanBackfill),
		boolToInt(user.CanManageInventory),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert user: %w", err)
	}

	// LastInsertId is unreliable for the update arm of the upsert;
	// resolve the id by username instead.
	stored, err := r.GetByUsername(ctx, user.Username)
	if err != nil {
		return 0, fmt.Errorf("resolve upserted user: %w", err)
	}
	user.ID = stored.ID
	return stored.ID, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, password_hash, daily_hours, role, can_backfill, can_manage_inventory, created_at, updated_at
FROM users
WHERE username = ?`,
		username,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, password_hash, daily_hours, role, can_backfill, can_manage_inventory, created_at, updated_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, username, password_hash, daily_hours, role, can_backfill, can_manage_inventory, created_at, updated_at
FROM users
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user               domain.User
		role               string
		canBackfill        int
		canManageInventory int
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.DailyHours,
		&role,
		&canBackfill,
		&canManageInventory,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Role = domain.Role(role)
	user.CanBackfill = canBackfill != 0
	user.CanManageInventory = canManageInventory != 0
	return &user, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
