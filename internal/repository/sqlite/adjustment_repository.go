package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hac-portal/internal/domain"
	"hac-portal/internal/repository"
)

const createAdjustmentsTable = `
CREATE TABLE IF NOT EXISTS balance_adjustments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	seconds INTEGER NOT NULL,
	reason TEXT NOT NULL,
	admin_user_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS balance_adjustments_user
	ON balance_adjustments (user_id, created_at);
`

type AdjustmentRepository struct {
	db *sql.DB
}

func NewAdjustmentRepository(db *sql.DB) repository.AdjustmentRepository {
	return &AdjustmentRepository{db: db}
}

func (r *AdjustmentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAdjustmentsTable); err != nil {
		return fmt.Errorf("create balance_adjustments table: %w", err)
	}
	return nil
}

func (r *AdjustmentRepository) Create(ctx context.Context, adj *domain.BalanceAdjustment) (int64, error) {
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO balance_adjustments (user_id, seconds, reason, admin_user_id, created_at)
VALUES (?, ?, ?, ?, ?)`,
		adj.UserID,
		adj.Seconds,
		adj.Reason,
		adj.AdminUserID,
		adj.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert adjustment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("adjustment last insert id: %w", err)
	}
	adj.ID = id
	return id, nil
}

func (r *AdjustmentRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BalanceAdjustment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, seconds, reason, admin_user_id, created_at
FROM balance_adjustments
WHERE user_id = ?
ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []domain.BalanceAdjustment
	for rows.Next() {
		var adj domain.BalanceAdjustment
		if err := rows.Scan(
			&adj.ID,
			&adj.UserID,
			&adj.Seconds,
			&adj.Reason,
			&adj.AdminUserID,
			&adj.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		adjustments = append(adjustments, adj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate adjustments: %w", err)
	}
	return adjustments, nil
}
