package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hac-portal/internal/domain"
	"hac-portal/internal/repository"
)

const createInventoryTable = `
CREATE TABLE IF NOT EXISTS inventory (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	brand TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	quantity TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT ''
);
`

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) repository.InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createInventoryTable); err != nil {
		return fmt.Errorf("create inventory table: %w", err)
	}
	return nil
}

func (r *InventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO inventory (name, brand, color, quantity, status, location)
VALUES (?, ?, ?, ?, ?, ?)`,
		item.Name, item.Brand, item.Color, item.Quantity, item.Status, item.Location,
	)
	if err != nil {
		return 0, fmt.Errorf("insert inventory item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("inventory last insert id: %w", err)
	}
	item.ID = id
	return id, nil
}

func (r *InventoryRepository) Get(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, brand, color, quantity, status, location
FROM inventory
WHERE id = ?`,
		id,
	)
	return scanInventoryItem(row)
}

func (r *InventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE inventory
SET name = ?, brand = ?, color = ?, quantity = ?, status = ?, location = ?
WHERE id = ?`,
		item.Name, item.Brand, item.Color, item.Quantity, item.Status, item.Location, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	return requireRowAffected(res, "inventory item")
}

func (r *InventoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return requireRowAffected(res, "inventory item")
}

func (r *InventoryRepository) List(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.list(ctx, `
SELECT id, name, brand, color, quantity, status, location
FROM inventory
ORDER BY name`)
}

func (r *InventoryRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.InventoryItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return r.list(ctx, fmt.Sprintf(`
SELECT id, name, brand, color, quantity, status, location
FROM inventory
WHERE id IN (%s)
ORDER BY name`, placeholders), args...)
}

func (r *InventoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count inventory: %w", err)
	}
	return n, nil
}

func (r *InventoryRepository) list(ctx context.Context, query string, args ...any) ([]domain.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return items, nil
}

func scanInventoryItem(row interface {
	Scan(dest ...any) error
}) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Brand,
		&item.Color,
		&item.Quantity,
		&item.Status,
		&item.Location,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("inventory item: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan inventory item: %w", err)
	}
	return &item, nil
}
