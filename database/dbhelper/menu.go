package dbhelper

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/cafeteria/models"
)

func ListMenuItems(ctx context.Context, q Querier) ([]models.MenuItem, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, category, price, stock FROM menu_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.MenuItem, 0)
	for rows.Next() {
		var m models.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Price, &m.Stock); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func CreateMenuItem(ctx context.Context, q Querier, name, category string, price decimal.Decimal, stock int) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO menu_items (name, category, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, name, category, price, stock).Scan(&id)
	return id, err
}

func UpdateMenuStock(ctx context.Context, q Querier, id int64, stock int) error {
	res, err := q.ExecContext(ctx, `UPDATE menu_items SET stock = $1 WHERE id = $2`, stock, id)
	if err != nil {
		return err
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrMenuItemNotFound
	}
	return nil
}

func DeleteMenuItem(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if IsForeignKeyViolation(err) {
		return models.ErrMenuItemInUse
	}
	if err != nil {
		return err
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrMenuItemNotFound
	}
	return nil
}

// LockMenuItem reads an item with FOR UPDATE; q must be a transaction for the
// lock to mean anything.
func LockMenuItem(ctx context.Context, q Querier, id int64) (models.MenuItem, error) {
	var m models.MenuItem
	err := q.QueryRowContext(ctx, `
		SELECT id, name, category, price, stock FROM menu_items
		WHERE id = $1
		FOR UPDATE`, id).
		Scan(&m.ID, &m.Name, &m.Category, &m.Price, &m.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MenuItem{}, models.ErrMenuItemNotFound
	}
	return m, err
}

// DecrementStock only applies when enough stock remains; false means no row
// was changed.
func DecrementStock(ctx context.Context, q Querier, id int64, qty int) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE menu_items SET stock = stock - $1
		WHERE id = $2 AND stock >= $1`, qty, id)
	if err != nil {
		return false, err
	}
	n, err := affected(res)
	return n == 1, err
}
