package dbhelper

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/cafeteria/models"
)

func CreateOrder(ctx context.Context, q Querier, userID int64, total decimal.Decimal) (models.Order, error) {
	o := models.Order{UserID: userID, TotalAmount: total}
	err := q.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, total_amount)
		VALUES ($1, $2)
		RETURNING id, created_at`, userID, total).Scan(&o.ID, &o.CreatedAt)
	return o, err
}

func CreateOrderItem(ctx context.Context, q Querier, item models.OrderItem) (models.OrderItem, error) {
	err := q.QueryRowContext(ctx, `
		INSERT INTO order_items (order_id, item_id, quantity, price_each)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, item.OrderID, item.ItemID, item.Quantity, item.PriceEach).Scan(&item.ID)
	return item, err
}

// ListOrdersWithItems returns every order with its lines flattened to
// "2x Coffee, 1x Sandwich", newest first.
func ListOrdersWithItems(ctx context.Context, q Querier) ([]models.OrderView, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT
			o.id,
			u.username,
			o.total_amount,
			o.created_at,
			COALESCE(string_agg(oi.quantity || 'x ' || m.name, ', ' ORDER BY oi.id), '') AS items
		FROM orders o
		JOIN users u ON o.user_id = u.id
		JOIN order_items oi ON oi.order_id = o.id
		JOIN menu_items m ON oi.item_id = m.id
		GROUP BY o.id, u.username, o.total_amount, o.created_at
		ORDER BY o.created_at DESC, o.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]models.OrderView, 0)
	for rows.Next() {
		var (
			o         models.OrderView
			createdAt time.Time
		)
		if err := rows.Scan(&o.ID, &o.Username, &o.TotalAmount, &createdAt, &o.Items); err != nil {
			return nil, err
		}
		o.CreatedAt = models.Timestamp(createdAt)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func OrderTotals(ctx context.Context, q Querier) (count int64, revenue decimal.Decimal, err error) {
	err = q.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders`).Scan(&count, &revenue)
	return count, revenue, err
}
