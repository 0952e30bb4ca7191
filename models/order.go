package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type OrderItem struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	ItemID    int64           `db:"item_id" json:"item_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	PriceEach decimal.Decimal `db:"price_each" json:"price_each"`
}

// OrderLine is one requested (item, quantity) pair.
type OrderLine struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type PlacedOrder struct {
	OrderID     int64           `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderItem     `json:"-"`
}

// OrderView is the admin listing row: who ordered what.
type OrderView struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   Timestamp       `json:"created_at"`
	Items       string          `json:"items"`
}

type OrderSummary struct {
	TotalOrders  int64           `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalUsers   int64           `json:"total_users"`
}
