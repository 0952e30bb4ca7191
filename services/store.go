package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/cafeteria/models"
)

// Store runs fn inside one transaction. fn returning an error rolls back
// everything it did.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of statements the services issue inside a transaction.
type Tx interface {
	// LockMenuItem returns the item and holds a row lock on it until the
	// transaction ends. A missing item yields models.ErrMenuItemNotFound.
	LockMenuItem(ctx context.Context, id int64) (models.MenuItem, error)
	CreateOrder(ctx context.Context, userID int64, total decimal.Decimal) (models.Order, error)
	CreateOrderItem(ctx context.Context, item models.OrderItem) (models.OrderItem, error)
	// DecrementStock reports false when stock is below qty; nothing changes then.
	DecrementStock(ctx context.Context, itemID int64, qty int) (bool, error)

	GetUserRole(ctx context.Context, userID int64) (models.Role, error)
	SetUserRole(ctx context.Context, userID int64, role models.Role) error
	HasPendingAdminRequest(ctx context.Context, userID int64) (bool, error)
	CreateAdminRequest(ctx context.Context, userID int64, note string) (models.AdminRequest, error)
	// LockAdminRequest yields models.ErrRequestNotFound for an unknown id.
	LockAdminRequest(ctx context.Context, id int64) (models.AdminRequest, error)
	SetAdminRequestStatus(ctx context.Context, id int64, status models.AdminRequestStatus) error
}
