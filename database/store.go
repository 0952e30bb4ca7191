package database

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/cafeteria/database/dbhelper"
	"github.com/ray-remotestate/cafeteria/models"
	"github.com/ray-remotestate/cafeteria/services"
)

// Store backs the services with Postgres transactions.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx services.Tx) error) error {
	return Tx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&storeTx{tx: tx})
	})
}

type storeTx struct {
	tx *sql.Tx
}

func (t *storeTx) LockMenuItem(ctx context.Context, id int64) (models.MenuItem, error) {
	return dbhelper.LockMenuItem(ctx, t.tx, id)
}

func (t *storeTx) CreateOrder(ctx context.Context, userID int64, total decimal.Decimal) (models.Order, error) {
	return dbhelper.CreateOrder(ctx, t.tx, userID, total)
}

func (t *storeTx) CreateOrderItem(ctx context.Context, item models.OrderItem) (models.OrderItem, error) {
	return dbhelper.CreateOrderItem(ctx, t.tx, item)
}

func (t *storeTx) DecrementStock(ctx context.Context, itemID int64, qty int) (bool, error) {
	return dbhelper.DecrementStock(ctx, t.tx, itemID, qty)
}

func (t *storeTx) GetUserRole(ctx context.Context, userID int64) (models.Role, error) {
	return dbhelper.GetUserRole(ctx, t.tx, userID)
}

func (t *storeTx) SetUserRole(ctx context.Context, userID int64, role models.Role) error {
	return dbhelper.SetUserRole(ctx, t.tx, userID, role)
}

func (t *storeTx) HasPendingAdminRequest(ctx context.Context, userID int64) (bool, error) {
	return dbhelper.HasPendingAdminRequest(ctx, t.tx, userID)
}

func (t *storeTx) CreateAdminRequest(ctx context.Context, userID int64, note string) (models.AdminRequest, error) {
	return dbhelper.CreateAdminRequest(ctx, t.tx, userID, note)
}

func (t *storeTx) LockAdminRequest(ctx context.Context, id int64) (models.AdminRequest, error) {
	return dbhelper.LockAdminRequest(ctx, t.tx, id)
}

func (t *storeTx) SetAdminRequestStatus(ctx context.Context, id int64, status models.AdminRequestStatus) error {
	return dbhelper.SetAdminRequestStatus(ctx, t.tx, id, status)
}
