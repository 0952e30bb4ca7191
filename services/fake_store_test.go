package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/cafeteria/models"
)

var errInjected = errors.New("injected failure")

type memState struct {
	items      map[int64]models.MenuItem
	users      map[int64]models.Role
	orders     []models.Order
	orderItems []models.OrderItem
	requests   map[int64]models.AdminRequest
	nextID     int64
}

func (s memState) clone() memState {
	c := memState{
		items:      make(map[int64]models.MenuItem, len(s.items)),
		users:      make(map[int64]models.Role, len(s.users)),
		orders:     append([]models.Order(nil), s.orders...),
		orderItems: append([]models.OrderItem(nil), s.orderItems...),
		requests:   make(map[int64]models.AdminRequest, len(s.requests)),
		nextID:     s.nextID,
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	return c
}

// memStore serializes transactions behind one mutex and commits by swapping
// in the working copy, so a failed transaction leaves no trace.
type memStore struct {
	mu     sync.Mutex
	state  memState
	failOn string
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		items:    map[int64]models.MenuItem{},
		users:    map[int64]models.Role{},
		requests: map[int64]models.AdminRequest{},
		nextID:   100,
	}}
}

func (m *memStore) addItem(id int64, price string, stock int) {
	m.state.items[id] = models.MenuItem{ID: id, Name: "item", Category: "food", Price: decimal.RequireFromString(price), Stock: stock}
}

func (m *memStore) stock(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.items[id].Stock
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{state: m.state.clone(), failOn: m.failOn}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

type memTx struct {
	state  memState
	failOn string
}

func (t *memTx) fail(op string) error {
	if t.failOn == op {
		return errInjected
	}
	return nil
}

func (t *memTx) id() int64 {
	t.state.nextID++
	return t.state.nextID
}

func (t *memTx) LockMenuItem(ctx context.Context, id int64) (models.MenuItem, error) {
	if err := t.fail("LockMenuItem"); err != nil {
		return models.MenuItem{}, err
	}
	item, ok := t.state.items[id]
	if !ok {
		return models.MenuItem{}, models.ErrMenuItemNotFound
	}
	return item, nil
}

func (t *memTx) CreateOrder(ctx context.Context, userID int64, total decimal.Decimal) (models.Order, error) {
	if err := t.fail("CreateOrder"); err != nil {
		return models.Order{}, err
	}
	o := models.Order{ID: t.id(), UserID: userID, TotalAmount: total, CreatedAt: time.Now()}
	t.state.orders = append(t.state.orders, o)
	return o, nil
}

func (t *memTx) CreateOrderItem(ctx context.Context, item models.OrderItem) (models.OrderItem, error) {
	if err := t.fail("CreateOrderItem"); err != nil {
		return models.OrderItem{}, err
	}
	item.ID = t.id()
	t.state.orderItems = append(t.state.orderItems, item)
	return item, nil
}

func (t *memTx) DecrementStock(ctx context.Context, itemID int64, qty int) (bool, error) {
	if err := t.fail("DecrementStock"); err != nil {
		return false, err
	}
	item, ok := t.state.items[itemID]
	if !ok || item.Stock < qty {
		return false, nil
	}
	item.Stock -= qty
	t.state.items[itemID] = item
	return true, nil
}

func (t *memTx) GetUserRole(ctx context.Context, userID int64) (models.Role, error) {
	role, ok := t.state.users[userID]
	if !ok {
		return "", models.ErrUnauthenticated
	}
	return role, nil
}

func (t *memTx) SetUserRole(ctx context.Context, userID int64, role models.Role) error {
	if err := t.fail("SetUserRole"); err != nil {
		return err
	}
	t.state.users[userID] = role
	return nil
}

func (t *memTx) HasPendingAdminRequest(ctx context.Context, userID int64) (bool, error) {
	for _, r := range t.state.requests {
		if r.UserID == userID && r.Status == models.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreateAdminRequest(ctx context.Context, userID int64, note string) (models.AdminRequest, error) {
	r := models.AdminRequest{ID: t.id(), UserID: userID, Status: models.RequestPending, Note: note, CreatedAt: time.Now()}
	t.state.requests[r.ID] = r
	return r, nil
}

func (t *memTx) LockAdminRequest(ctx context.Context, id int64) (models.AdminRequest, error) {
	r, ok := t.state.requests[id]
	if !ok {
		return models.AdminRequest{}, models.ErrRequestNotFound
	}
	return r, nil
}

func (t *memTx) SetAdminRequestStatus(ctx context.Context, id int64, status models.AdminRequestStatus) error {
	r := t.state.requests[id]
	r.Status = status
	t.state.requests[id] = r
	return nil
}
