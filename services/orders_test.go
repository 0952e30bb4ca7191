package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ray-remotestate/cafeteria/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPlaceOrder(t *testing.T) {
	store := newMemStore()
	store.addItem(1, "2.50", 5)
	svc := NewOrderService(store)

	placed, err := svc.PlaceOrder(context.Background(), 7, []models.OrderLine{{ItemID: 1, Quantity: 3}})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("7.50").Equal(placed.TotalAmount), "total %s", placed.TotalAmount)
	assert.Equal(t, 2, store.stock(1))
	require.Len(t, store.state.orders, 1)
	require.Len(t, store.state.orderItems, 1)
	assert.Equal(t, placed.OrderID, store.state.orders[0].ID)
	assert.Equal(t, int64(7), store.state.orders[0].UserID)
	assert.Equal(t, placed.OrderID, store.state.orderItems[0].OrderID)
	assert.True(t, decimal.RequireFromString("2.50").Equal(store.state.orderItems[0].PriceEach))
}

func TestPlaceOrderTotalMatchesLineItems(t *testing.T) {
	store := newMemStore()
	store.addItem(1, "0.10", 100)
	store.addItem(2, "0.20", 100)
	store.addItem(3, "19.99", 100)
	svc := NewOrderService(store)

	lines := []models.OrderLine{
		{ItemID: 1, Quantity: 3},
		{ItemID: 2, Quantity: 7},
		{ItemID: 3, Quantity: 2},
		{ItemID: 1, Quantity: 1},
	}
	placed, err := svc.PlaceOrder(context.Background(), 1, lines)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, it := range store.state.orderItems {
		sum = sum.Add(it.PriceEach.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	// 0.30 + 1.40 + 39.98 + 0.10, no float drift
	assert.Equal(t, "41.78", placed.TotalAmount.StringFixed(2))
	assert.True(t, sum.Equal(placed.TotalAmount))
	assert.True(t, sum.Equal(store.state.orders[0].TotalAmount))

	assert.Len(t, store.state.orderItems, 4)
	assert.Equal(t, 96, store.stock(1))
	assert.Equal(t, 93, store.stock(2))
	assert.Equal(t, 98, store.stock(3))
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	store := newMemStore()
	store.addItem(1, "2.50", 2)
	store.addItem(2, "1.00", 10)
	svc := NewOrderService(store)

	_, err := svc.PlaceOrder(context.Background(), 1, []models.OrderLine{
		{ItemID: 2, Quantity: 4},
		{ItemID: 1, Quantity: 10},
	})
	require.ErrorIs(t, err, models.ErrInsufficientStock)

	var itemErr *models.ItemError
	require.True(t, errors.As(err, &itemErr))
	assert.Equal(t, int64(1), itemErr.ItemID)
	assert.Equal(t, "Not enough stock for item 1", err.Error())

	assert.Equal(t, 2, store.stock(1))
	assert.Equal(t, 10, store.stock(2))
	assert.Empty(t, store.state.orders)
	assert.Empty(t, store.state.orderItems)
}

func TestPlaceOrderDuplicateLinesCheckedCumulatively(t *testing.T) {
	store := newMemStore()
	store.addItem(1, "1.00", 5)
	svc := NewOrderService(store)

	_, err := svc.PlaceOrder(context.Background(), 1, []models.OrderLine{
		{ItemID: 1, Quantity: 3},
		{ItemID: 1, Quantity: 3},
	})
	require.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Equal(t, 5, store.stock(1))
}

func TestPlaceOrderUnknownItemLeavesStockUntouched(t *testing.T) {
	store := newMemStore()
	store.addItem(1, "2.50", 5)
	svc := NewOrderService(store)

	_, err := svc.PlaceOrder(context.Background(), 1, []models.OrderLine{
		{ItemID: 1, Quantity: 2},
		{ItemID: 42, Quantity: 1},
	})
	require.ErrorIs(t, err, models.ErrItemNotFound)
	assert.Equal(t, "Item 42 not found", err.Error())
	assert.Equal(t, 5, store.stock(1))
	assert.Empty(t, store.state.orders)
}

func TestPlaceOrderValidation(t *testing.T) {
	store := newMemStore()
	store.addItem(1, "2.50", 5)
	svc := NewOrderService(store)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, 0, []models.OrderLine{{ItemID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = svc.PlaceOrder(ctx, 1, nil)
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
	assert.Equal(t, "Items required", err.Error())

	_, err = svc.PlaceOrder(ctx, 1, []models.OrderLine{{ItemID: 0, Quantity: 1}, {ItemID: 1, Quantity: 0}, {ItemID: 1, Quantity: -2}})
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
	assert.Equal(t, "No valid items to order", err.Error())

	assert.Equal(t, 5, store.stock(1))
	assert.Empty(t, store.state.orders)
}

func TestPlaceOrderSkipsInvalidLines(t *testing.T) {
	store := newMemStore()
	store.addItem(1, "2.50", 5)
	svc := NewOrderService(store)

	placed, err := svc.PlaceOrder(context.Background(), 1, []models.OrderLine{
		{ItemID: 0, Quantity: 4},
		{ItemID: 1, Quantity: 1},
		{ItemID: 99, Quantity: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "2.50", placed.TotalAmount.StringFixed(2))
	assert.Len(t, store.state.orderItems, 1)
	assert.Equal(t, 4, store.stock(1))
}

func TestPlaceOrderRollsBackOnWriteFailure(t *testing.T) {
	for _, op := range []string{"CreateOrder", "CreateOrderItem", "DecrementStock", "LockMenuItem"} {
		t.Run(op, func(t *testing.T) {
			store := newMemStore()
			store.addItem(1, "2.50", 5)
			store.addItem(2, "3.00", 5)
			store.failOn = op
			svc := NewOrderService(store)

			_, err := svc.PlaceOrder(context.Background(), 1, []models.OrderLine{
				{ItemID: 1, Quantity: 1},
				{ItemID: 2, Quantity: 1},
			})
			require.ErrorIs(t, err, errInjected)
			assert.Equal(t, 5, store.stock(1))
			assert.Equal(t, 5, store.stock(2))
			assert.Empty(t, store.state.orders)
			assert.Empty(t, store.state.orderItems)
		})
	}
}

func TestPlaceOrderConcurrentOrdersCannotOversell(t *testing.T) {
	store := newMemStore()
	store.addItem(1, "1.00", 10)
	svc := NewOrderService(store)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), user, []models.OrderLine{{ItemID: 1, Quantity: 3}})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, models.ErrInsufficientStock)
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 1, store.stock(1))
	assert.Len(t, store.state.orders, 3)
}

func TestPlaceOrderHugeQuantityCannotWrapDemand(t *testing.T) {
	store := newMemStore()
	store.addItem(1, "2.50", 5)
	store.failOn = "CreateOrder"
	svc := NewOrderService(store)

	_, err := svc.PlaceOrder(context.Background(), 1, []models.OrderLine{
		{ItemID: 1, Quantity: 1},
		{ItemID: 1, Quantity: math.MaxInt},
	})
	require.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.NotErrorIs(t, err, errInjected)
	assert.Equal(t, "Not enough stock for item 1", err.Error())
	assert.Equal(t, 5, store.stock(1))
}

func TestPlaceOrderTotalTooLarge(t *testing.T) {
	store := newMemStore()
	store.addItem(1, "99999999.99", 500)
	svc := NewOrderService(store)

	_, err := svc.PlaceOrder(context.Background(), 1, []models.OrderLine{{ItemID: 1, Quantity: 200}})
	require.ErrorIs(t, err, models.ErrInvalidRequest)
	assert.Equal(t, "Order total too large", err.Error())
	assert.Equal(t, 500, store.stock(1))
	assert.Empty(t, store.state.orders)
}
