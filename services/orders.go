package services

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/cafeteria/models"
)

// maxOrderTotal is the first value orders.total_amount NUMERIC(12,2) cannot hold.
var maxOrderTotal = decimal.New(1, 10)

type OrderService struct {
	store Store
}

func NewOrderService(store Store) *OrderService {
	return &OrderService{store: store}
}

// PlaceOrder validates the requested lines against current stock, records the
// order with price snapshots and decrements stock, all in one transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, lines []models.OrderLine) (models.PlacedOrder, error) {
	if userID == 0 {
		return models.PlacedOrder{}, models.ErrUnauthenticated
	}
	if len(lines) == 0 {
		return models.PlacedOrder{}, models.InvalidRequest("Items required")
	}

	valid := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		if line.ItemID == 0 || line.Quantity <= 0 {
			continue
		}
		valid = append(valid, line)
	}
	if len(valid) == 0 {
		return models.PlacedOrder{}, models.InvalidRequest("No valid items to order")
	}

	var placed models.PlacedOrder
	err := s.store.InTx(ctx, func(tx Tx) error {
		items, err := lockItems(ctx, tx, valid)
		if err != nil {
			return err
		}

		total := decimal.Zero
		demand := make(map[int64]int, len(items))
		for _, line := range valid {
			item, ok := items[line.ItemID]
			if !ok {
				return &models.ItemError{Err: models.ErrItemNotFound, ItemID: line.ItemID}
			}
			// compared against what is left so huge quantities cannot wrap the sum
			if line.Quantity > item.Stock-demand[line.ItemID] {
				return &models.ItemError{Err: models.ErrInsufficientStock, ItemID: line.ItemID}
			}
			demand[line.ItemID] += line.Quantity
			total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		if !total.LessThan(maxOrderTotal) {
			return models.InvalidRequest("Order total too large")
		}

		order, err := tx.CreateOrder(ctx, userID, total)
		if err != nil {
			return err
		}

		placed = models.PlacedOrder{OrderID: order.ID, TotalAmount: total}
		for _, line := range valid {
			created, err := tx.CreateOrderItem(ctx, models.OrderItem{
				OrderID:   order.ID,
				ItemID:    line.ItemID,
				Quantity:  line.Quantity,
				PriceEach: items[line.ItemID].Price,
			})
			if err != nil {
				return err
			}
			placed.Items = append(placed.Items, created)

			ok, err := tx.DecrementStock(ctx, line.ItemID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &models.ItemError{Err: models.ErrInsufficientStock, ItemID: line.ItemID}
			}
		}
		return nil
	})
	if err != nil {
		return models.PlacedOrder{}, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": placed.OrderID,
		"user_id":  userID,
		"amount":   placed.TotalAmount.StringFixed(2),
	}).Info("order placed")
	return placed, nil
}

// lockItems locks every distinct item in ascending id order so that two
// orders touching the same items always acquire locks in the same sequence.
// Unknown ids are left out of the result.
func lockItems(ctx context.Context, tx Tx, lines []models.OrderLine) (map[int64]models.MenuItem, error) {
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ItemID] {
			seen[line.ItemID] = true
			ids = append(ids, line.ItemID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items := make(map[int64]models.MenuItem, len(ids))
	for _, id := range ids {
		item, err := tx.LockMenuItem(ctx, id)
		if errors.Is(err, models.ErrMenuItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items[id] = item
	}
	return items, nil
}
