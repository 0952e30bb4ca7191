//go:build integration

package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ray-remotestate/cafeteria/config"
	"github.com/ray-remotestate/cafeteria/database/dbhelper"
	"github.com/ray-remotestate/cafeteria/models"
	"github.com/ray-remotestate/cafeteria/services"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("cafeteria_test"),
		postgres.WithUsername("cafeteria"),
		postgres.WithPassword("cafeteria"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := ConnectAndMigrate(ctx, config.Database{
		Host:            host,
		Port:            port.Int(),
		User:            "cafeteria",
		Password:        "cafeteria",
		Name:            "cafeteria_test",
		SSLMode:         "disable",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	id, err := dbhelper.CreateUser(context.Background(), db, name, "x", models.RoleUser)
	require.NoError(t, err)
	return id
}

func seedItem(t *testing.T, db *sql.DB, name, price string, stock int) int64 {
	t.Helper()
	id, err := dbhelper.CreateMenuItem(context.Background(), db, name, "test", decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	return id
}

func stockOf(t *testing.T, db *sql.DB, id int64) int {
	t.Helper()
	var stock int
	require.NoError(t, db.QueryRow(`SELECT stock FROM menu_items WHERE id = $1`, id).Scan(&stock))
	return stock
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestPostgres(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	orders := services.NewOrderService(NewStore(db))

	t.Run("concurrent orders never oversell", func(t *testing.T) {
		item := seedItem(t, db, "Muffin", "3.00", 10)

		const workers = 12
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			placed  int
			refused int
		)
		for i := 0; i < workers; i++ {
			user := seedUser(t, db, "buyer-"+string(rune('a'+i)))
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := orders.PlaceOrder(ctx, user, []models.OrderLine{{ItemID: item, Quantity: 3}})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					placed++
				case errors.Is(err, models.ErrInsufficientStock):
					refused++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 3, placed)
		assert.Equal(t, workers-3, refused)
		assert.Equal(t, 1, stockOf(t, db, item))
	})

	t.Run("failed order leaves nothing behind", func(t *testing.T) {
		user := seedUser(t, db, "atomic")
		a := seedItem(t, db, "Soup", "4.00", 5)
		b := seedItem(t, db, "Bread", "1.00", 1)
		ordersBefore := countRows(t, db, "orders")
		linesBefore := countRows(t, db, "order_items")

		_, err := orders.PlaceOrder(ctx, user, []models.OrderLine{
			{ItemID: a, Quantity: 2},
			{ItemID: b, Quantity: 2},
		})
		require.ErrorIs(t, err, models.ErrInsufficientStock)

		assert.Equal(t, 5, stockOf(t, db, a))
		assert.Equal(t, 1, stockOf(t, db, b))
		assert.Equal(t, ordersBefore, countRows(t, db, "orders"))
		assert.Equal(t, linesBefore, countRows(t, db, "order_items"))
	})

	t.Run("price snapshot survives menu changes", func(t *testing.T) {
		user := seedUser(t, db, "snapshot")
		item := seedItem(t, db, "Latte", "4.25", 3)

		placed, err := orders.PlaceOrder(ctx, user, []models.OrderLine{{ItemID: item, Quantity: 2}})
		require.NoError(t, err)
		assert.Equal(t, "8.50", placed.TotalAmount.StringFixed(2))

		_, err = db.Exec(`UPDATE menu_items SET price = 9.99 WHERE id = $1`, item)
		require.NoError(t, err)

		var priceEach decimal.Decimal
		require.NoError(t, db.QueryRow(`SELECT price_each FROM order_items WHERE order_id = $1`, placed.OrderID).Scan(&priceEach))
		assert.True(t, priceEach.Equal(decimal.RequireFromString("4.25")))

		assert.ErrorIs(t, dbhelper.DeleteMenuItem(ctx, db, item), models.ErrMenuItemInUse)
	})

	t.Run("one pending admin request per user", func(t *testing.T) {
		requests := services.NewAdminRequestService(NewStore(db))
		user := seedUser(t, db, "hopeful")

		req, err := requests.Create(ctx, user, "")
		require.NoError(t, err)

		_, err = dbhelper.CreateAdminRequest(ctx, db, user, "again")
		assert.ErrorIs(t, err, models.ErrRequestAlreadyPending)

		_, err = requests.Approve(ctx, req.ID)
		require.NoError(t, err)
		role, err := dbhelper.GetUserRole(ctx, db, user)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, role)

		_, err = requests.Reject(ctx, req.ID)
		assert.ErrorIs(t, err, models.ErrRequestNotPending)

		_, err = requests.Create(ctx, user, "")
		assert.ErrorIs(t, err, models.ErrAlreadyAdmin)
	})

	t.Run("bootstrap admin is idempotent", func(t *testing.T) {
		require.NoError(t, dbhelper.EnsureAdmin(ctx, db, "root", "hash"))
		require.NoError(t, dbhelper.EnsureAdmin(ctx, db, "root", "other"))

		u, err := dbhelper.ListUsers(ctx, db)
		require.NoError(t, err)
		var admins int
		for _, user := range u {
			if user.Username == "root" {
				admins++
				assert.Equal(t, models.RoleAdmin, user.Role)
			}
		}
		assert.Equal(t, 1, admins)
	})
}
