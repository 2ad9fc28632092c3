package repository

import (
	"testing"
	"time"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository(t *testing.T) {
	gdb := setupTestDB(t)
	orders := NewOrderRepository(gdb)
	stats := NewStatsRepository(gdb)

	cement := createTestProduct(t, gdb, "Portland Cement", "Cement", "10.00")
	sand := createTestProduct(t, gdb, "River Sand", "Sand", "40.00")

	createTestOrder(t, orders, "ORD-1", nil, "20.00", model.OrderStatusDelivered)
	createTestOrder(t, orders, "ORD-2", nil, "40.00", model.OrderStatusPending)
	createTestOrder(t, orders, "ORD-3", nil, "100.00", model.OrderStatusCancelled)

	require.NoError(t, orders.CreateItems([]model.OrderItem{
		{OrderID: "ORD-1", ProductID: cement.ID, ProductName: cement.Name, Quantity: 2, Price: decimal.RequireFromString("10.00")},
		{OrderID: "ORD-2", ProductID: sand.ID, ProductName: sand.Name, Quantity: 1, Price: decimal.RequireFromString("40.00")},
		{OrderID: "ORD-3", ProductID: "gone", ProductName: "Old Product", Quantity: 5, Price: decimal.RequireFromString("20.00")},
	}))

	t.Run("totals exclude cancelled", func(t *testing.T) {
		totals, err := stats.Totals(model.OrderStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, "60.00", totals.Revenue.StringFixed(2))
		assert.Equal(t, int64(2), totals.Orders)

		all, err := stats.Totals()
		require.NoError(t, err)
		assert.Equal(t, int64(3), all.Orders)
	})

	t.Run("delivered totals", func(t *testing.T) {
		totals, err := stats.TotalsWithStatus(model.OrderStatusDelivered)
		require.NoError(t, err)
		assert.Equal(t, "20.00", totals.Revenue.StringFixed(2))
		assert.Equal(t, int64(1), totals.Orders)
	})

	t.Run("count by status", func(t *testing.T) {
		pending, err := stats.CountByStatus(model.OrderStatusPending)
		require.NoError(t, err)
		assert.Equal(t, int64(1), pending)
	})

	t.Run("amounts since", func(t *testing.T) {
		rows, err := stats.OrderAmountsSince(time.Now().Add(-time.Hour), model.OrderStatusCancelled)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("top products", func(t *testing.T) {
		top, err := stats.TopProducts(5)
		require.NoError(t, err)
		require.Len(t, top, 3)
		assert.Equal(t, "Old Product", top[0].Name)
		assert.Equal(t, int64(5), top[0].Sales)
	})

	t.Run("sales by category", func(t *testing.T) {
		rows, err := stats.SalesByCategory()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Sand", rows[0].Name)
		assert.True(t, rows[0].Value.Equal(decimal.NewFromInt(40)))
		assert.True(t, rows[1].Value.Equal(decimal.NewFromInt(20)))
	})
}

func TestVisitRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewVisitRepository(gdb)

	require.NoError(t, repo.Create(&model.SiteVisit{VisitorID: "v1", Path: "/"}))
	require.NoError(t, repo.Create(&model.SiteVisit{VisitorID: "v1", Path: "/products"}))
	require.NoError(t, repo.Create(&model.SiteVisit{VisitorID: "guest", Path: "/"}))

	count, err := repo.CountDistinctVisitors()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestOrderTimeFiltersIgnoreServerZone(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("UTC-5", -5*60*60)
	t.Cleanup(func() { time.Local = local })

	gdb := setupTestDB(t)
	orders := NewOrderRepository(gdb)
	stats := NewStatsRepository(gdb)

	createTestOrder(t, orders, "ORD-1", nil, "25.00", model.OrderStatusPending)

	t.Run("amounts since a UTC bound", func(t *testing.T) {
		rows, err := stats.OrderAmountsSince(time.Now().UTC().Add(-time.Minute))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "25.00", rows[0].Total.StringFixed(2))
	})

	t.Run("amounts since a local bound", func(t *testing.T) {
		rows, err := stats.OrderAmountsSince(time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("stale cutoff", func(t *testing.T) {
		stale, err := orders.FindUnassigned(model.OrderStatusPending, time.Now().UTC().Add(time.Minute))
		require.NoError(t, err)
		assert.Len(t, stale, 1)

		stale, err = orders.FindUnassigned(model.OrderStatusPending, time.Now().UTC().Add(-time.Minute))
		require.NoError(t, err)
		assert.Empty(t, stale)
	})
}
