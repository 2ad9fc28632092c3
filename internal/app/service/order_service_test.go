package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/frahspaces/storefront-backend/config"
	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/frahspaces/storefront-backend/internal/queue"
	"github.com/frahspaces/storefront-backend/pkg/optional"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testStore = config.StoreConfig{
	Name:          "frah spaces",
	AdminWhatsApp: "254768396296",
	Currency:      "KES",
	DefaultEmail:  "no-email@frahspaces.com",
}

func setupOrderServiceTest(t *testing.T) (OrderService, *gorm.DB, *recordingPublisher) {
	testDB := setupTestDB(t)
	events := &recordingPublisher{}
	svc := NewOrderService(
		testDB,
		repository.NewOrderRepository(testDB),
		repository.NewUserRepository(testDB),
		testStore,
		events,
	)
	return svc, testDB, events
}

func twoItemCheckout() CheckoutRequest {
	return CheckoutRequest{
		Items: []CheckoutItem{
			{ProductID: "p-1", ProductName: "Portland Cement", Quantity: 2, Price: decimal.RequireFromString("850")},
			{ProductID: "p-2", ProductName: "River Sand", Quantity: 1, Price: decimal.RequireFromString("3000")},
		},
		Total: decimal.RequireFromString("4700"),
	}
}

func TestOrderService_CheckoutGuest(t *testing.T) {
	orders, testDB, events := setupOrderServiceTest(t)

	result, err := orders.Checkout(context.Background(), "", twoItemCheckout())
	require.NoError(t, err)

	order := result.Order
	assert.True(t, strings.HasPrefix(order.ID, "ORD-"))
	assert.Nil(t, order.UserID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "Valued Customer", order.CustomerName)
	assert.Equal(t, "no-email@frahspaces.com", order.CustomerEmail)
	assert.Equal(t, "Pick up at store", order.DeliveryAddress)
	assert.Nil(t, result.CreatedUser)

	var items []model.OrderItem
	require.NoError(t, testDB.Where("order_id = ?", order.ID).Find(&items).Error)
	assert.Len(t, items, 2)

	assert.Equal(t, []queue.EventType{queue.EventOrderCreated}, events.types())

	parsed, err := url.Parse(result.WhatsAppURL)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", parsed.Host)
	assert.Equal(t, "/254768396296", parsed.Path)
	text := parsed.Query().Get("text")
	assert.Contains(t, text, "*Order ID:* "+order.ID)
	assert.Contains(t, text, "*Total:* KES 4700.00")
	assert.NotContains(t, result.WhatsAppURL, "+")
}

func TestOrderService_CheckoutValidation(t *testing.T) {
	orders, testDB, events := setupOrderServiceTest(t)

	tests := []struct {
		name    string
		mutate  func(r *CheckoutRequest)
		wantErr error
	}{
		{name: "No items", mutate: func(r *CheckoutRequest) { r.Items = nil }, wantErr: ErrEmptyOrder},
		{name: "Zero quantity", mutate: func(r *CheckoutRequest) { r.Items[0].Quantity = 0 }, wantErr: ErrInvalidQuantity},
		{name: "Negative price", mutate: func(r *CheckoutRequest) { r.Items[1].Price = decimal.NewFromInt(-5) }, wantErr: ErrInvalidPrice},
		{name: "Negative total", mutate: func(r *CheckoutRequest) { r.Total = decimal.NewFromInt(-1) }, wantErr: ErrInvalidTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := twoItemCheckout()
			tt.mutate(&req)
			_, err := orders.Checkout(context.Background(), "", req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var count int64
	require.NoError(t, testDB.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, events.types())
}

func TestOrderService_CheckoutMismatchedTotalIsAccepted(t *testing.T) {
	orders, _, _ := setupOrderServiceTest(t)

	req := twoItemCheckout()
	req.Total = decimal.RequireFromString("10")

	result, err := orders.Checkout(context.Background(), "", req)
	require.NoError(t, err)
	assert.True(t, result.Order.Total.Equal(decimal.NewFromInt(10)))
}

func TestOrderService_CheckoutCreatesAccount(t *testing.T) {
	orders, testDB, _ := setupOrderServiceTest(t)

	req := twoItemCheckout()
	req.CreateAccount = true
	req.GuestDetails = &GuestDetails{
		FullName: "Wanjiku Builder",
		Email:    "Wanjiku@Example.com",
		Address:  "Thika Road",
		Password: "password123",
	}

	result, err := orders.Checkout(context.Background(), "", req)
	require.NoError(t, err)
	require.NotNil(t, result.CreatedUser)
	require.NotNil(t, result.Order.UserID)
	assert.Equal(t, result.CreatedUser.ID, *result.Order.UserID)
	assert.Equal(t, "Wanjiku Builder", result.Order.CustomerName)
	assert.Equal(t, "Thika Road", result.Order.DeliveryAddress)

	var user model.User
	require.NoError(t, testDB.Where("email = ?", "wanjiku@example.com").First(&user).Error)
	assert.Equal(t, model.RoleUser, user.Role)

	// the same email cannot be registered twice and nothing is stored
	_, err = orders.Checkout(context.Background(), "", req)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	var count int64
	require.NoError(t, testDB.Model(&model.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOrderService_CheckoutRollsBackAccountWhenItemsFail(t *testing.T) {
	orders, testDB, events := setupOrderServiceTest(t)

	writeErr := errors.New("disk I/O error")
	require.NoError(t, testDB.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(tx *gorm.DB) {
		if tx.Statement.Table == "order_items" {
			tx.AddError(writeErr)
		}
	}))

	req := twoItemCheckout()
	req.CreateAccount = true
	req.GuestDetails = &GuestDetails{
		FullName: "Otieno Mason",
		Email:    "otieno@example.com",
		Address:  "Mombasa Road",
		Password: "password123",
	}

	_, err := orders.Checkout(context.Background(), "", req)
	require.ErrorIs(t, err, writeErr)

	var users, stored int64
	require.NoError(t, testDB.Model(&model.User{}).Count(&users).Error)
	require.NoError(t, testDB.Model(&model.Order{}).Count(&stored).Error)
	assert.Zero(t, users)
	assert.Zero(t, stored)
	assert.Empty(t, events.types())
}

func TestOrderService_CheckoutBuyerResolution(t *testing.T) {
	orders, testDB, _ := setupOrderServiceTest(t)
	caller := createTestUser(t, testDB, "caller@example.com", "pw", model.RoleUser)
	other := createTestUser(t, testDB, "other@example.com", "pw", model.RoleUser)

	t.Run("Token user wins over body userId", func(t *testing.T) {
		req := twoItemCheckout()
		req.UserID = &other.ID
		result, err := orders.Checkout(context.Background(), caller.ID, req)
		require.NoError(t, err)
		require.NotNil(t, result.Order.UserID)
		assert.Equal(t, caller.ID, *result.Order.UserID)
		assert.Equal(t, caller.FullName, result.Order.CustomerName)
		assert.Equal(t, "caller@example.com", result.Order.CustomerEmail)
	})

	t.Run("Body userId of an existing user", func(t *testing.T) {
		req := twoItemCheckout()
		req.UserID = &other.ID
		result, err := orders.Checkout(context.Background(), "", req)
		require.NoError(t, err)
		require.NotNil(t, result.Order.UserID)
		assert.Equal(t, other.ID, *result.Order.UserID)
	})

	t.Run("Unknown body userId checks out as guest", func(t *testing.T) {
		req := twoItemCheckout()
		missing := "does-not-exist"
		req.UserID = &missing
		req.CustomerName = "Walk In"
		result, err := orders.Checkout(context.Background(), "", req)
		require.NoError(t, err)
		assert.Nil(t, result.Order.UserID)
		assert.Equal(t, "Walk In", result.Order.CustomerName)
	})
}

func TestOrderService_OrderIDsAreUnique(t *testing.T) {
	orders, _, _ := setupOrderServiceTest(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		result, err := orders.Checkout(context.Background(), "", twoItemCheckout())
		require.NoError(t, err)
		assert.False(t, seen[result.Order.ID])
		seen[result.Order.ID] = true
	}
}

func TestOrderService_UserOrders(t *testing.T) {
	orders, testDB, _ := setupOrderServiceTest(t)
	owner := createTestUser(t, testDB, "owner@example.com", "pw", model.RoleUser)
	stranger := createTestUser(t, testDB, "stranger@example.com", "pw", model.RoleUser)

	result, err := orders.Checkout(context.Background(), owner.ID, twoItemCheckout())
	require.NoError(t, err)

	list, err := orders.ListUserOrders(owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, result.Order.ID, list[0].ID)

	items, err := orders.GetUserOrderItems(owner.ID, result.Order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = orders.GetUserOrderItems(stranger.ID, result.Order.ID)
	assert.ErrorIs(t, err, ErrOrderNotOwned)

	_, err = orders.GetUserOrderItems(owner.ID, "ORD-0")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_UpdateOrder(t *testing.T) {
	orders, testDB, events := setupOrderServiceTest(t)
	staff := createTestUser(t, testDB, "staff@example.com", "pw", model.RoleStaff)

	result, err := orders.Checkout(context.Background(), "", twoItemCheckout())
	require.NoError(t, err)
	id := result.Order.ID

	updated, err := orders.UpdateOrder(context.Background(), id, OrderUpdate{
		TrackingNumber:  optional.Of("TRK-1"),
		AssignedStaffID: optional.Of(staff.ID),
		InternalNotes:   optional.Of("call before delivery"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, updated.Status)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, "TRK-1", *updated.TrackingNumber)

	// status changes keep the other fields
	updated, err = orders.UpdateOrder(context.Background(), id, OrderUpdate{
		Status: optional.Of(model.OrderStatusDelivered),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, updated.Status)
	require.NotNil(t, updated.AssignedStaffID)
	assert.Equal(t, staff.ID, *updated.AssignedStaffID)
	require.NotNil(t, updated.InternalNotes)

	// transitions are not restricted
	updated, err = orders.UpdateOrder(context.Background(), id, OrderUpdate{
		Status:         optional.Of(model.OrderStatusPending),
		TrackingNumber: optional.Clear[string](),
		InternalNotes:  optional.Clear[string](),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, updated.Status)
	assert.Nil(t, updated.TrackingNumber)
	assert.Nil(t, updated.InternalNotes)
	assert.NotNil(t, updated.AssignedStaffID)

	_, err = orders.UpdateOrder(context.Background(), id, OrderUpdate{
		Status: optional.Of(model.OrderStatus("lost")),
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = orders.UpdateOrder(context.Background(), "ORD-0", OrderUpdate{})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	assert.Equal(t, []queue.EventType{
		queue.EventOrderCreated,
		queue.EventOrderUpdated,
		queue.EventOrderUpdated,
		queue.EventOrderUpdated,
	}, events.types())
}

func TestOrderService_AssignStaff(t *testing.T) {
	orders, testDB, _ := setupOrderServiceTest(t)
	staff := createTestUser(t, testDB, "staff@example.com", "pw", model.RoleStaff)

	result, err := orders.Checkout(context.Background(), "", twoItemCheckout())
	require.NoError(t, err)

	assigned, err := orders.AssignStaff(context.Background(), result.Order.ID, &staff.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedStaffID)
	assert.Equal(t, staff.ID, *assigned.AssignedStaffID)

	cleared, err := orders.AssignStaff(context.Background(), result.Order.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedStaffID)

	_, err = orders.AssignStaff(context.Background(), "ORD-0", &staff.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ListAllOrdersAndStale(t *testing.T) {
	orders, testDB, _ := setupOrderServiceTest(t)
	buyer := createTestUser(t, testDB, "buyer@example.com", "pw", model.RoleUser)

	_, err := orders.Checkout(context.Background(), buyer.ID, twoItemCheckout())
	require.NoError(t, err)
	_, err = orders.Checkout(context.Background(), "", twoItemCheckout())
	require.NoError(t, err)

	all, err := orders.ListAllOrders()
	require.NoError(t, err)
	require.Len(t, all, 2)

	var withClient int
	for _, o := range all {
		if o.ClientEmail != nil {
			withClient++
			assert.Equal(t, "buyer@example.com", *o.ClientEmail)
		}
	}
	assert.Equal(t, 1, withClient)

	stale, err := orders.FindStaleUnassigned(time.Hour)
	require.NoError(t, err)
	assert.Empty(t, stale)

	stale, err = orders.FindStaleUnassigned(-time.Minute)
	require.NoError(t, err)
	assert.Len(t, stale, 2)
}
