package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frahspaces/storefront-backend/config"
	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/frahspaces/storefront-backend/internal/queue"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"github.com/frahspaces/storefront-backend/pkg/optional"
	"github.com/frahspaces/storefront-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotOwned   = errors.New("order belongs to another user")
	ErrEmptyOrder      = errors.New("order has no items")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrInvalidQuantity = errors.New("item quantity must be at least 1")
	ErrInvalidTotal    = errors.New("order total must not be negative")
)

const (
	defaultCustomerName = "Valued Customer"
	defaultDelivery     = "Pick up at store"
)

type CheckoutItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type GuestDetails struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

// CheckoutRequest is the cart as confirmed by the buyer. Total is trusted as
// sent; a mismatch with the line items is only logged.
type CheckoutRequest struct {
	Items           []CheckoutItem  `json:"items"`
	Total           decimal.Decimal `json:"total"`
	UserID          *string         `json:"userId"`
	GuestDetails    *GuestDetails   `json:"guestDetails"`
	CreateAccount   optional.Bool   `json:"createAccount"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	DeliveryAddress string          `json:"deliveryAddress"`
}

type CheckoutResult struct {
	Order       *model.Order
	WhatsAppURL string
	// CreatedUser is set when the guest asked for an account.
	CreatedUser *model.User
}

// OrderUpdate is a partial back office edit. Null clears tracking number,
// assigned staff and notes; a null status is ignored.
type OrderUpdate struct {
	Status          optional.Value[model.OrderStatus] `json:"status"`
	TrackingNumber  optional.Value[string]            `json:"trackingNumber"`
	AssignedStaffID optional.Value[string]            `json:"assignedStaffId"`
	InternalNotes   optional.Value[string]            `json:"internalNotes"`
}

type OrderService interface {
	Checkout(ctx context.Context, callerID string, req CheckoutRequest) (*CheckoutResult, error)
	ListUserOrders(userID string) ([]model.Order, error)
	GetUserOrderItems(userID, orderID string) ([]model.OrderItem, error)
	ListAllOrders() ([]model.OrderWithClient, error)
	GetOrderItems(orderID string) ([]model.OrderItem, error)
	AssignStaff(ctx context.Context, orderID string, staffID *string) (*model.Order, error)
	UpdateOrder(ctx context.Context, orderID string, update OrderUpdate) (*model.Order, error)
	FindStaleUnassigned(olderThan time.Duration) ([]model.Order, error)
}

type orderService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	store     config.StoreConfig
	ids       *util.OrderIDGenerator
	events    queue.Publisher
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	store config.StoreConfig,
	events queue.Publisher,
) OrderService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &orderService{
		db:        db,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		store:     store,
		ids:       util.NewOrderIDGenerator(),
		events:    events,
	}
}

func validateCheckout(req CheckoutRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if item.Price.IsNegative() {
			return ErrInvalidPrice
		}
	}
	if req.Total.IsNegative() {
		return ErrInvalidTotal
	}
	return nil
}

// resolveBuyer returns the registered account placing the order, or nil for
// a guest. The caller's token wins over a userId in the body.
func (s *orderService) resolveBuyer(callerID string, req CheckoutRequest) (*model.User, error) {
	candidate := callerID
	if candidate == "" && req.UserID != nil {
		candidate = strings.TrimSpace(*req.UserID)
	}
	if candidate == "" {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(candidate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (s *orderService) Checkout(ctx context.Context, callerID string, req CheckoutRequest) (*CheckoutResult, error) {
	logger.Info("Processing checkout", map[string]interface{}{
		"caller_id":  callerID,
		"item_count": len(req.Items),
		"total":      req.Total.String(),
	})

	if err := validateCheckout(req); err != nil {
		logger.Warn("Checkout rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	buyer, err := s.resolveBuyer(callerID, req)
	if err != nil {
		logger.Error("Failed to resolve buyer", err, map[string]interface{}{
			"caller_id": callerID,
		})
		return nil, err
	}

	guest := req.GuestDetails
	if guest == nil {
		guest = &GuestDetails{}
	}

	orderID := s.ids.Next()
	items := make([]model.OrderItem, 0, len(req.Items))
	var sum decimal.Decimal
	for _, item := range req.Items {
		line := model.OrderItem{
			OrderID:     orderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
		items = append(items, line)
		sum = sum.Add(line.Subtotal())
	}
	if !sum.Equal(req.Total) {
		logger.Warn("Checkout total differs from line items", map[string]interface{}{
			"total":    req.Total.String(),
			"computed": sum.String(),
		})
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	var created *model.User
	if buyer == nil && bool(req.CreateAccount) && guest.Email != "" && guest.Password != "" {
		address := guest.Address
		created, err = createAccount(repository.NewUserRepository(tx), NewAccount{
			Email:    guest.Email,
			Password: guest.Password,
			FullName: guest.FullName,
			Address:  &address,
			Role:     model.RoleUser,
		})
		if err != nil {
			tx.Rollback()
			logger.Warn("Checkout account creation failed", map[string]interface{}{
				"email": guest.Email,
				"error": err.Error(),
			})
			return nil, err
		}
		buyer = created
	}

	var (
		userID         *string
		profileName    string
		profileEmail   string
		profileAddress string
	)
	if buyer != nil {
		id := buyer.ID
		userID = &id
		profileName = buyer.FullName
		profileEmail = buyer.Email
		if buyer.Address != nil {
			profileAddress = *buyer.Address
		}
	}

	order := &model.Order{
		ID:              orderID,
		UserID:          userID,
		CustomerName:    firstNonEmpty(guest.FullName, req.CustomerName, profileName, defaultCustomerName),
		CustomerEmail:   firstNonEmpty(guest.Email, req.CustomerEmail, profileEmail, s.store.DefaultEmail),
		DeliveryAddress: firstNonEmpty(guest.Address, req.DeliveryAddress, profileAddress, defaultDelivery),
		Total:           req.Total,
		Status:          model.OrderStatusPending,
	}

	orders := repository.NewOrderRepository(tx)
	if err := orders.Create(order); err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, err
	}

	if err := orders.CreateItems(items); err != nil {
		tx.Rollback()
		logger.Error("Failed to create order items", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, err
	}
	order.Items = items

	logger.Info("Order placed", map[string]interface{}{
		"order_id":        order.ID,
		"user_id":         userID,
		"account_created": created != nil,
	})

	s.publish(ctx, queue.EventOrderCreated, order)

	return &CheckoutResult{
		Order:       order,
		WhatsAppURL: WhatsAppLink(s.store.AdminWhatsApp, newOrderMessage(s.store, order)),
		CreatedUser: created,
	}, nil
}

func (s *orderService) publish(ctx context.Context, t queue.EventType, order *model.Order) {
	if err := s.events.Publish(ctx, queue.NewOrderEvent(t, order)); err != nil {
		logger.Warn("Failed to publish order event", map[string]interface{}{
			"type":     t,
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
}

func (s *orderService) ListUserOrders(userID string) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) findOrder(orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetUserOrderItems(userID, orderID string) ([]model.OrderItem, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		logger.Warn("Order items requested by non-owner", map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, ErrOrderNotOwned
	}
	return s.orderRepo.FindItems(orderID)
}

func (s *orderService) ListAllOrders() ([]model.OrderWithClient, error) {
	return s.orderRepo.FindAllWithClients()
}

func (s *orderService) GetOrderItems(orderID string) ([]model.OrderItem, error) {
	if _, err := s.findOrder(orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.FindItems(orderID)
}

// AssignStaff sets or, with a nil staffID, clears the assignee.
func (s *orderService) AssignStaff(ctx context.Context, orderID string, staffID *string) (*model.Order, error) {
	if _, err := s.findOrder(orderID); err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateFields(orderID, map[string]interface{}{
		"assigned_staff_id": nonEmpty(staffID),
	}); err != nil {
		return nil, err
	}

	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}

	logger.Info("Order staff assignment changed", map[string]interface{}{
		"order_id": orderID,
		"staff_id": order.AssignedStaffID,
	})
	s.publish(ctx, queue.EventOrderAssigned, order)
	return order, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, orderID string, update OrderUpdate) (*model.Order, error) {
	if _, err := s.findOrder(orderID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.Status.HasValue() {
		if !update.Status.V.Valid() {
			return nil, ErrInvalidStatus
		}
		fields["status"] = update.Status.V
	}
	if update.TrackingNumber.Set {
		fields["tracking_number"] = update.TrackingNumber.Ptr()
	}
	if update.AssignedStaffID.Set {
		fields["assigned_staff_id"] = update.AssignedStaffID.Ptr()
	}
	if update.InternalNotes.Set {
		fields["internal_notes"] = update.InternalNotes.Ptr()
	}

	if err := s.orderRepo.UpdateFields(orderID, fields); err != nil {
		return nil, err
	}

	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}

	logger.Info("Order updated", map[string]interface{}{
		"order_id": orderID,
		"status":   order.Status,
		"fields":   len(fields),
	})
	if len(fields) > 0 {
		s.publish(ctx, queue.EventOrderUpdated, order)
	}
	return order, nil
}

// FindStaleUnassigned lists pending orders nobody picked up within olderThan.
func (s *orderService) FindStaleUnassigned(olderThan time.Duration) ([]model.Order, error) {
	return s.orderRepo.FindUnassigned(model.OrderStatusPending, time.Now().Add(-olderThan))
}
