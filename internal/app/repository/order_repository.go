package repository

import (
	"errors"
	"time"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	CreateItems(items []model.OrderItem) error
	FindByID(id string) (*model.Order, error)
	FindItems(orderID string) ([]model.OrderItem, error)
	FindByUserID(userID string) ([]model.Order, error)
	FindAllWithClients() ([]model.OrderWithClient, error)
	FindUnassigned(status model.OrderStatus, createdBefore time.Time) ([]model.Order, error)
	UpdateFields(id string, fields map[string]interface{}) error
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository accepts either the pool or an open transaction.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.Total.String(),
	})

	if err := r.db.Omit("Items").Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
	})
	return nil
}

func (r *orderRepository) CreateItems(items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	logger.Debug("Creating order items in database", map[string]interface{}{
		"order_id": items[0].OrderID,
		"count":    len(items),
	})

	if err := r.db.Create(&items).Error; err != nil {
		logger.Error("Failed to create order items in database", err, map[string]interface{}{
			"order_id": items[0].OrderID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindByID(id string) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.db.Where("id = ?", id).First(&order).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
				"order_id": id,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindItems(orderID string) ([]model.OrderItem, error) {
	var items []model.OrderItem
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error; err != nil {
		logger.Error("Failed to find order items in database", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) FindByUserID(userID string) ([]model.Order, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var orders []model.Order
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

// FindAllWithClients lists every order, newest first, with the name and email
// of the account that placed it (null for guest orders).
func (r *orderRepository) FindAllWithClients() ([]model.OrderWithClient, error) {
	logger.Debug("Fetching all orders with clients from database")

	var orders []model.OrderWithClient
	err := r.db.Table("orders").
		Select("orders.*, users.full_name AS client_name, users.email AS client_email").
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Order("orders.created_at DESC").
		Scan(&orders).Error
	if err != nil {
		logger.Error("Failed to fetch orders with clients from database", err)
		return nil, err
	}

	logger.Debug("Orders with clients fetched", map[string]interface{}{
		"count": len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindUnassigned(status model.OrderStatus, createdBefore time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.
		Where("status = ? AND assigned_staff_id IS NULL AND created_at < ?", status, createdBefore.UTC()).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find unassigned orders in database", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateFields(id string, fields map[string]interface{}) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": id,
		"fields":   len(fields),
	})
	if len(fields) == 0 {
		return nil
	}

	if err := r.db.Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}

	logger.Debug("Order updated in database", map[string]interface{}{
		"order_id": id,
	})
	return nil
}
