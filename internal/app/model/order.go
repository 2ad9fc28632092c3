package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status. Transitions between statuses
// are not restricted.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is created at checkout together with its items and never deleted.
// Total is the amount the buyer confirmed, not a sum recomputed here.
type Order struct {
	ID              string          `gorm:"primaryKey;type:varchar(32)" json:"id"`
	UserID          *string         `gorm:"type:varchar(36);index" json:"userId"`
	CustomerName    string          `gorm:"type:varchar(255)" json:"customerName"`
	CustomerEmail   string          `gorm:"type:varchar(255)" json:"customerEmail"`
	DeliveryAddress string          `gorm:"type:text" json:"deliveryAddress"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TrackingNumber  *string         `gorm:"type:varchar(100)" json:"trackingNumber"`
	AssignedStaffID *string         `gorm:"type:varchar(36);index" json:"assignedStaffId"`
	InternalNotes   *string         `gorm:"type:text" json:"internalNotes"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time       `json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots the product name and unit price at checkout time.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     string          `gorm:"type:varchar(32);not null;index" json:"orderId"`
	ProductID   string          `gorm:"type:varchar(36);index" json:"productId"`
	ProductName string          `gorm:"type:varchar(255)" json:"productName"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal is price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderWithClient is an order row joined with the account that placed it.
type OrderWithClient struct {
	Order
	ClientName  *string `json:"clientName"`
	ClientEmail *string `json:"clientEmail"`
}
