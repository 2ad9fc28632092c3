package queue

import (
	"time"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOrderCreated  EventType = "order.created"
	EventOrderUpdated  EventType = "order.updated"
	EventOrderAssigned EventType = "order.assigned"
	EventOrderReminder EventType = "order.unassigned_reminder"
)

// OrderEvent is published whenever an order changes. Consumers receive it as
// JSON on the order events queue and on the staff live feed.
type OrderEvent struct {
	Type            EventType         `json:"type"`
	OrderID         string            `json:"orderId"`
	Status          model.OrderStatus `json:"status"`
	Total           decimal.Decimal   `json:"total"`
	CustomerName    string            `json:"customerName"`
	AssignedStaffID *string           `json:"assignedStaffId"`
	OccurredAt      time.Time         `json:"occurredAt"`
}

func NewOrderEvent(t EventType, order *model.Order) OrderEvent {
	return OrderEvent{
		Type:            t,
		OrderID:         order.ID,
		Status:          order.Status,
		Total:           order.Total,
		CustomerName:    order.CustomerName,
		AssignedStaffID: order.AssignedStaffID,
		OccurredAt:      time.Now().UTC(),
	}
}
