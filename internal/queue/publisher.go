package queue

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/frahspaces/storefront-backend/pkg/logger"
)

// Publisher delivers order events. Publishing is best effort: callers log
// failures and never fail the request because of them.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

// MultiPublisher fans an event out to several publishers. Every publisher is
// tried; the returned error joins the individual failures.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event OrderEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			logger.Warn("Order event publisher failed", map[string]interface{}{
				"type":     event.Type,
				"order_id": event.OrderID,
				"error":    err.Error(),
			})
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Broadcaster is implemented by the websocket hub.
type Broadcaster interface {
	Broadcast(message []byte)
}

// BroadcastPublisher sends events to connected staff dashboards.
type BroadcastPublisher struct {
	Target Broadcaster
}

func (p BroadcastPublisher) Publish(_ context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.Target.Broadcast(body)
	return nil
}
