package scheduler

import (
	"context"
	"time"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/queue"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// StaleOrderFinder is implemented by service.OrderService.
type StaleOrderFinder interface {
	FindStaleUnassigned(olderThan time.Duration) ([]model.Order, error)
}

// OrderReminderScheduler periodically re-announces pending orders that no
// staff member has been assigned to.
type OrderReminderScheduler struct {
	cron   *cron.Cron
	spec   string
	after  time.Duration
	orders StaleOrderFinder
	events queue.Publisher
}

func NewOrderReminderScheduler(spec string, after time.Duration, orders StaleOrderFinder, events queue.Publisher) *OrderReminderScheduler {
	return &OrderReminderScheduler{
		cron:   cron.New(),
		spec:   spec,
		after:  after,
		orders: orders,
		events: events,
	}
}

func (s *OrderReminderScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(context.Background()) }); err != nil {
		logger.Error("Failed to add cron job for order reminders", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Order reminder scheduler started", map[string]interface{}{
		"spec":  s.spec,
		"after": s.after.String(),
	})
	return nil
}

// RunOnce publishes one reminder per stale order and returns how many were
// sent.
func (s *OrderReminderScheduler) RunOnce(ctx context.Context) int {
	stale, err := s.orders.FindStaleUnassigned(s.after)
	if err != nil {
		logger.Error("Failed to find unassigned orders", err)
		return 0
	}

	sent := 0
	for i := range stale {
		if err := s.events.Publish(ctx, queue.NewOrderEvent(queue.EventOrderReminder, &stale[i])); err != nil {
			logger.Warn("Failed to publish order reminder", map[string]interface{}{
				"order_id": stale[i].ID,
				"error":    err.Error(),
			})
			continue
		}
		sent++
	}

	if len(stale) > 0 {
		logger.Warn("Orders waiting for staff assignment", map[string]interface{}{
			"count": len(stale),
			"sent":  sent,
		})
	}
	return sent
}

// Stop waits for a running job to finish.
func (s *OrderReminderScheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Order reminder scheduler stopped")
}
