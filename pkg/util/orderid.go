package util

import (
	"fmt"
	"sync"
	"time"
)

// OrderIDGenerator produces "ORD-<unix millis>" ids that strictly increase
// within a process, even when several checkouts land in the same millisecond.
type OrderIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewOrderIDGenerator() *OrderIDGenerator {
	return &OrderIDGenerator{now: time.Now}
}

// Next returns the next order id.
func (g *OrderIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("ORD-%d", ms)
}
