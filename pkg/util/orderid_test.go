package util

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderIDGeneratorFormat(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	g := &OrderIDGenerator{now: func() time.Time { return fixed }}

	assert.Equal(t, "ORD-1700000000000", g.Next())
	assert.Equal(t, "ORD-1700000000001", g.Next())
	assert.Equal(t, "ORD-1700000000002", g.Next())
}

func TestOrderIDGeneratorClockGoesBackwards(t *testing.T) {
	times := []time.Time{time.UnixMilli(2000), time.UnixMilli(1000)}
	i := 0
	g := &OrderIDGenerator{now: func() time.Time {
		ts := times[i]
		i++
		return ts
	}}

	assert.Equal(t, "ORD-2000", g.Next())
	assert.Equal(t, "ORD-2001", g.Next())
}

func TestOrderIDGeneratorConcurrentUnique(t *testing.T) {
	g := NewOrderIDGenerator()

	const n = 500
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- g.Next()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, n)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate order id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}
