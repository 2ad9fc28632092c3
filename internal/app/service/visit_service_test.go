package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingVisits struct {
	mu       sync.Mutex
	recorded []string
	started  chan struct{}
	release  chan struct{}
	fail     bool
}

func (b *blockingVisits) Record(visitorID, path string) error {
	if b.started != nil {
		b.started <- struct{}{}
		<-b.release
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recorded = append(b.recorded, visitorID+" "+path)
	if b.fail {
		return errors.New("store unavailable")
	}
	return nil
}

func TestVisitService_RecordDefaultsToGuest(t *testing.T) {
	testDB := setupTestDB(t)
	visits := NewVisitService(repository.NewVisitRepository(testDB))

	require.NoError(t, visits.Record("  ", "/products"))

	var stored model.SiteVisit
	require.NoError(t, testDB.First(&stored).Error)
	assert.Equal(t, "guest", stored.VisitorID)
	assert.Equal(t, "/products", stored.Path)
	assert.False(t, stored.Timestamp.IsZero())
}

func TestVisitRecorder_DrainsOnClose(t *testing.T) {
	visits := &blockingVisits{}
	recorder := NewVisitRecorder(visits, 16)

	for i := 0; i < 10; i++ {
		assert.True(t, recorder.Enqueue("v", "/"))
	}
	recorder.Close()

	assert.Len(t, visits.recorded, 10)
	assert.False(t, recorder.Enqueue("v", "/late"))
	recorder.Close()
}

func TestVisitRecorder_DropsWhenFull(t *testing.T) {
	visits := &blockingVisits{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	recorder := NewVisitRecorder(visits, 1)

	require.True(t, recorder.Enqueue("v", "/first"))
	<-visits.started

	assert.True(t, recorder.Enqueue("v", "/second"))
	assert.False(t, recorder.Enqueue("v", "/third"))

	close(visits.release)
	go func() {
		for range visits.started {
		}
	}()
	recorder.Close()
	close(visits.started)

	assert.Equal(t, []string{"v /first", "v /second"}, visits.recorded)
}

func TestVisitRecorder_SwallowsStoreErrors(t *testing.T) {
	visits := &blockingVisits{fail: true}
	recorder := NewVisitRecorder(visits, 4)

	assert.True(t, recorder.Enqueue("v", "/"))
	recorder.Close()
	assert.Len(t, visits.recorded, 1)
}
