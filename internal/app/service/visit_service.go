package service

import (
	"strings"
	"sync"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/frahspaces/storefront-backend/pkg/logger"
)

const guestVisitor = "guest"

type VisitService interface {
	Record(visitorID, path string) error
}

type visitService struct {
	visitRepo repository.VisitRepository
}

func NewVisitService(visitRepo repository.VisitRepository) VisitService {
	return &visitService{visitRepo: visitRepo}
}

// Record stores a page view. An empty visitor id is recorded as "guest".
func (s *visitService) Record(visitorID, path string) error {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		visitorID = guestVisitor
	}
	return s.visitRepo.Create(&model.SiteVisit{VisitorID: visitorID, Path: path})
}

type visit struct {
	visitorID string
	path      string
}

// VisitRecorder stores page views on a single background worker so that
// request handling never waits on the database. When the buffer is full new
// visits are dropped.
type VisitRecorder struct {
	visits VisitService
	queue  chan visit
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewVisitRecorder(visits VisitService, buffer int) *VisitRecorder {
	if buffer < 1 {
		buffer = 1
	}
	r := &VisitRecorder{
		visits: visits,
		queue:  make(chan visit, buffer),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *VisitRecorder) run() {
	defer r.wg.Done()
	for v := range r.queue {
		if err := r.visits.Record(v.visitorID, v.path); err != nil {
			logger.Warn("Failed to record site visit", map[string]interface{}{
				"path":  v.path,
				"error": err.Error(),
			})
		}
	}
}

// Enqueue reports whether the visit was accepted.
func (r *VisitRecorder) Enqueue(visitorID, path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}

	select {
	case r.queue <- visit{visitorID: visitorID, path: path}:
		return true
	default:
		logger.Warn("Visit buffer full, dropping visit", map[string]interface{}{
			"path": path,
		})
		return false
	}
}

// Close stops accepting visits and waits until the buffered ones are stored.
func (r *VisitRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}
