package controller

import (
	"net/http"
	"strings"

	"github.com/frahspaces/storefront-backend/internal/app/service"
	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/frahspaces/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SiteController serves the health probe and explicit visit tracking.
type SiteController struct {
	db           *gorm.DB
	driver       string
	visitService service.VisitService
}

func NewSiteController(db *gorm.DB, driver string, visitService service.VisitService) *SiteController {
	return &SiteController{
		db:           db,
		driver:       driver,
		visitService: visitService,
	}
}

type TrackRequest struct {
	Path      string `json:"path"`
	VisitorID string `json:"visitorId"`
}

// Health
// GET /api/health
func (ctrl *SiteController) Health(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sqlDB, err := ctrl.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		log.Error("Health check failed", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"db":     "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"db":     ctrl.driver,
	})
}

// Track records a page view reported by the SPA
// POST /api/track
func (ctrl *SiteController) Track(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	visitorID := strings.TrimSpace(req.VisitorID)
	if visitorID == "" {
		visitorID = c.GetHeader(middleware.VisitorIDHeader)
	}

	if err := ctrl.visitService.Record(visitorID, req.Path); err != nil {
		log.Error("Failed to track visit", err, map[string]interface{}{
			"path": req.Path,
		})
		apperrors.InternalError(c, "Failed to track visit")
		return
	}

	c.Status(http.StatusNoContent)
}
