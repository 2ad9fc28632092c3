package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const VisitorIDHeader = "X-Visitor-ID"

// VisitQueue accepts page views without blocking.
type VisitQueue interface {
	Enqueue(visitorID, path string) bool
}

// VisitTracker records storefront page views: GET requests outside /api
// whose path has no file extension.
func VisitTracker(visits VisitQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if visits != nil && c.Request.Method == http.MethodGet && isPageView(path) {
			visitorID := strings.TrimSpace(c.GetHeader(VisitorIDHeader))
			if visitorID == "" {
				visitorID = "guest"
			}
			visits.Enqueue(visitorID, path)
		}
		c.Next()
	}
}

func isPageView(path string) bool {
	return !strings.HasPrefix(path, "/api") && !strings.Contains(path, ".")
}
