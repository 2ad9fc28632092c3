package middleware

import (
	"fmt"
	"net/http"

	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into a generic 500. The panic value is logged and
// never sent to the client.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		GetLoggerFromContext(c).Error("Panic recovered", fmt.Errorf("%v", recovered), map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalServerError, "Internal server error")
	})
}
