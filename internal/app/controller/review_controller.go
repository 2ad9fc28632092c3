package controller

import (
	"errors"
	"net/http"

	"github.com/frahspaces/storefront-backend/internal/app/service"
	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/frahspaces/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

// GetProductReviews
// GET /api/products/:id/reviews
func (ctrl *ReviewController) GetProductReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	productID := c.Param("id")

	reviews, err := ctrl.reviewService.ListForProduct(productID)
	if err != nil {
		log.Error("Failed to fetch reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "Failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, orEmpty(reviews))
}

// CreateReview
// POST /api/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req service.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if _, err := ctrl.reviewService.Create(userID, req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5")
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.Unauthorized(c, "User not authenticated")
		default:
			log.Error("Failed to submit review", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			apperrors.InternalError(c, "Failed to submit review")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}
