package controller

import (
	"errors"
	"net/http"

	"github.com/frahspaces/storefront-backend/internal/app/service"
	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/frahspaces/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

type AddToWishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// GetWishlist returns the caller's saved products
// GET /api/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	products, err := ctrl.wishlistService.List(userID)
	if err != nil {
		log.Error("Failed to fetch wishlist", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch wishlist")
		return
	}

	c.JSON(http.StatusOK, orEmpty(products))
}

// AddToWishlist saves a product; saving it twice is a no-op
// POST /api/wishlist
func (ctrl *WishlistController) AddToWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "productId is required")
		return
	}

	if err := ctrl.wishlistService.Add(userID, req.ProductID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to add to wishlist", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
		})
		apperrors.InternalError(c, "Failed to add to wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveFromWishlist
// DELETE /api/wishlist/:productId
func (ctrl *WishlistController) RemoveFromWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)
	productID := c.Param("productId")

	if err := ctrl.wishlistService.Remove(userID, productID); err != nil {
		log.Error("Failed to remove from wishlist", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		apperrors.InternalError(c, "Failed to remove from wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CheckWishlist reports whether a product is saved
// GET /api/wishlist/:productId
func (ctrl *WishlistController) CheckWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)
	productID := c.Param("productId")

	found, err := ctrl.wishlistService.Contains(userID, productID)
	if err != nil {
		log.Error("Failed to check wishlist", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"inWishlist": found})
}
