package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/frahspaces/storefront-backend/internal/app/service"
	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/frahspaces/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	catalogService service.CatalogService
}

func NewProductController(catalogService service.CatalogService) *ProductController {
	return &ProductController{
		catalogService: catalogService,
	}
}

// GetAllProducts returns the whole catalog
// GET /api/products
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.catalogService.ListProducts()
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, orEmpty(products))
}

// GetProductByID returns a single product
// GET /api/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id := c.Param("id")

	product, err := ctrl.catalogService.GetProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, product)
}

// Search matches name and description
// GET /api/search?q=
func (ctrl *ProductController) Search(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	q := c.Query("q")

	products, err := ctrl.catalogService.Search(q)
	if err != nil {
		log.Error("Search failed", err, map[string]interface{}{
			"query": q,
		})
		apperrors.InternalError(c, "Search failed")
		return
	}

	c.JSON(http.StatusOK, orEmpty(products))
}

// CreateProduct adds a catalog entry (Admin only)
// POST /api/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	product, err := ctrl.catalogService.CreateProduct(req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPrice) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, err.Error())
			return
		}
		log.Error("Failed to create product", err, nil)
		apperrors.ParseAndRespond(c, err, "product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      product.ID,
	})
}

// UpdateProduct applies a partial update (Admin only)
// PATCH /api/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id := c.Param("id")

	var req service.ProductUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product update request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if err := ctrl.catalogService.UpdateProduct(id, req); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidPrice):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, err.Error())
		default:
			log.Error("Failed to update product", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteProduct removes a catalog entry (Admin only)
// DELETE /api/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id := c.Param("id")

	if err := ctrl.catalogService.DeleteProduct(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.ParseAndRespond(c, err, "product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetCategories lists categories
// GET /api/categories
func (ctrl *ProductController) GetCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.catalogService.ListCategories()
	if err != nil {
		log.Error("Failed to fetch categories", err, nil)
		apperrors.InternalError(c, "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, orEmpty(categories))
}

// CreateCategory adds a category (Admin only)
// POST /api/admin/categories
func (ctrl *ProductController) CreateCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Category name is required")
		return
	}

	category, err := ctrl.catalogService.CreateCategory(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryExists):
			apperrors.Conflict(c, apperrors.CategoryExists, "Category already exists")
		case errors.Is(err, service.ErrInvalidInput):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Category name is required")
		default:
			log.Error("Failed to create category", err, nil)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      category.ID,
	})
}

func parseCategoryID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid category ID")
		return 0, false
	}
	return uint(id), true
}

// UpdateCategory applies a partial update (Admin only)
// PATCH /api/admin/categories/:id
func (ctrl *ProductController) UpdateCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseCategoryID(c)
	if !ok {
		return
	}

	var req service.CategoryUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if err := ctrl.catalogService.UpdateCategory(id, req); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
		case errors.Is(err, service.ErrCategoryExists):
			apperrors.Conflict(c, apperrors.CategoryExists, "Category already exists")
		case errors.Is(err, service.ErrInvalidInput):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Category name must not be empty")
		default:
			log.Error("Failed to update category", err, map[string]interface{}{
				"category_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteCategory removes a category (Admin only)
// DELETE /api/admin/categories/:id
func (ctrl *ProductController) DeleteCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseCategoryID(c)
	if !ok {
		return
	}

	if err := ctrl.catalogService.DeleteCategory(id); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		log.Error("Failed to delete category", err, map[string]interface{}{
			"category_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
