package router

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/frahspaces/storefront-backend/config"
	"github.com/frahspaces/storefront-backend/internal/app/controller"
	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/frahspaces/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController     *controller.AuthController
	productController  *controller.ProductController
	orderController    *controller.OrderController
	wishlistController *controller.WishlistController
	reviewController   *controller.ReviewController
	adminController    *controller.AdminController
	uploadController   *controller.UploadController
	siteController     *controller.SiteController
	authMiddleware     *middleware.AuthMiddleware
	limiter            middleware.Limiter
	visits             middleware.VisitQueue
	config             *config.Config
}

// NewRouter wires the HTTP surface. limiter and visits may be nil.
func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	orderController *controller.OrderController,
	wishlistController *controller.WishlistController,
	reviewController *controller.ReviewController,
	adminController *controller.AdminController,
	uploadController *controller.UploadController,
	siteController *controller.SiteController,
	authMiddleware *middleware.AuthMiddleware,
	limiter middleware.Limiter,
	visits middleware.VisitQueue,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		productController:  productController,
		orderController:    orderController,
		wishlistController: wishlistController,
		reviewController:   reviewController,
		adminController:    adminController,
		uploadController:   uploadController,
		siteController:     siteController,
		authMiddleware:     authMiddleware,
		limiter:            limiter,
		visits:             visits,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.Recovery())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(middleware.VisitTracker(r.visits))

	admin := r.authMiddleware.RequireRole(middleware.AdminOnly...)
	staff := r.authMiddleware.RequireRole(middleware.StaffOrAdmin...)
	user := r.authMiddleware.RequireRole(middleware.AnyUser...)

	api := router.Group("/api")
	{
		api.GET("/health", r.siteController.Health)
		api.POST("/track", r.siteController.Track)

		api.GET("/products", r.productController.GetAllProducts)
		api.GET("/products/:id", r.productController.GetProductByID)
		api.GET("/products/:id/reviews", r.reviewController.GetProductReviews)
		api.GET("/categories", r.productController.GetCategories)
		api.GET("/search", r.productController.Search)

		api.POST("/register", middleware.RateLimit(r.limiter, "register"), r.authController.Register)
		api.POST("/login", middleware.RateLimit(r.limiter, "login"), r.authController.Login)
		api.GET("/profile", user, r.authController.GetProfile)
		api.PATCH("/profile", user, r.authController.UpdateProfile)

		api.POST("/checkout",
			middleware.RateLimit(r.limiter, "checkout"),
			r.authMiddleware.OptionalAuthenticate(),
			r.orderController.Checkout,
		)

		api.GET("/user/orders", user, r.orderController.GetMyOrders)
		api.GET("/user/orders/:id/items", user, r.orderController.GetMyOrderItems)

		wishlist := api.Group("/wishlist")
		wishlist.Use(user)
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("", r.wishlistController.AddToWishlist)
			wishlist.GET("/:productId", r.wishlistController.CheckWishlist)
			wishlist.DELETE("/:productId", r.wishlistController.RemoveFromWishlist)
		}

		api.POST("/reviews", user, r.reviewController.CreateReview)
		api.POST("/uploads/presigned-url", user, r.uploadController.GeneratePresignedURL)

		adminGroup := api.Group("/admin")
		{
			adminGroup.GET("/products", admin, r.productController.GetAllProducts)
			adminGroup.POST("/products", admin, r.productController.CreateProduct)
			adminGroup.PATCH("/products/:id", admin, r.productController.UpdateProduct)
			adminGroup.DELETE("/products/:id", admin, r.productController.DeleteProduct)

			adminGroup.POST("/categories", admin, r.productController.CreateCategory)
			adminGroup.PATCH("/categories/:id", admin, r.productController.UpdateCategory)
			adminGroup.DELETE("/categories/:id", admin, r.productController.DeleteCategory)

			adminGroup.GET("/users", admin, r.adminController.GetUsers)
			adminGroup.POST("/users", admin, r.adminController.CreateUser)
			adminGroup.PATCH("/users/:id", admin, r.adminController.UpdateUser)
			adminGroup.DELETE("/users/:id", admin, r.adminController.DeleteUser)
			adminGroup.GET("/staff", admin, r.adminController.GetStaff)

			adminGroup.GET("/orders", staff, r.orderController.GetAllOrders)
			adminGroup.GET("/orders/export", staff, r.orderController.ExportOrders)
			adminGroup.GET("/orders/live", staff, r.orderController.LiveOrders)
			adminGroup.GET("/orders/:id/items", staff, r.orderController.GetOrderItems)
			adminGroup.PATCH("/orders/:id", staff, r.orderController.UpdateOrder)
			adminGroup.PATCH("/orders/:id/assign", staff, r.orderController.AssignStaff)

			adminGroup.GET("/stats", staff, r.adminController.GetStats)
			adminGroup.GET("/analytics", staff, r.adminController.GetAnalytics)
		}
	}

	router.NoRoute(r.notFound)

	return router
}

// notFound answers unknown API paths with JSON and everything else with a
// file from the frontend build, falling back to index.html for client side
// routes.
func (r *Router) notFound(c *gin.Context) {
	reqPath := c.Request.URL.Path
	if reqPath == "/api" || strings.HasPrefix(reqPath, "/api/") {
		middleware.GetLoggerFromContext(c).Warn("Endpoint not found", map[string]interface{}{
			"method": c.Request.Method,
		})
		apperrors.NotFound(c, apperrors.ResourceNotFound, fmt.Sprintf("Endpoint %s not found on this server", c.Request.URL.RequestURI()))
		return
	}

	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Not found")
		return
	}

	root := r.config.Server.FrontendDir
	file := filepath.Join(root, filepath.FromSlash(path.Clean("/"+reqPath)))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}

	index := filepath.Join(root, "index.html")
	if _, err := os.Stat(index); err != nil {
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Not found")
		return
	}
	c.File(index)
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Visitor-ID, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
