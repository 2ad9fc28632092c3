package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frahspaces/storefront-backend/config"
	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/frahspaces/storefront-backend/internal/app/service"
	"github.com/frahspaces/storefront-backend/internal/db"
	"github.com/frahspaces/storefront-backend/internal/middleware"
	"github.com/frahspaces/storefront-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "controller-test-secret"

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func setupControllerTest(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	store := config.StoreConfig{
		Name:          "frah spaces",
		AdminWhatsApp: "254700000000",
		Currency:      "KES",
		DefaultEmail:  "no-email@frahspaces.com",
	}

	authService := service.NewAuthService(userRepo, testSecret, time.Hour)
	userService := service.NewUserService(userRepo)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	orderService := service.NewOrderService(testDB, orderRepo, userRepo, store, nil)
	wishlistService := service.NewWishlistService(repository.NewWishlistRepository(testDB), productRepo)
	visitService := service.NewVisitService(repository.NewVisitRepository(testDB))

	auth := middleware.NewAuthMiddleware(authService, userService)
	user := auth.RequireRole(middleware.AnyUser...)
	staff := auth.RequireRole(middleware.StaffOrAdmin...)
	admin := auth.RequireRole(middleware.AdminOnly...)

	authCtrl := NewAuthController(authService)
	productCtrl := NewProductController(catalogService)
	orderCtrl := NewOrderController(orderService, nil)
	wishlistCtrl := NewWishlistController(wishlistService)
	uploadCtrl := NewUploadController(nil)
	siteCtrl := NewSiteController(testDB, "sqlite", visitService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())

	router.POST("/api/register", authCtrl.Register)
	router.POST("/api/login", authCtrl.Login)
	router.GET("/api/profile", user, authCtrl.GetProfile)
	router.PATCH("/api/profile", user, authCtrl.UpdateProfile)
	router.GET("/api/search", productCtrl.Search)
	router.GET("/api/products/:id", productCtrl.GetProductByID)
	router.PATCH("/api/admin/products/:id", admin, productCtrl.UpdateProduct)
	router.POST("/api/checkout", auth.OptionalAuthenticate(), orderCtrl.Checkout)
	router.GET("/api/user/orders", user, orderCtrl.GetMyOrders)
	router.GET("/api/user/orders/:id/items", user, orderCtrl.GetMyOrderItems)
	router.PATCH("/api/admin/orders/:id", staff, orderCtrl.UpdateOrder)
	router.GET("/api/admin/orders/export", staff, orderCtrl.ExportOrders)
	router.POST("/api/wishlist", user, wishlistCtrl.AddToWishlist)
	router.GET("/api/wishlist/:productId", user, wishlistCtrl.CheckWishlist)
	router.POST("/api/uploads/presigned-url", user, uploadCtrl.GeneratePresignedURL)
	router.GET("/api/health", siteCtrl.Health)
	router.POST("/api/track", siteCtrl.Track)

	return &testEnv{db: testDB, router: router}
}

func (e *testEnv) createUser(t *testing.T, email string, role model.UserRole) (*model.User, string) {
	t.Helper()
	hash, err := util.HashPassword("password123")
	require.NoError(t, err)
	u := &model.User{Email: email, PasswordHash: hash, FullName: "Test User", Role: role}
	require.NoError(t, e.db.Create(u).Error)

	token, err := util.GenerateToken(u.ID, string(u.Role), testSecret, time.Hour)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) createProduct(t *testing.T, name, price string) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:         name,
		CategoryName: "Cement",
		Price:        decimal.RequireFromString(price),
		Unit:         "50kg bag",
		Description:  "General purpose",
		InStock:      true,
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthController_RegisterAndLogin(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodPost, "/api/register", "", gin.H{
		"email": "jane@example.com", "password": "secret", "full_name": "Jane",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, decode(t, w)["userId"])

	w = env.do(t, http.MethodPost, "/api/register", "", gin.H{
		"email": "jane@example.com", "password": "secret",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "AUTH_EMAIL_EXISTS", decode(t, w)["code"])

	w = env.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "jane@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	profile := body["user"].(map[string]interface{})
	assert.Equal(t, "user", profile["role"])
	assert.NotContains(t, profile, "password")

	w = env.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "jane@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])
}

func TestAuthController_Profile(t *testing.T) {
	env := setupControllerTest(t)
	_, token := env.createUser(t, "profile@example.com", model.RoleUser)

	w := env.do(t, http.MethodPatch, "/api/profile", token, gin.H{"address": "Kilimani"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Kilimani", body["address"])
	assert.Equal(t, "Test User", body["full_name"])

	w = env.do(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductController_PartialUpdateKeepsOmittedFields(t *testing.T) {
	env := setupControllerTest(t)
	_, adminToken := env.createUser(t, "admin@example.com", model.RoleAdmin)
	product := env.createProduct(t, "Portland Cement", "850")

	w := env.do(t, http.MethodPatch, "/api/admin/products/"+product.ID, adminToken, gin.H{
		"price":   900,
		"inStock": "0",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/products/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Portland Cement", body["name"])
	assert.Equal(t, "50kg bag", body["unit"])
	assert.Equal(t, float64(900), body["price"])
	assert.Equal(t, false, body["inStock"])

	w = env.do(t, http.MethodPatch, "/api/admin/products/missing", adminToken, gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductController_SearchBlankQuery(t *testing.T) {
	env := setupControllerTest(t)
	env.createProduct(t, "Portland Cement", "850")

	w := env.do(t, http.MethodGet, "/api/search?q=%20", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestOrderController_GuestCheckout(t *testing.T) {
	env := setupControllerTest(t)
	product := env.createProduct(t, "Portland Cement", "850")

	w := env.do(t, http.MethodPost, "/api/checkout", "", gin.H{
		"items": []gin.H{{"productId": product.ID, "productName": product.Name, "quantity": 2, "price": 850}},
		"total": 1700,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["orderId"])
	assert.Contains(t, body["whatsappUrl"], "https://wa.me/254700000000?text=")

	var order model.Order
	require.NoError(t, env.db.First(&order, "id = ?", body["orderId"]).Error)
	assert.Nil(t, order.UserID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
}

func TestOrderController_CheckoutNullCreateAccount(t *testing.T) {
	env := setupControllerTest(t)
	product := env.createProduct(t, "Portland Cement", "850")

	w := env.do(t, http.MethodPost, "/api/checkout", "", gin.H{
		"items":         []gin.H{{"productId": product.ID, "productName": product.Name, "quantity": 1, "price": 850}},
		"total":         850,
		"createAccount": nil,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var users int64
	require.NoError(t, env.db.Model(&model.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestOrderController_CheckoutRejectsEmptyCart(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodPost, "/api/checkout", "", gin.H{"items": []gin.H{}, "total": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ORDER_EMPTY", decode(t, w)["code"])
}

func TestOrderController_OrderItemsAreOwnerOnly(t *testing.T) {
	env := setupControllerTest(t)
	product := env.createProduct(t, "Portland Cement", "850")
	_, ownerToken := env.createUser(t, "owner@example.com", model.RoleUser)
	_, otherToken := env.createUser(t, "other@example.com", model.RoleUser)

	w := env.do(t, http.MethodPost, "/api/checkout", ownerToken, gin.H{
		"items": []gin.H{{"productId": product.ID, "productName": product.Name, "quantity": 1, "price": 850}},
		"total": 850,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := decode(t, w)["orderId"].(string)

	w = env.do(t, http.MethodGet, "/api/user/orders/"+orderID+"/items", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []model.OrderItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Portland Cement", items[0].ProductName)

	w = env.do(t, http.MethodGet, "/api/user/orders/"+orderID+"/items", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTHZ_OWNER_ONLY", decode(t, w)["code"])

	w = env.do(t, http.MethodGet, "/api/user/orders", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestOrderController_UpdateOrder(t *testing.T) {
	env := setupControllerTest(t)
	product := env.createProduct(t, "Portland Cement", "850")
	_, staffToken := env.createUser(t, "staff@example.com", model.RoleStaff)

	w := env.do(t, http.MethodPost, "/api/checkout", "", gin.H{
		"items": []gin.H{{"productId": product.ID, "productName": product.Name, "quantity": 1, "price": 850}},
		"total": 850,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := decode(t, w)["orderId"].(string)

	w = env.do(t, http.MethodPatch, "/api/admin/orders/"+orderID, staffToken, gin.H{"status": "shipped", "trackingNumber": "TRK-1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPatch, "/api/admin/orders/"+orderID, staffToken, gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ORDER_INVALID_STATUS", decode(t, w)["code"])

	var order model.Order
	require.NoError(t, env.db.First(&order, "id = ?", orderID).Error)
	assert.Equal(t, model.OrderStatusShipped, order.Status)
	require.NotNil(t, order.TrackingNumber)
	assert.Equal(t, "TRK-1", *order.TrackingNumber)

	w = env.do(t, http.MethodPatch, "/api/admin/orders/ORD-MISSING", staffToken, gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_ExportOrders(t *testing.T) {
	env := setupControllerTest(t)
	_, staffToken := env.createUser(t, "staff@example.com", model.RoleStaff)

	w := env.do(t, http.MethodGet, "/api/admin/orders/export", staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders-")
	assert.NotZero(t, w.Body.Len())
}

func TestWishlistController(t *testing.T) {
	env := setupControllerTest(t)
	product := env.createProduct(t, "Portland Cement", "850")
	_, token := env.createUser(t, "wish@example.com", model.RoleUser)

	w := env.do(t, http.MethodPost, "/api/wishlist", token, gin.H{"productId": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	for i := 0; i < 2; i++ {
		w = env.do(t, http.MethodPost, "/api/wishlist", token, gin.H{"productId": product.ID})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/wishlist/"+product.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["inWishlist"])
}

func TestUploadController_UnavailableWithoutBucket(t *testing.T) {
	env := setupControllerTest(t)
	_, token := env.createUser(t, "upload@example.com", model.RoleUser)

	w := env.do(t, http.MethodPost, "/api/uploads/presigned-url", token, gin.H{
		"filename": "a.png", "content_type": "image/png",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "UPLOAD_UNAVAILABLE", decode(t, w)["code"])
}

func TestSiteController(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sqlite", decode(t, w)["db"])

	w = env.do(t, http.MethodPost, "/api/track", "", gin.H{"path": "/products", "visitorId": "v-1"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	var visits []model.SiteVisit
	require.NoError(t, env.db.Find(&visits).Error)
	require.Len(t, visits, 1)
	assert.Equal(t, "v-1", visits[0].VisitorID)
	assert.Equal(t, "/products", visits[0].Path)
}
