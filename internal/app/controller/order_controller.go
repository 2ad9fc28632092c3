package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/frahspaces/storefront-backend/internal/app/service"
	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/frahspaces/storefront-backend/internal/middleware"
	"github.com/frahspaces/storefront-backend/internal/websocket"
	"github.com/frahspaces/storefront-backend/pkg/optional"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderController struct {
	orderService service.OrderService
	hub          *websocket.Hub
}

// NewOrderController takes an optional hub for the live order feed.
func NewOrderController(orderService service.OrderService, hub *websocket.Hub) *OrderController {
	return &OrderController{
		orderService: orderService,
		hub:          hub,
	}
}

type AssignStaffRequest struct {
	StaffID optional.Value[string] `json:"staffId"`
}

// Checkout places an order for a guest or a signed in user
// POST /api/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	callerID, _ := middleware.GetUserID(c)
	result, err := ctrl.orderService.Checkout(c.Request.Context(), callerID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyOrder):
			apperrors.BadRequest(c, apperrors.OrderEmpty, "No items in order")
		case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrInvalidTotal):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, err.Error())
		case errors.Is(err, service.ErrInvalidInput):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "An account with this email already exists")
		case errors.Is(err, service.ErrUsernameAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "Username already exists")
		default:
			log.Error("Checkout failed", err, nil)
			apperrors.InternalError(c, "Failed to process checkout")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"orderId":     result.Order.ID,
		"whatsappUrl": result.WhatsAppURL,
	})
}

// GetMyOrders returns the caller's orders, newest first
// GET /api/user/orders
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	orders, err := ctrl.orderService.ListUserOrders(userID)
	if err != nil {
		log.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, orEmpty(orders))
}

// GetMyOrderItems returns the lines of one of the caller's orders
// GET /api/user/orders/:id/items
func (ctrl *OrderController) GetMyOrderItems(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)
	orderID := c.Param("id")

	items, err := ctrl.orderService.GetUserOrderItems(userID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) || errors.Is(err, service.ErrOrderNotOwned) {
			log.Warn("Order items denied", map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "Access denied")
			return
		}
		log.Error("Failed to fetch order items", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, orEmpty(items))
}

// GetAllOrders lists every order with the placing account
// GET /api/admin/orders
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orders, err := ctrl.orderService.ListAllOrders()
	if err != nil {
		log.Error("Failed to fetch orders", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, orEmpty(orders))
}

// GetOrderItems returns the lines of any order
// GET /api/admin/orders/:id/items
func (ctrl *OrderController) GetOrderItems(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	orderID := c.Param("id")

	items, err := ctrl.orderService.GetOrderItems(orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to fetch order items", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, orEmpty(items))
}

// AssignStaff sets or clears the staff member handling an order
// PATCH /api/admin/orders/:id/assign
func (ctrl *OrderController) AssignStaff(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	orderID := c.Param("id")

	var req AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	var staffID *string
	if req.StaffID.HasValue() {
		staffID = req.StaffID.Ptr()
	}

	if _, err := ctrl.orderService.AssignStaff(c.Request.Context(), orderID, staffID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Assignment failed", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.InternalError(c, "Assignment failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateOrder changes status, tracking, assignment or notes
// PATCH /api/admin/orders/:id
func (ctrl *OrderController) UpdateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	orderID := c.Param("id")

	var req service.OrderUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if _, err := ctrl.orderService.UpdateOrder(c.Request.Context(), orderID, req); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		case errors.Is(err, service.ErrInvalidStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Invalid order status")
		default:
			log.Error("Failed to update order", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportOrders downloads all orders as a spreadsheet
// GET /api/admin/orders/export
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orders, err := ctrl.orderService.ListAllOrders()
	if err != nil {
		log.Error("Failed to fetch orders for export", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	var buf bytes.Buffer
	if err := service.WriteOrdersXLSX(&buf, orders); err != nil {
		log.Error("Failed to build orders spreadsheet", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Orders exported", map[string]interface{}{
		"count": len(orders),
	})

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// LiveOrders upgrades to a websocket that streams order events
// GET /api/admin/orders/live
func (ctrl *OrderController) LiveOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.hub == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalServerError, "Live updates are not available")
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := websocket.Serve(ctrl.hub, c.Writer, c.Request, userID); err != nil {
		log.Warn("Websocket upgrade failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
