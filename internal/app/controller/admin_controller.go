package controller

import (
	"errors"
	"net/http"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/service"
	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/frahspaces/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AdminController struct {
	userService      service.UserService
	dashboardService service.DashboardService
}

func NewAdminController(userService service.UserService, dashboardService service.DashboardService) *AdminController {
	return &AdminController{
		userService:      userService,
		dashboardService: dashboardService,
	}
}

type CreateUserRequest struct {
	Username *string        `json:"username"`
	Email    string         `json:"email" binding:"required"`
	Password string         `json:"password" binding:"required"`
	FullName string         `json:"full_name"`
	Address  *string        `json:"address"`
	Role     model.UserRole `json:"role"`
}

// StaffMember is the assignment picker entry.
type StaffMember struct {
	ID       string         `json:"id"`
	FullName string         `json:"full_name"`
	Role     model.UserRole `json:"role"`
}

// GetUsers
// GET /api/admin/users
func (ctrl *AdminController) GetUsers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	users, err := ctrl.userService.ListUsers()
	if err != nil {
		log.Error("Failed to fetch users", err, nil)
		apperrors.InternalError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, orEmpty(users))
}

// CreateUser lets an administrator create an account with any role
// POST /api/admin/users
func (ctrl *AdminController) CreateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email and password are required")
		return
	}

	user, err := ctrl.userService.CreateUser(service.NewAccount{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Address:  req.Address,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email already exists")
		case errors.Is(err, service.ErrUsernameAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "Username already exists")
		case errors.Is(err, service.ErrInvalidRole):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid role")
		case errors.Is(err, service.ErrInvalidInput):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		default:
			log.Error("Failed to create user", err, nil)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"userId":  user.ID,
	})
}

// UpdateUser
// PATCH /api/admin/users/:id
func (ctrl *AdminController) UpdateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id := c.Param("id")

	var req service.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if err := ctrl.userService.UpdateUser(id, req); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidRole):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid role")
		default:
			log.Error("Failed to update user", err, map[string]interface{}{
				"user_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteUser
// DELETE /api/admin/users/:id
func (ctrl *AdminController) DeleteUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id := c.Param("id")

	if err := ctrl.userService.DeleteUser(id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to delete user", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetStaff lists accounts orders can be assigned to
// GET /api/admin/staff
func (ctrl *AdminController) GetStaff(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	users, err := ctrl.userService.ListStaff()
	if err != nil {
		log.Error("Failed to fetch staff", err, nil)
		apperrors.InternalError(c, "Failed to fetch staff")
		return
	}

	staff := make([]StaffMember, 0, len(users))
	for _, u := range users {
		staff = append(staff, StaffMember{ID: u.ID, FullName: u.FullName, Role: u.Role})
	}
	c.JSON(http.StatusOK, staff)
}

// GetStats
// GET /api/admin/stats
func (ctrl *AdminController) GetStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.dashboardService.Stats()
	if err != nil {
		log.Error("Failed to compute stats", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetAnalytics
// GET /api/admin/analytics
func (ctrl *AdminController) GetAnalytics(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	analytics, err := ctrl.dashboardService.Analytics()
	if err != nil {
		log.Error("Failed to compute analytics", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, analytics)
}
