package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/service"
	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/frahspaces/storefront-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Role policies. Each lists its roles literally; there is no hierarchy.
var (
	AdminOnly    = []model.UserRole{model.RoleAdmin}
	StaffOrAdmin = []model.UserRole{model.RoleStaff, model.RoleAdmin}
	AnyUser      = []model.UserRole{model.RoleUser, model.RoleStaff, model.RoleAdmin}
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Role   model.UserRole
}

// Rejection is the terminal response of a failed check.
type Rejection struct {
	Status  int
	Code    string
	Message string
}

// Check inspects the request and either returns nil to continue or a
// rejection that ends it. Checks may store the principal on the context.
type Check func(c *gin.Context) *Rejection

// Guard runs checks in order and stops at the first rejection.
func Guard(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, check := range checks {
			if r := check(c); r != nil {
				GetLoggerFromContext(c).Warn("Request rejected", map[string]interface{}{
					"status": r.Status,
					"code":   r.Code,
				})
				apperrors.RespondWithError(c, r.Status, r.Code, r.Message)
				return
			}
		}
	}
}

// RoleLookup returns the stored role of a user. service.ErrUserNotFound
// means the account no longer exists.
type RoleLookup interface {
	CurrentRole(userID string) (model.UserRole, error)
}

// TokenVerifier is satisfied by service.AuthService.
type TokenVerifier interface {
	Verify(token string) (*service.Identity, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
	roles  RoleLookup
}

// NewAuthMiddleware checks bearer tokens with tokens. With a non-nil roles
// lookup the role is read from the store on every request instead of
// trusting the token.
func NewAuthMiddleware(tokens TokenVerifier, roles RoleLookup) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		roles:  roles,
	}
}

// bearerToken reads "Authorization: Bearer <token>", falling back to the
// token query parameter used by websocket clients.
func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		token := c.Query("token")
		return token, token != ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(code, message string) *Rejection {
	return &Rejection{Status: http.StatusUnauthorized, Code: code, Message: message}
}

// resolve verifies the token and, when configured, refreshes the role.
func (m *AuthMiddleware) resolve(token string) (*Principal, *Rejection) {
	identity, err := m.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, util.ErrExpiredToken) {
			return nil, unauthorized(apperrors.AuthTokenExpired, "Token has expired")
		}
		return nil, unauthorized(apperrors.AuthTokenInvalid, "Invalid token")
	}

	p := &Principal{UserID: identity.UserID, Role: identity.Role}
	if m.roles == nil {
		return p, nil
	}

	role, err := m.roles.CurrentRole(identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return nil, unauthorized(apperrors.AuthTokenInvalid, "Invalid token")
		}
		return nil, &Rejection{
			Status:  http.StatusInternalServerError,
			Code:    apperrors.InternalServerError,
			Message: "Internal server error",
		}
	}
	p.Role = role
	return p, nil
}

// RequireAuth rejects requests without a valid token.
func (m *AuthMiddleware) RequireAuth() Check {
	return func(c *gin.Context) *Rejection {
		token, ok := bearerToken(c)
		if !ok {
			return unauthorized(apperrors.AuthUnauthorized, "Access denied")
		}
		p, rejection := m.resolve(token)
		if rejection != nil {
			return rejection
		}
		c.Set(principalKey, p)

		GetLoggerFromContext(c).Debug("User authenticated", map[string]interface{}{
			"user_id": p.UserID,
			"role":    p.Role,
		})
		return nil
	}
}

// OptionalAuth never rejects; a missing or bad token leaves the request
// anonymous.
func (m *AuthMiddleware) OptionalAuth() Check {
	return func(c *gin.Context) *Rejection {
		token, ok := bearerToken(c)
		if !ok {
			return nil
		}
		if p, rejection := m.resolve(token); rejection == nil {
			c.Set(principalKey, p)
		} else {
			GetLoggerFromContext(c).Debug("Ignoring invalid token, continuing as guest", map[string]interface{}{
				"code": rejection.Code,
			})
		}
		return nil
	}
}

// HasRole must run after RequireAuth.
func HasRole(roles ...model.UserRole) Check {
	return func(c *gin.Context) *Rejection {
		p, ok := GetPrincipal(c)
		if !ok {
			return unauthorized(apperrors.AuthUnauthorized, "Access denied")
		}
		for _, r := range roles {
			if p.Role == r {
				return nil
			}
		}
		return &Rejection{
			Status:  http.StatusForbidden,
			Code:    apperrors.AuthzForbidden,
			Message: "Access denied: insufficient permissions",
		}
	}
}

func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return Guard(m.OptionalAuth())
}

// RequireRole authenticates the caller and checks the role in one gate.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return Guard(m.RequireAuth(), HasRole(roles...))
}

// GetPrincipal returns the caller resolved by an earlier check.
func GetPrincipal(c *gin.Context) (*Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}

// GetUserID returns the caller's id, or "" for anonymous requests.
func GetUserID(c *gin.Context) (string, bool) {
	p, ok := GetPrincipal(c)
	if !ok {
		return "", false
	}
	return p.UserID, true
}
