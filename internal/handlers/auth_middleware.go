package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
)

const (
	ctxUserID    = "user_id"
	ctxPrincipal = "user"
	ctxUserRole  = "user_role"
	ctxUserEmail = "user_email"
)

// AuthMiddleware authenticates bearer tokens through the auth service
type AuthMiddleware struct {
	service services.AuthService
	logger  utils.Logger
}

func NewAuthMiddleware(service services.AuthService, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{service: service, logger: logger}
}

// Authenticate rejects requests without a valid, unrevoked bearer token
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authorization header missing or malformed",
			})
			return
		}

		principal, err := am.service.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.GetLogger(c, am.logger).Debug("Authentication failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: unauthorizedMessage(err),
			})
			return
		}

		c.Set(ctxUserID, principal.ID)
		c.Set(ctxPrincipal, *principal)
		c.Set(ctxUserRole, principal.Role)
		c.Set(ctxUserEmail, principal.Email)

		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role. ADMIN always passes.
func (am *AuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ctxUserRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "user role not found in context",
			})
			return
		}

		role, ok := userRole.(models.UserRole)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "invalid user role format",
			})
			return
		}

		hasRequiredRole := role == models.RoleAdmin
		for _, requiredRole := range requiredRoles {
			if role == requiredRole {
				hasRequiredRole = true
				break
			}
		}

		if !hasRequiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			})
			return
		}

		c.Next()
	}
}

// GetPrincipal returns the caller set by Authenticate
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(ctxPrincipal)
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
