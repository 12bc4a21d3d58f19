package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialid/internal/domain"
	"socialid/internal/logger"
	"socialid/internal/port"
	"socialid/internal/service"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "user"
	ContextKeyRole   = "role"
	ContextKeyClaims = "claims"
)

// AuthMiddleware returns Gin middleware that requires a valid access token
// and injects the authenticated user.
func AuthMiddleware(authService service.AuthService, users port.UserRepository) gin.HandlerFunc {
	return authenticate(authService, users, true)
}

// OptionalAuthMiddleware authenticates the request when an Authorization
// header is present. A present but invalid token is still rejected.
func OptionalAuthMiddleware(authService service.AuthService, users port.UserRepository) gin.HandlerFunc {
	return authenticate(authService, users, false)
}

func authenticate(authService service.AuthService, users port.UserRepository, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" && !required {
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "missing or invalid authorization header")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := authService.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.From(c.Request.Context()).Error("loading authenticated user", zap.Error(err))
			}
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		if !user.IsActive {
			abortUnauthorized(c, "user account is inactive")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyRole, string(claims.Role))
		c.Set(ContextKeyClaims, claims)
		c.Request = c.Request.WithContext(logger.ToContext(c.Request.Context(),
			logger.From(c.Request.Context()).With(logger.UserID(claims.UserID.String()))))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": message},
	})
}

// RequireRole returns middleware that checks the user's role against allowed roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleStr := GetRole(c)
		if roleStr == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "role not found in context"},
			})
			return
		}

		userRole := domain.UserRole(roleStr)
		for _, r := range roles {
			if userRole == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   gin.H{"code": "FORBIDDEN", "message": "insufficient permissions"},
		})
	}
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return val.(uuid.UUID), nil
}

// GetUser returns the authenticated user, or nil for anonymous requests.
func GetUser(c *gin.Context) *domain.User {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	return val.(*domain.User)
}

// GetRole extracts the user role string from the Gin context.
func GetRole(c *gin.Context) string {
	val, exists := c.Get(ContextKeyRole)
	if !exists {
		return ""
	}
	return val.(string)
}
