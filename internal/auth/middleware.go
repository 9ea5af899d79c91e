package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/api"

	"github.com/gin-gonic/gin"
)

const (
	ContextMemberID = "member_id"
	ContextRole     = "member_role"
)

func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			abort(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "Token is empty")
			return
		}

		claims, err := ValidateToken(tokenString, accessTokenSecret)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				abort(c, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, ErrInvalidTokenType):
				abort(c, http.StatusUnauthorized, "Access token required")
			default:
				abort(c, http.StatusUnauthorized, "Invalid or malformed token")
			}
			return
		}

		c.Set(ContextMemberID, claims.MemberID)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			abort(c, http.StatusUnauthorized, "Member role not found")
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			abort(c, http.StatusUnauthorized, "Invalid role type")
			return
		}

		if roleStr != requiredRole {
			abort(c, http.StatusForbidden, "Insufficient permissions")
			return
		}

		c.Next()
	}
}

// GetMemberID returns the authenticated member set by AuthMiddleware.
func GetMemberID(c *gin.Context) (int, bool) {
	v, exists := c.Get(ContextMemberID)
	if !exists {
		return 0, false
	}

	id, ok := v.(int)
	if !ok {
		return 0, false
	}

	return id, true
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: msg})
}
