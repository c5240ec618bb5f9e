package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/models"
)

// Context keys set by the middlewares in this package
const (
	ContextUserIDKey = "userId"
	ContextUserKey   = "user"
	ContextRoomKey   = "room"
)

// TokenAuthenticator validates access tokens and resolves their user
type TokenAuthenticator interface {
	ValidateToken(tokenString, expectedType string) (*dto.TokenClaims, error)
	Authenticate(ctx context.Context, claims *dto.TokenClaims) (*models.User, error)
}

// AuthMiddleware requires "Authorization: JWT <token>" (or Bearer) carrying a
// valid access token of an active user
func AuthMiddleware(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !isTokenScheme(parts[0]) || strings.TrimSpace(parts[1]) == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header must be JWT {token}")
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(parts[1]), dto.TokenTypeAccess)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), claims)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "User not found")
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func isTokenScheme(scheme string) bool {
	return strings.EqualFold(scheme, "JWT") || strings.EqualFold(scheme, "Bearer")
}

// GetCurrentUserID returns the authenticated user's id
func GetCurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// GetCurrentUser returns the authenticated user
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":  "error",
		"message": message,
	})
}
