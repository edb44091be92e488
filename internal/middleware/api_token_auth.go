package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/sahelimmo/lotissement_app/internal/core/ports/services"
)

// APITokenAuth is a middleware that authenticates requests using API tokens.
// Machine callers such as the payment-settlement webhook sender use this
// instead of JWT auth.
func APITokenAuth(tokenSvc services.APITokenSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip authentication for public routes
		if isPublicRoute(c.Request.URL.Path) {
			c.Next()
			return
		}

		apiKey := c.GetHeader("x-api-key")
		if apiKey == "" {
			c.Next() // No api key provided, let JWT auth handle it
			return
		}

		user, err := tokenSvc.ValidateToken(c.Request.Context(), apiKey)
		if err != nil {
			c.Next() // Token validation failed, let JWT auth handle it
			return
		}

		// Token is valid, set user ID in context and skip JWT auth
		c.Set(string(userIDKey), user.UserID)
		c.Set("authMethod", "api_token")
		ctx := context.WithValue(c.Request.Context(), userIDKey, user.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// isPublicRoute checks if the given path is a public route that doesn't require authentication
func isPublicRoute(path string) bool {
	publicRoutes := []string{
		"/api/v1/auth/login",
		"/api/v1/auth/register",
		"/api/v1/health",
	}

	for _, route := range publicRoutes {
		if path == route {
			return true
		}
	}

	return false
}
