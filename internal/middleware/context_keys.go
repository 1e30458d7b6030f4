package middleware

import (
	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const (
	// userIDKey holds the authenticated user's ID.
	userIDKey = contextKey("userID")
	// tenantIDKey holds the tenant resolved from the X-Tenant-ID header.
	tenantIDKey = contextKey("tenantID")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userID, ok := c.Request.Context().Value(userIDKey).(string); ok && userID != "" {
		return userID, true
	}
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		return "", false
	}
	userID, ok := userIDVal.(string)
	return userID, ok && userID != ""
}

// GetTenantIDFromContext retrieves the tenant resolved by TenantMiddleware.
func GetTenantIDFromContext(c *gin.Context) (string, bool) {
	tenantID, ok := c.Request.Context().Value(tenantIDKey).(string)
	return tenantID, ok && tenantID != ""
}

// GetCommandContext builds the identity every core call needs. It reports false when
// either the user or the tenant is missing.
func GetCommandContext(c *gin.Context) (domain.CommandContext, bool) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return domain.CommandContext{}, false
	}
	tenantID, ok := GetTenantIDFromContext(c)
	if !ok {
		return domain.CommandContext{}, false
	}
	return domain.CommandContext{TenantID: tenantID, Maker: userID}, true
}
