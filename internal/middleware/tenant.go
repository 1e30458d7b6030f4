package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// TenantHeader is the request header carrying the tenant identifier.
const TenantHeader = "X-Tenant-ID"

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// TenantMiddleware resolves the tenant of the request. Every storage access downstream is
// scoped by the tenant stored here.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		tenantID := c.GetHeader(TenantHeader)
		if tenantID == "" {
			logger.Warn("Tenant header missing")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": TenantHeader + " header required"})
			return
		}
		if !tenantIDPattern.MatchString(tenantID) {
			logger.Warn("Tenant header invalid", slog.String("tenant_id", tenantID))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + TenantHeader + " header"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), tenantIDKey, tenantID)
		ctx = WithLogger(ctx, logger.With(slog.String("tenant_id", tenantID)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
