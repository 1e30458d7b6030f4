package handlers

import (
	"net/http"

	"github.com/SscSPs/fincontrol/cmd/docs"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/middleware"
	"github.com/SscSPs/fincontrol/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes. Extra middleware is applied to the /api/v1
// group after authentication and tenant resolution.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	apiMiddleware ...gin.HandlerFunc,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services, apiMiddleware...)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	apiMiddleware ...gin.HandlerFunc,
) {
	chain := append([]gin.HandlerFunc{
		middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer),
		middleware.TenantMiddleware(),
	}, apiMiddleware...)
	v1 := r.Group("/api/v1", chain...)

	registerCommandRoutes(v1, services.MakerChecker)
	registerJournalEntryRoutes(v1, services.Ledger, services.MakerChecker)
	registerPermissionRoutes(v1, services.Permission, services.MakerChecker)
	registerMakerCheckerRoutes(v1, services.Approval)
	registerBatchRoutes(v1, services.Batch)
	registerAuditRoutes(v1, services.Audit)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
