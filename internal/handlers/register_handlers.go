package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sahelimmo/lotissement_app/cmd/docs"
	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
	"github.com/sahelimmo/lotissement_app/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.GET("/", home)
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Public authentication routes
	registerAuthRoutes(r, cfg, services)

	// Authenticated API surface
	setupAPIV1Routes(r, cfg, services)

	// Swagger routes, disabled in production
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// API token auth runs first; requests it authenticates skip the JWT check.
	v1 := r.Group("/api/v1",
		middleware.APITokenAuth(services.APIToken),
		middleware.AuthMiddleware(cfg.JWTSecret),
	)

	registerLogoutRoute(v1, services, cfg)
	registerUserRoutes(v1, services.User)
	registerAPITokenRoutes(v1, services.APIToken)
	registerAgencyRoutes(v1, services)
	registerWebhookRoutes(v1, services.Reconciliation)
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
