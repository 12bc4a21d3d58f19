package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"socialid/internal/config"
	"socialid/internal/domain"
	"socialid/internal/handler"
	"socialid/internal/metrics"
	"socialid/internal/middleware"
	"socialid/internal/port"
	"socialid/internal/service"

	_ "socialid/docs"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	authSvc service.AuthService,
	users port.UserRepository,
	m *metrics.Metrics,
	authH *handler.AuthHandler,
	socialH *handler.SocialHandler,
	configH *handler.ConfigHandler,
	healthH *handler.HealthHandler,
	adminH *handler.AdminHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(m))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	if !cfg.Server.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/config", configH.Get)

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Social login: anonymous callers log in, authenticated callers connect
	auth.POST("/provider/token",
		middleware.RateLimit(cfg.RateLimit),
		middleware.OptionalAuthMiddleware(authSvc, users),
		socialH.ProviderToken,
	)
	auth.POST("/provider/signup", middleware.RateLimit(cfg.RateLimit), socialH.ProviderSignup)

	// Protected routes - require valid JWT
	account := v1.Group("/account")
	account.Use(middleware.AuthMiddleware(authSvc, users))
	account.GET("/providers", socialH.ListAccounts)
	account.DELETE("/providers", socialH.DisconnectAccount)

	// Operator routes
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(authSvc, users), middleware.RequireRole(domain.RoleAdmin))
	admin.POST("/providers/:provider/invalidate", adminH.InvalidateProvider)

	return r
}
