package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/macrolog/backend/internal/api"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/middleware"
	"github.com/pageza/macrolog/backend/internal/service"
)

// Dependencies are the collaborators the routes are wired to
type Dependencies struct {
	DB                 *gorm.DB
	Auth               service.IAuthService
	Searcher           service.Searcher
	Templates          service.ITemplateService
	Entries            service.IEntryService
	Composer           service.IEntryComposer
	SearchLimiter      *middleware.RateLimiter
	Scheduler          service.SchedulerConfig
	CORSAllowedOrigins []string
	Log                *logger.Logger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	if deps.SearchLimiter == nil {
		deps.SearchLimiter = middleware.NewSearchRateLimiter(nil, 0)
	}

	router := gin.New()
	router.Use(deps.Log.GinMiddleware())
	router.Use(middleware.ErrorHandler(deps.Log))
	router.Use(middleware.CORS(deps.CORSAllowedOrigins))

	router.GET("/health", api.HealthCheck(deps.DB))

	v1 := router.Group("/api/v1")
	v1.GET("/health", api.HealthCheck(deps.DB))

	api.NewAuthHandler(deps.Auth).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))
	{
		limit := deps.SearchLimiter.RateLimitMiddleware()
		api.NewFoodHandler(deps.Searcher, deps.Scheduler, deps.CORSAllowedOrigins, deps.Log).RegisterRoutes(protected, limit)
		api.NewTemplateHandler(deps.Templates).RegisterRoutes(protected)
		api.NewEntryHandler(deps.Composer, deps.Entries, deps.Templates, deps.Log).RegisterRoutes(protected)
	}

	return router
}
