package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pricelens/skumatch/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.POST("/normalize", handler.Normalize)
		v1.POST("/confidence", handler.Confidence)
		v1.POST("/match", handler.Match)
		v1.GET("/matches", handler.ListMatches)

		catalogs := v1.Group("/catalogs")
		{
			catalogs.POST("", handler.CreateCatalog)
			catalogs.GET("/:id", handler.GetCatalog)
			catalogs.DELETE("/:id", handler.DeleteCatalog)
		}
	}

	return router
}
