package http

import (
	"github.com/comparewise/backend/config"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handler.StartSession)
			sessions.GET("/:id", handler.GetSession)
			sessions.DELETE("/:id", handler.EndSession)
			sessions.POST("/:id/compare", handler.Compare)
			sessions.GET("/:id/comparison", handler.Comparison)
			sessions.GET("/:id/messages", handler.Messages)
			sessions.POST("/:id/messages", handler.Ask)
		}
	}

	return router
}
