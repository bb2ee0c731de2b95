package http

import (
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/saintathena/backend/config"
	"github.com/saintathena/backend/internal/logger"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, l *log.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if l == nil {
		l = logger.New("http")
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(l))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		athena := v1.Group("/saint-athena")
		{
			athena.GET("/search", handler.SearchStatus)
			athena.POST("/search", handler.Search)
			athena.GET("/suggest", handler.Suggest)
		}
	}

	return router
}
