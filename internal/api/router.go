package api

import (
	"github.com/deposia/avatar-api/internal/api/handlers"
	apimiddleware "github.com/deposia/avatar-api/internal/api/middleware"
	"github.com/deposia/avatar-api/internal/metrics"
	"github.com/deposia/avatar-api/internal/pipeline"
	"github.com/gin-gonic/gin"
)

func SetupRouter(service *pipeline.Service, cw *metrics.Client, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(cw))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Liveness and health
	healthHandler := handlers.NewHealthHandler(version)
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.HealthCheck)

	// Avatar pipeline endpoints
	avatarHandler := handlers.NewAvatarHandler(service)
	avatar := router.Group("/avatar")
	{
		avatar.GET("/status", healthHandler.PipelineStatus)
		avatar.POST("/create", avatarHandler.Create)            // persona only
		avatar.POST("/create-image", avatarHandler.CreateImage) // persona + portrait
		avatar.POST("/validate", avatarHandler.ValidateConfig)
	}

	return router
}
