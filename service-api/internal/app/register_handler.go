package app

import (
	"deovr-bridge/pkg/auth"
	"deovr-bridge/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (a *appServer) RegisterHandlers() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler := gin.New()

	// middlewares
	logger.Debugf("allowing CORS origins: %v", a.config.CORS.AllowedOrigins)

	corsConfig := cors.Config{
		AllowOrigins: a.config.CORS.AllowedOrigins,
		AllowMethods: a.config.CORS.AllowedMethods,
		AllowHeaders: a.config.CORS.AllowedHeaders,
	}
	handler.Use(cors.New(corsConfig))
	handler.Use(gin.Logger())
	handler.Use(gin.Recovery())

	// health check
	handler.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// playback client routes (the player authenticates per stream URL, the
	// catalog projection itself is open to the local network)
	handler.GET("/scenes", a.scenesController.GetScenes)
	handler.GET("/deovr", a.scenesController.GetScenes) // the player's default fetch path
	handler.GET("/items/:videoId/manifest", a.manifestController.GetManifest)
	handler.GET("/stream/:videoId/:mediaSourceId/:expiresAt/:signature", a.streamController.Stream)
	handler.GET("/timeline/:videoId", a.timelineController.GetTimeline)

	// admin task routes (JWT required)
	jwtManager := auth.NewJWTManager(a.config.AdminSecret)
	authMiddleware := auth.AuthMiddleware(jwtManager)

	api := handler.Group("/api/v1")
	taskRoutes := api.Group("/tasks")
	taskRoutes.Use(authMiddleware)
	{
		taskRoutes.POST("/generation", a.tasksController.TriggerGeneration)
		taskRoutes.POST("/cleanup", a.tasksController.TriggerCleanup)
		taskRoutes.GET("/:name", a.tasksController.GetTask)
		taskRoutes.DELETE("/:name", a.tasksController.CancelTask)
	}

	return handler
}
