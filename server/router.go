package server

import (
	"net/http"
	"time"

	"video-fetcher/infrastructure/configuration"
	"video-fetcher/infrastructure/logger"
	httpHandler "video-fetcher/interfaces/http"
	"video-fetcher/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitiateRouter mounts the read API under /api. stream may be nil to disable the SSE endpoint.
func InitiateRouter(
	app configuration.App,
	rateLimit configuration.RateLimit,
	videoHandler httpHandler.IVideoHandler,
	healthHandler httpHandler.IHealthHandler,
	stream gin.HandlerFunc,
) *gin.Engine {
	origins := app.CorsOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		logger.GetLogger().WithField("error", recovered).Error("Handler panic recovered")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("api")
	api.Use(middleware.RateLimit(rateLimit, middleware.RuleGeneral))

	videos := api.Group("/videos")
	{
		videos.GET("", middleware.RateLimit(rateLimit, middleware.RuleVideos), middleware.ValidateVideoList(), videoHandler.GetVideos)
		videos.GET("/search", middleware.RateLimit(rateLimit, middleware.RuleSearch), middleware.ValidateVideoSearch(), videoHandler.SearchVideos)
		videos.GET("/stats", middleware.RateLimit(rateLimit, middleware.RuleStats), videoHandler.GetStats)
		if stream != nil {
			videos.GET("/stream", stream)
		}
		videos.GET("/:id", middleware.ValidateVideoID(), videoHandler.GetVideoByID)
	}

	router.NoRoute(healthHandler.NotFound)
	return router
}
