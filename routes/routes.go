package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	v1 "github.com/taskizy-api/api/v1"
)

// SetupRoutes mounts the operational endpoints and the v1 API
func SetupRoutes(router *gin.Engine, health *v1.HealthController, svc v1.Services) {
	// Operational routes
	router.GET("/health", health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	v1.RegisterRoutes(api, svc)
}
