package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/pushes", handler.CreatePush)
		v1.PUT("/pushes/:token/claim", handler.ClaimPush)
		v1.GET("/pushes/:token", handler.GetPushStatus)
	}
}
