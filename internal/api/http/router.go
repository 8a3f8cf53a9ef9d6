package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"ozzus/logroute/internal/api/http/middleware"
)

func NewRouter(healthController *HealthController, logController *LogController, log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(log), middleware.Recovery(log))

	router.GET("/health", healthController.Health)
	router.GET("/status", healthController.Status)
	router.GET("/ready", healthController.Ready)
	router.GET("/info", healthController.Info)

	api := router.Group("/api")
	api.POST("/logs", logController.Write)
	api.POST("/logs/batch", logController.WriteBatch)
	api.POST("/enumerate", logController.Enumerate)

	return router
}
