package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ozzus/logroute/internal/checks"
	"ozzus/logroute/internal/domain"
	"ozzus/logroute/internal/service"
)

// Version is reported by /info.
var Version = "0.1.0"

type HealthController struct {
	logService *service.LogService
	checkers   []checks.Checker
}

// NewHealthController builds the health endpoints. checkers are probed by /ready.
func NewHealthController(logService *service.LogService, checkers ...checks.Checker) *HealthController {
	return &HealthController{logService: logService, checkers: checkers}
}

// Health reports whether the service is running with at least one route.
func (h *HealthController) Health(c *gin.Context) {
	if err := h.logService.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, domain.HealthResponse{
			Status:    domain.HealthStatusUnhealthy,
			Timestamp: time.Now(),
			Service:   h.logService.Name(),
			Message:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, domain.HealthResponse{
		Status:    domain.HealthStatusHealthy,
		Timestamp: time.Now(),
		Service:   h.logService.Name(),
		Message:   "Service is running",
	})
}

func (h *HealthController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.logService.Status())
}

func (h *HealthController) Ready(c *gin.Context) {
	if err := h.logService.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"service":   h.logService.Name(),
			"message":   err.Error(),
			"timestamp": time.Now(),
		})
		return
	}

	results := checks.Run(c.Request.Context(), 3*time.Second, h.checkers)
	if !checks.AllOK(results) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"service":   h.logService.Name(),
			"message":   "sink checks failed",
			"checks":    results,
			"timestamp": time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"service":   h.logService.Name(),
		"message":   "Service is ready to accept records",
		"checks":    results,
		"timestamp": time.Now(),
	})
}

func (h *HealthController) Info(c *gin.Context) {
	status := h.logService.Status()

	routed := make([]domain.LogTarget, 0, len(domain.Targets))
	for _, t := range domain.Targets {
		if status.Targets[t].Routed {
			routed = append(routed, t)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"service":   h.logService.Name(),
		"version":   Version,
		"min_level": status.MinLevel,
		"routes":    routed,
		"timestamp": time.Now(),
	})
}
