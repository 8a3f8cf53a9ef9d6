package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ozzus/logroute/internal/domain"
	"ozzus/logroute/internal/enumerate"
	"ozzus/logroute/internal/lib/logger/sl"
	"ozzus/logroute/internal/service"
	"ozzus/logroute/internal/sink"
)

type LogController struct {
	logService *service.LogService
	log        *slog.Logger
}

func NewLogController(logService *service.LogService, log *slog.Logger) *LogController {
	if log == nil {
		log = slog.Default()
	}
	return &LogController{
		logService: logService,
		log:        log.With("component", "log_controller"),
	}
}

type writeRequest struct {
	Target  string `json:"target" binding:"required"`
	Level   string `json:"level" binding:"required"`
	Message string `json:"message"`
}

type batchRequest struct {
	Target   string   `json:"target" binding:"required"`
	Level    string   `json:"level" binding:"required"`
	Messages []string `json:"messages" binding:"required"`
}

type batchItem struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type enumerateRequest struct {
	Values  []string `json:"values"`
	Version int      `json:"version"`
	Filter  string   `json:"filter"`
}

func parseTargetLevel(target, level string) (domain.LogTarget, domain.LogLevel, error) {
	t, err := domain.ParseTarget(target)
	if err != nil {
		return "", 0, err
	}
	l, err := domain.ParseLevel(level)
	if err != nil {
		return "", 0, err
	}
	return t, l, nil
}

// Write handles POST /api/logs.
func (h *LogController) Write(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, level, err := parseTargetLevel(req.Target, req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	written, err := h.logService.Log(c.Request.Context(), target, level, req.Message)
	if err != nil {
		h.log.Error("write failed", "target", target, sl.Err(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if !written {
		c.JSON(http.StatusOK, gin.H{"filtered": true})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"record": domain.Record{Level: level, Message: req.Message}.String(),
	})
}

// WriteBatch handles POST /api/logs/batch. Blank messages are skipped and
// the remaining ones are numbered in order.
func (h *LogController) WriteBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, level, err := parseTargetLevel(req.Target, req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	kept := enumerate.FilterEnumerate(req.Messages, enumerate.NonBlank)
	items := make([]batchItem, 0, len(kept))
	failed := 0

	for _, m := range kept {
		item := batchItem{Index: m.Index, Message: m.Value, Status: "written"}

		written, err := h.logService.Log(ctx, target, level, m.Value)
		switch {
		case err != nil:
			item.Status = "failed"
			item.Error = err.Error()
			failed++
		case !written:
			item.Status = "filtered"
		}
		items = append(items, item)
	}

	if failed > 0 {
		h.log.Warn("batch partially failed", "target", target, "failed", failed, "total", len(items))
	}

	status := http.StatusAccepted
	if failed > 0 && failed == len(items) {
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"skipped": len(req.Messages) - len(kept),
		"items":   items,
	})
}

// Enumerate handles POST /api/enumerate.
func (h *LogController) Enumerate(c *gin.Context) {
	var req enumerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	keep := enumerate.Present
	switch req.Filter {
	case "", "all":
	case "nonblank":
		keep = enumerate.NonBlank
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown filter " + req.Filter})
		return
	}

	var out []enumerate.Indexed[string]
	switch req.Version {
	case 0, 2:
		out = enumerate.FilterMapEnumerate(req.Values, enumerate.Keep[string](keep))
	case 1:
		out = enumerate.FilterEnumerate(req.Values, keep)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "version must be 1 or 2"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": out})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNoRoute):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownLevel), errors.Is(err, domain.ErrUnknownTarget):
		return http.StatusBadRequest
	case errors.Is(err, sink.ErrFileOpen), errors.Is(err, sink.ErrFileWrite):
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}
