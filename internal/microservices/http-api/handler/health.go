package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping   Pinger
	logger *slog.Logger
	now    func() time.Time
}

func NewHealthHandler(ping Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, logger: logger, now: time.Now}
}

func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Check)
}

func (h *HealthHandler) Check(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.WarnContext(ctx, "health_check_failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success":   false,
				"message":   "database unavailable",
				"timestamp": h.now().UTC(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "BookLease API is running",
		"timestamp": h.now().UTC(),
	})
}
