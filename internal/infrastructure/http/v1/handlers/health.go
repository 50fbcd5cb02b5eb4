package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"milkbill/internal/infrastructure/storage/postgres"
)

// UpstreamPinger checks reachability of the master data service.
type UpstreamPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	pool     *postgres.Pool
	upstream UpstreamPinger
}

// NewHealthHandler creates a new health handler. upstream may be nil, in
// which case readiness checks the database only.
func NewHealthHandler(pool *postgres.Pool, upstream UpstreamPinger) *HealthHandler {
	return &HealthHandler{pool: pool, upstream: upstream}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	checks := map[string]string{}
	healthy := true

	if err := h.pool.Ping(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		healthy = false
	} else {
		checks["database"] = "healthy"
	}

	if h.upstream != nil {
		if err := h.upstream.Ping(ctx); err != nil {
			checks["masterdata"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["masterdata"] = "healthy"
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": checks,
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	stat := h.pool.Stat()

	c.JSON(http.StatusOK, gin.H{
		"app":     "milkbill",
		"version": "0.1.0",
		"database": map[string]any{
			"total_conns":    stat.TotalConns(),
			"acquired_conns": stat.AcquiredConns(),
			"idle_conns":     stat.IdleConns(),
			"max_conns":      stat.MaxConns(),
		},
	})
}
