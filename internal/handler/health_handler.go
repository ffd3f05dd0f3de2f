package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgredis "github.com/Parzival048/natekarfront/pkg/redis"
)

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	redis       *pkgredis.Client
}

// NewHealthHandler creates a new HealthHandler. redis may be nil when the
// cache is disabled.
func NewHealthHandler(serviceName, version string, redis *pkgredis.Client) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, redis: redis}
}

// Health reports liveness.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports readiness, including the optional Redis dependency.
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	status := http.StatusOK
	overall := "ready"

	if h.redis != nil {
		if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
			checks["redis"] = "down: " + err.Error()
			status = http.StatusServiceUnavailable
			overall = "degraded"
		} else {
			checks["redis"] = "up"
		}
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"service": h.serviceName,
		"checks":  checks,
	})
}
