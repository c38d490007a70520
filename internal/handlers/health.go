package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/points-api/internal/health"
)

type HealthHandler struct {
	checker *health.Checker
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Health reports each dependency; any failure turns the response into a 503
func (h *HealthHandler) Health(c *gin.Context) {
	checks, healthy := h.checker.Check(c.Request.Context())

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
	})
}

// KeepAlive answers hosting platform pings without touching dependencies
func (h *HealthHandler) KeepAlive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Server is alive"})
}
