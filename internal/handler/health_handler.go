package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/smartlink/internal/database"
	"github.com/user/smartlink/internal/models"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	postgres *database.PostgresDB
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(postgres *database.PostgresDB) *HealthHandler {
	return &HealthHandler{postgres: postgres}
}

// Health handles GET /health. Process-level liveness only; it does
// not touch dependencies.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready. Verifies the database is reachable, for
// load balancers and orchestration probes.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.postgres != nil {
		if err := h.postgres.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  "database unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
