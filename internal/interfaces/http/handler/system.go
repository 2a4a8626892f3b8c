package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printshop/backoffice/internal/interfaces/http/dto"
)

// SystemHandler serves liveness checks.
type SystemHandler struct {
	backends map[string]bool
}

// NewSystemHandler creates a SystemHandler. backends reports which
// optional integrations were wired at startup, keyed by name.
func NewSystemHandler(backends map[string]bool) *SystemHandler {
	if backends == nil {
		backends = map[string]bool{}
	}
	return &SystemHandler{backends: backends}
}

// RegisterHealthRoute registers the unversioned health endpoint
// directly on the engine.
func (h *SystemHandler) RegisterHealthRoute(engine *gin.Engine) {
	engine.GET("/healthz", h.Health)
}

// Health reports liveness and which optional backends are available.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "ok",
		Backends: h.backends,
	})
}
