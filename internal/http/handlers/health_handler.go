package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler answers liveness probes. It always returns 200: a missing
// LLM key degrades the service but the process itself is healthy.
type HealthHandler struct {
	keyConfigured bool
}

func NewHealthHandler(keyConfigured bool) *HealthHandler {
	return &HealthHandler{keyConfigured: keyConfigured}
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	if !h.keyConfigured {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":             status,
		"llm_key_configured": h.keyConfigured,
	})
}
