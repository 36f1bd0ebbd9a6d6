package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusBody is the literal body of the liveness endpoint.
const StatusBody = "ok"

// Handler manages health check endpoints
type Handler struct {
	readyFn func() error
}

// NewHandler creates a new health check handler. readyFn may be nil.
func NewHandler(readyFn func() error) *Handler {
	return &Handler{readyFn: readyFn}
}

// Status is the liveness endpoint. It has no dependencies.
// GET /status
func (h *Handler) Status(c *gin.Context) {
	c.String(http.StatusOK, StatusBody)
}

// Ready is the readiness probe endpoint
// GET /ready
func (h *Handler) Ready(c *gin.Context) {
	if h.readyFn != nil {
		if err := h.readyFn(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
