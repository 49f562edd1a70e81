package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Check is a named readiness probe. Fn returns nil when the dependency is usable.
type Check struct {
	Name string
	Fn   func() error
}

// Handler manages health check endpoints
type Handler struct {
	checks []Check
}

// NewHandler creates a new health check handler
func NewHandler(checks ...Check) *Handler {
	return &Handler{checks: checks}
}

// Health is the liveness probe endpoint
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready is the readiness probe endpoint. It fails while any check fails.
// GET /ready
func (h *Handler) Ready(c *gin.Context) {
	if failed := h.Failures(); len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"checks": failed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// Failures runs every check and returns the failing ones by name.
func (h *Handler) Failures() map[string]string {
	var failed map[string]string
	for _, chk := range h.checks {
		if chk.Fn == nil {
			continue
		}
		if err := chk.Fn(); err != nil {
			if failed == nil {
				failed = make(map[string]string)
			}
			failed[chk.Name] = err.Error()
		}
	}
	return failed
}
