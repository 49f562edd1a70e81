package denylist

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TomasB/denylist/internal/apperr"
	"github.com/TomasB/denylist/internal/data"
	"github.com/TomasB/denylist/internal/logging"
	"github.com/TomasB/denylist/internal/suppression"
)

// Handler manages the suppression list lookup endpoint.
type Handler struct {
	svc *suppression.Service
}

// NewHandler creates a new lookup handler with the given RejectLookup.
func NewHandler(lookup data.RejectLookup) *Handler {
	return &Handler{svc: suppression.NewService(lookup)}
}

// Lookup handles GET /api/denylist?email=<address>
func (h *Handler) Lookup(c *gin.Context) {
	email := c.Query("email")

	resp, status, err := h.svc.Respond(c.Request.Context(), email)
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, apperr.ErrInvalidInput) {
			slog.Debug("denylist request rejected", "error", err)
		} else {
			slog.Error("denylist lookup failed", "email", logging.RedactEmail(email), "status", status, "error", err)
		}
		c.JSON(status, resp)
		return
	}

	slog.Debug("denylist lookup completed", "email", logging.RedactEmail(email), "subscribed", resp.Data.IsSubscribed)
	c.JSON(http.StatusOK, resp)
}
