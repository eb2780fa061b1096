package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"backoffice/internal/domain/fiscalyear"
	"backoffice/internal/infrastructure/http/v1/dto"
	"backoffice/pkg/logger"
)

// FiscalYearHandler exposes the financial year selection.
type FiscalYearHandler struct {
	*BaseHandler
	gate *fiscalyear.Gate
}

// NewFiscalYearHandler creates the fiscal year handler.
func NewFiscalYearHandler(base *BaseHandler, gate *fiscalyear.Gate) *FiscalYearHandler {
	return &FiscalYearHandler{BaseHandler: base, gate: gate}
}

// RegisterRoutes mounts the fiscal year endpoints.
func (h *FiscalYearHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.PUT("/current", h.SetCurrent)
}

// List returns the available years and the current selection.
func (h *FiscalYearHandler) List(c *gin.Context) {
	h.OK(c, dto.FromGate(h.gate))
}

// SetCurrent switches the current financial year. The switch takes effect
// immediately; persistence completes in the background and a failure there
// keeps the in-memory selection.
func (h *FiscalYearHandler) SetCurrent(c *gin.Context) {
	var req dto.SetYearRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.gate.SetCurrentYear(c.Request.Context(), req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}

	// Drain the persist outcome without holding the request. The goroutine
	// outlives the handler, so it must not touch the pooled gin context;
	// detach the request context before spawning.
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		if persistErr := <-result; persistErr != nil {
			logger.Warn(ctx, "year selection persist failed after response",
				"year", req.Year,
				"error", persistErr,
			)
		}
	}()

	h.OK(c, dto.FromGate(h.gate))
}
