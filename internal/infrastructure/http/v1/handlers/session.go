package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	"backoffice/internal/domain/documents"
	"backoffice/internal/domain/invoice"
	"backoffice/internal/domain/stock"
	"backoffice/internal/infrastructure/http/v1/dto"
	"backoffice/internal/infrastructure/http/v1/sessions"
)

// SessionHandler exposes the invoice drafting workflow: one session per
// invoice under construction, with line editing, totals, stock lookups and
// the final save.
type SessionHandler struct {
	*BaseHandler
	store      *sessions.Store
	sales      *documents.SaleService
	reconciler *stock.Reconciler
}

// NewSessionHandler creates the drafting session handler.
func NewSessionHandler(base *BaseHandler, store *sessions.Store, sales *documents.SaleService, reconciler *stock.Reconciler) *SessionHandler {
	return &SessionHandler{
		BaseHandler: base,
		store:       store,
		sales:       sales,
		reconciler:  reconciler,
	}
}

// RegisterRoutes mounts the session endpoints.
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:sessionId", h.Get)
	rg.DELETE("/:sessionId", h.Close)

	rg.PUT("/:sessionId/header", h.SetHeader)
	rg.PUT("/:sessionId/warehouse-mode", h.SetWarehouseMode)

	rg.POST("/:sessionId/lines", h.ConfirmLine)
	rg.POST("/:sessionId/lines/:index/edit", h.BeginEdit)
	rg.DELETE("/:sessionId/lines/:index", h.DeleteLine)
	rg.POST("/:sessionId/cancel-edit", h.CancelEdit)

	rg.PUT("/:sessionId/payment-split", h.SetPaymentSplit)
	rg.DELETE("/:sessionId/payment-split", h.ClearPaymentSplit)

	rg.GET("/:sessionId/stock", h.StockAvailability)

	rg.POST("/:sessionId/reset", h.Reset)
	rg.POST("/:sessionId/save", h.Save)
}

// Create starts a new drafting session.
func (h *SessionHandler) Create(c *gin.Context) {
	sessionID := h.store.Create()

	var resp dto.SessionResponse
	_ = h.store.With(sessionID, func(b *invoice.Builder) error {
		resp = dto.FromBuilder(sessionID, b)
		return nil
	})

	c.JSON(201, resp)
}

// Get returns the full session state.
func (h *SessionHandler) Get(c *gin.Context) {
	h.respondWithState(c, func(b *invoice.Builder) error { return nil })
}

// Close deletes the session, discarding any unsaved work.
func (h *SessionHandler) Close(c *gin.Context) {
	h.store.Delete(c.Param("sessionId"))
	h.NoContent(c)
}

// SetHeader replaces the invoice header.
func (h *SessionHandler) SetHeader(c *gin.Context) {
	var req dto.HeaderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	h.respondWithState(c, func(b *invoice.Builder) error {
		b.SetHeader(req.ToHeader())
		return nil
	})
}

// SetWarehouseMode switches between header-level and per-line warehouses.
func (h *SessionHandler) SetWarehouseMode(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if !h.BindJSON(c, &req) {
		return
	}

	mode := invoice.WarehouseMode(req.Mode)
	if mode != invoice.WarehouseModeSingle && mode != invoice.WarehouseModeMultiple {
		h.Error(c, apperror.NewValidation("unknown warehouse mode").WithDetail("mode", req.Mode))
		return
	}

	h.respondWithState(c, func(b *invoice.Builder) error {
		b.SetWarehouseMode(mode)
		return nil
	})
}

// ConfirmLine confirms the submitted draft as a line (add, or replace when
// a line is under edit). A rejected draft returns 422 without touching the
// session.
func (h *SessionHandler) ConfirmLine(c *gin.Context) {
	var req dto.DraftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	h.respondWithState(c, func(b *invoice.Builder) error {
		if !b.Editor().AddOrUpdate(req.ToDraft()) {
			return apperror.NewBusinessRule(apperror.CodeInvalidInput,
				"line rejected: item name, quantity and unit price must be non-empty and non-zero")
		}
		return nil
	})
}

// BeginEdit loads a confirmed line back into the draft buffer.
func (h *SessionHandler) BeginEdit(c *gin.Context) {
	index, ok := h.ParseIntParam(c, "index")
	if !ok {
		return
	}

	h.respondWithState(c, func(b *invoice.Builder) error {
		return b.Editor().BeginEdit(index)
	})
}

// DeleteLine removes a confirmed line.
func (h *SessionHandler) DeleteLine(c *gin.Context) {
	index, ok := h.ParseIntParam(c, "index")
	if !ok {
		return
	}

	h.respondWithState(c, func(b *invoice.Builder) error {
		return b.Editor().Delete(index)
	})
}

// CancelEdit discards draft changes and returns to idle.
func (h *SessionHandler) CancelEdit(c *gin.Context) {
	h.respondWithState(c, func(b *invoice.Builder) error {
		b.Editor().CancelEdit()
		return nil
	})
}

// SetPaymentSplit enables multi-payment with the given legs.
func (h *SessionHandler) SetPaymentSplit(c *gin.Context) {
	var req dto.PaymentSplitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	h.respondWithState(c, func(b *invoice.Builder) error {
		b.EnableMultiPayment(req.ToSplit())
		return nil
	})
}

// ClearPaymentSplit returns to single-method payment.
func (h *SessionHandler) ClearPaymentSplit(c *gin.Context) {
	h.respondWithState(c, func(b *invoice.Builder) error {
		b.DisableMultiPayment()
		return nil
	})
}

// StockAvailability returns the derived stock for an item, memoized in the
// session so repeated lookups while editing don't replay the ledger.
func (h *SessionHandler) StockAvailability(c *gin.Context) {
	itemName := c.Query("item")
	warehouseID := c.Query("warehouse")
	if itemName == "" || warehouseID == "" {
		h.Error(c, apperror.NewValidation("item and warehouse query parameters are required"))
		return
	}

	var resp dto.StockAvailabilityResponse
	err := h.store.With(c.Param("sessionId"), func(b *invoice.Builder) error {
		resp = dto.StockAvailabilityResponse{ItemName: itemName, WarehouseID: warehouseID}

		if qty, ok := b.StockCache().Get(itemName, warehouseID); ok {
			resp.Quantity = qty
			resp.FromCache = true
			return nil
		}

		qty := h.reconciler.AvailableStock(c.Request.Context(), itemName, warehouseID)
		b.StockCache().Put(itemName, warehouseID, qty)
		resp.Quantity = qty
		return nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, resp)
}

// Reset clears the whole session state in one step.
func (h *SessionHandler) Reset(c *gin.Context) {
	h.respondWithState(c, func(b *invoice.Builder) error {
		b.Reset()
		return nil
	})
}

// Save persists the invoice. On success the session resets and the saved
// document is returned.
func (h *SessionHandler) Save(c *gin.Context) {
	var saved *documents.SaleInvoice
	err := h.store.With(c.Param("sessionId"), func(b *invoice.Builder) error {
		doc, err := h.sales.SaveFromBuilder(c.Request.Context(), b)
		if err != nil {
			return err
		}
		saved = doc
		return nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, saved)
}

// respondWithState runs mutate under the session lock and returns the
// resulting session snapshot.
func (h *SessionHandler) respondWithState(c *gin.Context, mutate func(b *invoice.Builder) error) {
	sessionID := c.Param("sessionId")

	var resp dto.SessionResponse
	err := h.store.With(sessionID, func(b *invoice.Builder) error {
		if err := mutate(b); err != nil {
			return err
		}
		resp = dto.FromBuilder(sessionID, b)
		return nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, resp)
}
