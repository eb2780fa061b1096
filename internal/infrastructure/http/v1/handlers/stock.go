package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	"backoffice/internal/domain/catalogs"
	"backoffice/internal/domain/stock"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// StockHandler serves ledger-derived stock figures and the cached item
// picker backing the line editor UI.
type StockHandler struct {
	*BaseHandler
	reconciler *stock.Reconciler
	itemCache  *stock.CatalogCache[*catalogs.Item]
}

// NewStockHandler creates the stock handler.
func NewStockHandler(base *BaseHandler, reconciler *stock.Reconciler, itemCache *stock.CatalogCache[*catalogs.Item]) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		reconciler:  reconciler,
		itemCache:   itemCache,
	}
}

// RegisterRoutes mounts the stock endpoints.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/availability", h.Availability)
	rg.GET("/items", h.Items)
	rg.POST("/items/refresh", h.RefreshItems)
}

// Availability returns the current derived quantity for an item in a
// warehouse. Every call replays the ledger; session-scoped memoization
// lives in the drafting endpoints.
func (h *StockHandler) Availability(c *gin.Context) {
	itemName := c.Query("item")
	warehouseID := c.Query("warehouse")
	if itemName == "" || warehouseID == "" {
		h.Error(c, apperror.NewValidation("item and warehouse query parameters are required"))
		return
	}

	qty := h.reconciler.AvailableStock(c.Request.Context(), itemName, warehouseID)

	h.OK(c, dto.StockAvailabilityResponse{
		ItemName:    itemName,
		WarehouseID: warehouseID,
		Quantity:    qty,
	})
}

// Items returns the item catalog for pickers, served from the TTL cache.
func (h *StockHandler) Items(c *gin.Context) {
	items, err := h.itemCache.Get(c.Request.Context())
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	h.OK(c, gin.H{"items": items})
}

// RefreshItems bypasses the TTL and refetches the item catalog.
func (h *StockHandler) RefreshItems(c *gin.Context) {
	items, err := h.itemCache.Refresh(c.Request.Context())
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	h.OK(c, gin.H{"items": items})
}
