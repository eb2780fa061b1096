package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	"backoffice/internal/domain/documents"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// documentListQuery extends the common list query with document filters.
type documentListQuery struct {
	dto.ListQuery
	BranchID    string `form:"branchId"`
	WarehouseID string `form:"warehouseId"`
	DateFrom    string `form:"dateFrom"`
	DateTo      string `form:"dateTo"`
}

func (q documentListQuery) toFilter() (documents.ListFilter, error) {
	filter := documents.DefaultListFilter()
	filter.Search = q.Search
	filter.IncludeDeleted = q.IncludeDeleted
	filter.BranchID = q.BranchID
	filter.WarehouseID = q.WarehouseID
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	filter.Offset = q.Offset

	if q.DateFrom != "" {
		from, err := time.Parse("2006-01-02", q.DateFrom)
		if err != nil {
			return filter, apperror.NewValidation("invalid dateFrom").WithDetail("dateFrom", q.DateFrom)
		}
		filter.DateFrom = &from
	}
	if q.DateTo != "" {
		to, err := time.Parse("2006-01-02", q.DateTo)
		if err != nil {
			return filter, apperror.NewValidation("invalid dateTo").WithDetail("dateTo", q.DateTo)
		}
		filter.DateTo = &to
	}

	return filter, nil
}

// SaleInvoiceHandler serves saved sale invoices. Creation goes through the
// drafting session save, not through this handler.
type SaleInvoiceHandler struct {
	*BaseHandler
	svc *documents.SaleService
}

// NewSaleInvoiceHandler creates the sale invoice handler.
func NewSaleInvoiceHandler(base *BaseHandler, svc *documents.SaleService) *SaleInvoiceHandler {
	return &SaleInvoiceHandler{BaseHandler: base, svc: svc}
}

// RegisterRoutes mounts the sale invoice endpoints.
func (h *SaleInvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.DELETE("/:id", h.Delete)
}

// List returns sale invoices matching the query.
func (h *SaleInvoiceHandler) List(c *gin.Context) {
	var q documentListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter, err := q.toFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// GetByID returns one sale invoice with lines.
func (h *SaleInvoiceHandler) GetByID(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.svc.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Delete soft-deletes a sale invoice; its quantities drop out of derived
// stock on the next reconciliation.
func (h *SaleInvoiceHandler) Delete(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// PurchaseInvoiceHandler serves purchase invoices, the incoming stock leg.
type PurchaseInvoiceHandler struct {
	*BaseHandler
	svc *documents.PurchaseService
}

// NewPurchaseInvoiceHandler creates the purchase invoice handler.
func NewPurchaseInvoiceHandler(base *BaseHandler, svc *documents.PurchaseService) *PurchaseInvoiceHandler {
	return &PurchaseInvoiceHandler{BaseHandler: base, svc: svc}
}

// RegisterRoutes mounts the purchase invoice endpoints.
func (h *PurchaseInvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
}

// Create persists a new purchase invoice.
func (h *PurchaseInvoiceHandler) Create(c *gin.Context) {
	var req struct {
		BranchID     string                   `json:"branchId" binding:"required"`
		WarehouseID  string                   `json:"warehouseId" binding:"required"`
		SupplierName string                   `json:"supplierName" binding:"required"`
		Date         time.Time                `json:"date"`
		Comment      string                   `json:"comment"`
		Lines        []documents.DocumentLine `json:"lines" binding:"required"`
	}
	if !h.BindJSON(c, &req) {
		return
	}

	doc := documents.NewPurchaseInvoice(req.BranchID)
	doc.WarehouseID = req.WarehouseID
	doc.SupplierName = req.SupplierName
	doc.Comment = req.Comment
	doc.Lines = req.Lines
	if !req.Date.IsZero() {
		doc.Date = req.Date
	}

	if err := h.svc.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc.ID.String())
}

// List returns purchase invoices matching the query.
func (h *PurchaseInvoiceHandler) List(c *gin.Context) {
	var q documentListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter, err := q.toFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// GetByID returns one purchase invoice with lines.
func (h *PurchaseInvoiceHandler) GetByID(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.svc.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}
