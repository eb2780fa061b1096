package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/core/entity"
	"backoffice/internal/domain/catalogs"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// CatalogHandler serves CRUD endpoints for one catalog entity type.
// The request body binds straight into the entity type; validation happens
// in the service.
type CatalogHandler[T entity.Validatable] struct {
	*BaseHandler
	svc   *catalogs.Service[T]
	newFn func() T
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler[T entity.Validatable](base *BaseHandler, svc *catalogs.Service[T], newFn func() T) *CatalogHandler[T] {
	return &CatalogHandler[T]{BaseHandler: base, svc: svc, newFn: newFn}
}

// RegisterRoutes mounts the standard catalog endpoints.
func (h *CatalogHandler[T]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create adds a new catalog entity.
func (h *CatalogHandler[T]) Create(c *gin.Context) {
	e := h.newFn()
	if !h.BindJSON(c, e) {
		return
	}

	if err := h.svc.Create(c.Request.Context(), e); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// List returns entities matching the query.
func (h *CatalogHandler[T]) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := catalogs.DefaultListFilter()
	filter.Search = q.Search
	filter.IncludeDeleted = q.IncludeDeleted
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	filter.Offset = q.Offset

	result, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// GetByID returns one entity.
func (h *CatalogHandler[T]) GetByID(c *gin.Context) {
	entityID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	e, err := h.svc.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// Update replaces an entity; the body must carry the current version for
// the optimistic lock.
func (h *CatalogHandler[T]) Update(c *gin.Context) {
	e := h.newFn()
	if !h.BindJSON(c, e) {
		return
	}

	if err := h.svc.Update(c.Request.Context(), e); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// Delete soft-deletes an entity.
func (h *CatalogHandler[T]) Delete(c *gin.Context) {
	entityID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
