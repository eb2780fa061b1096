package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/infrastructure/storage/postgres"
)

// AuditHandler serves the audit trail of a single entity.
type AuditHandler struct {
	*BaseHandler
	repo *postgres.AuditRepo
}

// NewAuditHandler creates the audit handler.
func NewAuditHandler(base *BaseHandler, repo *postgres.AuditRepo) *AuditHandler {
	return &AuditHandler{BaseHandler: base, repo: repo}
}

// RegisterRoutes mounts the audit endpoints.
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:entityType/:entityId", h.History)
}

// History returns audit entries for an entity, newest first.
func (h *AuditHandler) History(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 50)

	entries, err := h.repo.EntityHistory(c.Request.Context(),
		c.Param("entityType"), c.Param("entityId"), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"entries": entries})
}
