package documents

import (
	"context"
	"time"

	"backoffice/internal/core/id"
)

// ListFilter contains filtering options for document lists.
type ListFilter struct {
	// Search matches number and customer/supplier name
	Search string

	// Date range (inclusive)
	DateFrom *time.Time
	DateTo   *time.Time

	BranchID    string
	WarehouseID string

	IncludeDeleted bool

	// OrderBy specifies sorting (e.g., "date", "-date")
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults: newest first.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "-date",
	}
}

// ListResult contains paginated documents.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// SaleRepository persists sale invoices.
type SaleRepository interface {
	Create(ctx context.Context, doc *SaleInvoice) error
	GetByID(ctx context.Context, docID id.ID) (*SaleInvoice, error)
	Update(ctx context.Context, doc *SaleInvoice) error
	SaveLines(ctx context.Context, docID id.ID, lines []DocumentLine) error
	GetLines(ctx context.Context, docID id.ID) ([]DocumentLine, error)
	SetDeletionMark(ctx context.Context, docID id.ID, marked bool) error
	List(ctx context.Context, filter ListFilter) (ListResult[*SaleInvoice], error)
}

// PurchaseRepository persists purchase invoices.
type PurchaseRepository interface {
	Create(ctx context.Context, doc *PurchaseInvoice) error
	GetByID(ctx context.Context, docID id.ID) (*PurchaseInvoice, error)
	Update(ctx context.Context, doc *PurchaseInvoice) error
	SaveLines(ctx context.Context, docID id.ID, lines []DocumentLine) error
	GetLines(ctx context.Context, docID id.ID) ([]DocumentLine, error)
	SetDeletionMark(ctx context.Context, docID id.ID, marked bool) error
	List(ctx context.Context, filter ListFilter) (ListResult[*PurchaseInvoice], error)
}
