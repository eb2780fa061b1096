package entity

import (
	"context"
	"time"

	"backoffice/internal/core/apperror"
)

// Document is the base type for business transactions.
// Examples: SaleInvoice, PurchaseInvoice.
type Document struct {
	BaseEntity

	// Number is the document number (unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// BranchID is the owning branch
	BranchID string `db:"branch_id" json:"branchId"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`

	// Audit fields
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(branchID string) Document {
	now := time.Now().UTC()
	return Document{
		BaseEntity: NewBaseEntity(),
		Date:       now,
		BranchID:   branchID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.BranchID == "" {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// Touch updates the UpdatedAt timestamp and increments version.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
	d.BaseEntity.Touch()
}
