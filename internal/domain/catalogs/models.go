// Package catalogs provides the reference data consumed by invoicing:
// customers, items, branches and warehouses.
package catalogs

import (
	"context"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/types"
)

// Customer is a party invoices are issued to.
type Customer struct {
	entity.Catalog

	Phone     string `db:"phone" json:"phone,omitempty"`
	TaxNumber string `db:"tax_number" json:"taxNumber,omitempty"`
	Address   string `db:"address" json:"address,omitempty"`
}

// NewCustomer creates a new Customer.
func NewCustomer(code, name string) *Customer {
	return &Customer{Catalog: entity.NewCatalog(code, name)}
}

// Item is a sellable product.
type Item struct {
	entity.Catalog

	// Number is the item number shown on invoice lines.
	Number string `db:"number" json:"number"`

	// Unit is the default sales unit.
	Unit string `db:"unit" json:"unit"`

	SalePrice     types.Money `db:"sale_price" json:"salePrice"`
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`

	// DefaultTaxPercent pre-fills the tax field of a draft line.
	DefaultTaxPercent types.Money `db:"default_tax_percent" json:"defaultTaxPercent"`
}

// NewItem creates a new Item.
func NewItem(code, name, unit string) *Item {
	return &Item{Catalog: entity.NewCatalog(code, name), Unit: unit}
}

// Validate implements entity.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}

	if i.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price must not be negative").
			WithDetail("field", "salePrice")
	}

	return nil
}

// Branch is a company branch issuing invoices.
type Branch struct {
	entity.Catalog

	Address string `db:"address" json:"address,omitempty"`
	Phone   string `db:"phone" json:"phone,omitempty"`
}

// NewBranch creates a new Branch.
func NewBranch(code, name string) *Branch {
	return &Branch{Catalog: entity.NewCatalog(code, name)}
}

// Warehouse is a storage location stock is reconciled against.
type Warehouse struct {
	entity.Catalog

	// BranchID ties the warehouse to its owning branch.
	BranchID string `db:"branch_id" json:"branchId,omitempty"`

	// IsDefault marks the warehouse preselected on new invoices.
	IsDefault bool `db:"is_default" json:"isDefault"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewWarehouse creates an active Warehouse.
func NewWarehouse(code, name string) *Warehouse {
	return &Warehouse{Catalog: entity.NewCatalog(code, name), IsActive: true}
}
