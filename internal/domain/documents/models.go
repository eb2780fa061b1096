// Package documents provides the persisted invoice documents. Saved sale
// and purchase invoices are the only source of stock truth; the stock
// reconciler replays them to derive balances.
package documents

import (
	"context"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/invoice"
	"backoffice/internal/domain/money"
)

// DocumentLine is one persisted product line.
// The derived columns (discount_value, tax_value, line_total) are stored as
// computed at save time and are not recalculated on read.
type DocumentLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemNumber      string      `db:"item_number" json:"itemNumber"`
	ItemName        string      `db:"item_name" json:"itemName"`
	Quantity        types.Money `db:"quantity" json:"quantity"`
	Unit            string      `db:"unit" json:"unit"`
	UnitPrice       types.Money `db:"unit_price" json:"unitPrice"`
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`
	TaxPercent      types.Money `db:"tax_percent" json:"taxPercent"`
	IsNewItem       bool        `db:"is_new_item" json:"isNewItem"`

	// WarehouseID is filled only for multiple-warehouse invoices.
	WarehouseID string `db:"warehouse_id" json:"warehouseId,omitempty"`

	DiscountValue types.Money `db:"discount_value" json:"discountValue"`
	TaxValue      types.Money `db:"tax_value" json:"taxValue"`
	LineTotal     types.Money `db:"line_total" json:"lineTotal"`
}

// SaleInvoice is a confirmed sales invoice.
type SaleInvoice struct {
	entity.Document

	WarehouseID   string    `db:"warehouse_id" json:"warehouseId,omitempty"`
	CustomerName  string    `db:"customer_name" json:"customerName"`
	Delegate      string    `db:"delegate" json:"delegate,omitempty"`
	PaymentMethod string    `db:"payment_method" json:"paymentMethod"`
	DueDate       time.Time `db:"due_date" json:"dueDate"`

	// Totals as computed at save time.
	AfterDiscount types.Money `db:"after_discount" json:"afterDiscount"`
	TaxTotal      types.Money `db:"tax_total" json:"taxTotal"`
	AfterTax      types.Money `db:"after_tax" json:"afterTax"`

	// MultiPayment with the split captured as amounts; absent legs are zero.
	MultiPayment bool        `db:"multi_payment" json:"multiPayment"`
	CashAmount   types.Money `db:"cash_amount" json:"cashAmount"`
	BankAmount   types.Money `db:"bank_amount" json:"bankAmount"`
	CardAmount   types.Money `db:"card_amount" json:"cardAmount"`
	CashBoxID    string      `db:"cash_box_id" json:"cashBoxId,omitempty"`
	BankID       string      `db:"bank_id" json:"bankId,omitempty"`

	Lines []DocumentLine `db:"-" json:"lines"`
}

// NewSaleInvoice creates an empty sale invoice for a branch.
func NewSaleInvoice(branchID string) *SaleInvoice {
	return &SaleInvoice{
		Document: entity.NewDocument(branchID),
		Lines:    make([]DocumentLine, 0),
	}
}

// Validate implements entity.Validatable.
func (s *SaleInvoice) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if s.CustomerName == "" {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerName")
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	return validateLines(s.Lines, s.WarehouseID)
}

// PurchaseInvoice is a confirmed purchase invoice. It is the incoming leg
// of the stock ledger.
type PurchaseInvoice struct {
	entity.Document

	WarehouseID  string `db:"warehouse_id" json:"warehouseId"`
	SupplierName string `db:"supplier_name" json:"supplierName"`

	AfterDiscount types.Money `db:"after_discount" json:"afterDiscount"`
	TaxTotal      types.Money `db:"tax_total" json:"taxTotal"`
	AfterTax      types.Money `db:"after_tax" json:"afterTax"`

	Lines []DocumentLine `db:"-" json:"lines"`
}

// NewPurchaseInvoice creates an empty purchase invoice for a branch.
func NewPurchaseInvoice(branchID string) *PurchaseInvoice {
	return &PurchaseInvoice{
		Document: entity.NewDocument(branchID),
		Lines:    make([]DocumentLine, 0),
	}
}

// Validate implements entity.Validatable.
func (p *PurchaseInvoice) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if p.SupplierName == "" {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierName")
	}

	if p.WarehouseID == "" {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	return validateLines(p.Lines, p.WarehouseID)
}

func validateLines(lines []DocumentLine, headerWarehouse string) error {
	for i, line := range lines {
		if line.ItemName == "" {
			return apperror.NewValidation("item name is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if headerWarehouse == "" && line.WarehouseID == "" {
			return apperror.NewValidation("warehouse is required on the line when the header has none").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// normalizeLines stamps identity and position onto lines and recomputes
// every derived figure from the raw fields. Client-supplied derived values
// are never stored.
func normalizeLines(lines []DocumentLine) {
	for i := range lines {
		l := &lines[i]
		l.LineID = id.New()
		l.LineNo = i + 1

		subtotal := money.LineSubtotal(l.Quantity, l.UnitPrice)
		l.DiscountValue = money.DiscountAmount(subtotal, l.DiscountPercent)
		l.TaxValue = money.TaxAmount(subtotal, l.TaxPercent)
		l.LineTotal = subtotal
	}
}

// rollupTotals recomputes the invoice totals from the lines.
func rollupTotals(lines []DocumentLine) money.Totals {
	ml := make([]money.Line, len(lines))
	for i, l := range lines {
		ml[i] = money.Line{
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
		}
	}
	return money.InvoiceTotals(ml)
}

// linesFromEditor converts confirmed editor lines into persisted lines.
func linesFromEditor(lines []invoice.LineItem) []DocumentLine {
	out := make([]DocumentLine, len(lines))
	for i, l := range lines {
		out[i] = DocumentLine{
			LineID:          id.New(),
			LineNo:          i + 1,
			ItemNumber:      l.ItemNumber,
			ItemName:        l.ItemName,
			Quantity:        l.Quantity,
			Unit:            l.Unit,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
			IsNewItem:       l.IsNewItem,
			WarehouseID:     l.WarehouseID,
			DiscountValue:   l.DiscountValue,
			TaxValue:        l.TaxValue,
			LineTotal:       l.LineTotal,
		}
	}
	return out
}
