package invoice

import (
	"time"

	"backoffice/internal/domain/money"
	"backoffice/internal/domain/stock"
)

// WarehouseMode selects where the warehouse reference lives.
type WarehouseMode string

const (
	// WarehouseModeSingle: one warehouse set at header level.
	WarehouseModeSingle WarehouseMode = "single"
	// WarehouseModeMultiple: each line may carry its own warehouse.
	WarehouseModeMultiple WarehouseMode = "multiple"
)

// Readiness reason codes surfaced to the UI layer.
const (
	ReasonBranchMissing        = "branch_missing"
	ReasonCustomerMissing      = "customer_missing"
	ReasonWarehouseMissing     = "warehouse_missing"
	ReasonNoLines              = "no_lines"
	ReasonPaymentMethodMissing = "payment_method_missing"
	ReasonPaymentSplitMismatch = "payment_split_mismatch"
)

// Header holds the invoice header fields.
type Header struct {
	BranchID      string    `json:"branchId"`
	WarehouseID   string    `json:"warehouseId"`
	CustomerName  string    `json:"customerName"`
	Delegate      string    `json:"delegate"`
	PaymentMethod string    `json:"paymentMethod"`
	InvoiceDate   time.Time `json:"invoiceDate"`
	DueDate       time.Time `json:"dueDate"`
}

// Builder is the invoice aggregate under construction: header, line
// collection, payment split and the stock memo for item lookups made
// while editing. It owns all of its parts; Reset clears them together.
type Builder struct {
	header       Header
	mode         WarehouseMode
	editor       *Editor
	multiPayment bool
	split        PaymentSplit
	stockCache   *stock.BalanceCache
}

// NewBuilder creates an empty invoice in single-warehouse mode.
func NewBuilder(defaultTaxPercent string) *Builder {
	return &Builder{
		mode:       WarehouseModeSingle,
		editor:     NewEditor(defaultTaxPercent),
		stockCache: stock.NewBalanceCache(),
	}
}

// Editor returns the line-item editor.
func (b *Builder) Editor() *Editor {
	return b.editor
}

// Header returns the current header fields.
func (b *Builder) Header() Header {
	return b.header
}

// SetHeader replaces the header fields.
func (b *Builder) SetHeader(h Header) {
	b.header = h
}

// WarehouseMode returns the active warehouse mode.
func (b *Builder) WarehouseMode() WarehouseMode {
	return b.mode
}

// SetWarehouseMode switches between header-level and per-line warehouses.
func (b *Builder) SetWarehouseMode(mode WarehouseMode) {
	b.mode = mode
}

// EnableMultiPayment activates multi-payment mode with the given split.
func (b *Builder) EnableMultiPayment(split PaymentSplit) {
	b.multiPayment = true
	b.split = split
}

// DisableMultiPayment returns to single-method payment.
func (b *Builder) DisableMultiPayment() {
	b.multiPayment = false
	b.split = PaymentSplit{}
}

// MultiPayment reports whether multi-payment mode is active and the split.
func (b *Builder) MultiPayment() (PaymentSplit, bool) {
	return b.split, b.multiPayment
}

// StockCache returns the builder-owned stock memo.
func (b *Builder) StockCache() *stock.BalanceCache {
	return b.stockCache
}

// Totals recomputes the invoice rollup from the current lines.
func (b *Builder) Totals() money.Totals {
	return money.InvoiceTotals(moneyLines(b.editor.Lines()))
}

// IsReadyToSave is the single predicate gating the save action.
func (b *Builder) IsReadyToSave() bool {
	_, ready := b.readiness()
	return ready
}

// ReadyState returns the readiness verdict plus the first violated reason
// code (empty when ready) so the UI can render a message.
func (b *Builder) ReadyState() (string, bool) {
	return b.readiness()
}

func (b *Builder) readiness() (string, bool) {
	if b.header.BranchID == "" {
		return ReasonBranchMissing, false
	}
	if b.header.CustomerName == "" {
		return ReasonCustomerMissing, false
	}
	// In multiple-warehouse mode each line carries its own warehouse and
	// the header check is skipped.
	if b.mode == WarehouseModeSingle && b.header.WarehouseID == "" {
		return ReasonWarehouseMissing, false
	}
	if len(b.editor.Lines()) == 0 {
		return ReasonNoLines, false
	}
	if b.header.PaymentMethod == "" {
		return ReasonPaymentMethodMissing, false
	}
	if b.multiPayment && !b.split.Covers(b.Totals().AfterTax) {
		return ReasonPaymentSplitMismatch, false
	}
	return "", true
}

// Reset clears header, lines, draft, editing state and the stock memo as
// one all-or-nothing step.
func (b *Builder) Reset() {
	b.header = Header{}
	b.editor.Reset()
	b.multiPayment = false
	b.split = PaymentSplit{}
	b.stockCache.Reset()
}
