// Package invoice provides the sales invoice line-item engine:
// draft editing, per-line math and the invoice aggregate with its
// readiness predicate.
package invoice

import (
	"backoffice/internal/core/types"
	"backoffice/internal/domain/money"
)

// DefaultUnit is the unit preset for a fresh draft line ("piece").
const DefaultUnit = "قطعة"

// LineItem is one confirmed product entry on an invoice.
// DiscountValue, TaxValue and LineTotal are derived figures recomputed from
// the raw fields every time a line is stored; they are never trusted from
// a previous state.
type LineItem struct {
	ItemNumber      string      `json:"itemNumber"`
	ItemName        string      `json:"itemName"`
	Quantity        types.Money `json:"quantity"`
	Unit            string      `json:"unit"`
	UnitPrice       types.Money `json:"unitPrice"`
	DiscountPercent types.Money `json:"discountPercent"`
	TaxPercent      types.Money `json:"taxPercent"`
	IsNewItem       bool        `json:"isNewItem"`

	// WarehouseID is set per line only in multiple-warehouse mode.
	WarehouseID string `json:"warehouseId,omitempty"`

	// Derived fields.
	DiscountValue types.Money `json:"discountValue"`
	TaxValue      types.Money `json:"taxValue"`
	LineTotal     types.Money `json:"lineTotal"`
}

// Draft carries raw string-typed form input for one line.
// Numeric fields stay strings until confirmation; parsing happens once,
// in normalize, with the zero-on-invalid coercion policy.
type Draft struct {
	ItemNumber      string `json:"itemNumber"`
	ItemName        string `json:"itemName"`
	Quantity        string `json:"quantity"`
	Unit            string `json:"unit"`
	UnitPrice       string `json:"unitPrice"`
	DiscountPercent string `json:"discountPercent"`
	TaxPercent      string `json:"taxPercent"`
	IsNewItem       bool   `json:"isNewItem"`
	WarehouseID     string `json:"warehouseId,omitempty"`

	// Total is the display figure shown while typing; reset to zero with
	// the rest of the draft.
	Total types.Money `json:"total"`
}

// NewDraft returns the default draft: quantity 1, default unit, zero
// discount and the invoice-level default tax rate.
func NewDraft(defaultTaxPercent string) Draft {
	return Draft{
		Quantity:        "1",
		Unit:            DefaultUnit,
		DiscountPercent: "0",
		TaxPercent:      defaultTaxPercent,
		Total:           types.Zero(),
	}
}

// normalize converts a draft into a stored line, recomputing every derived
// field from the raw inputs.
//
// TaxValue is computed from the pre-discount subtotal while the invoice
// rollup taxes the discounted subtotal; both figures are kept as observed
// for compatibility with existing reports.
func normalize(d Draft) LineItem {
	qty := types.ParseDecimalOrZero(d.Quantity)
	price := types.ParseDecimalOrZero(d.UnitPrice)
	discountPct := types.ParsePercentOrZero(d.DiscountPercent)
	taxPct := types.ParsePercentOrZero(d.TaxPercent)

	subtotal := money.LineSubtotal(qty, price)

	return LineItem{
		ItemNumber:      d.ItemNumber,
		ItemName:        d.ItemName,
		Quantity:        qty,
		Unit:            d.Unit,
		UnitPrice:       price,
		DiscountPercent: discountPct,
		TaxPercent:      taxPct,
		IsNewItem:       d.IsNewItem,
		WarehouseID:     d.WarehouseID,
		DiscountValue:   money.DiscountAmount(subtotal, discountPct),
		TaxValue:        money.TaxAmount(subtotal, taxPct),
		LineTotal:       subtotal,
	}
}

// moneyLines projects stored lines into the pure math representation.
func moneyLines(lines []LineItem) []money.Line {
	out := make([]money.Line, len(lines))
	for i, l := range lines {
		out[i] = money.Line{
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
		}
	}
	return out
}
