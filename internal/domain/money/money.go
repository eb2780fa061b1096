// Package money provides pure invoice arithmetic.
// All functions are side-effect free and operate on decimals only;
// the single divisor ever used is 100 (percentages).
package money

import (
	"backoffice/internal/core/types"
)

// Line carries the numeric inputs of one invoice line.
type Line struct {
	Quantity        types.Money
	UnitPrice       types.Money
	DiscountPercent types.Money
	TaxPercent      types.Money
}

// Totals holds the invoice-level rollup.
//
// Total and AfterDiscount are the same figure (the pre-tax subtotal);
// AfterTax is the grand total. Downstream consumers depend on this exact
// naming, so it is kept even though Total looks redundant.
type Totals struct {
	AfterDiscount types.Money `json:"afterDiscount"`
	Tax           types.Money `json:"tax"`
	AfterTax      types.Money `json:"afterTax"`
	Total         types.Money `json:"total"`
}

// LineSubtotal returns quantity * unit price.
func LineSubtotal(qty, price types.Money) types.Money {
	return qty.Mul(price)
}

// DiscountAmount returns subtotal * discountPercent / 100.
func DiscountAmount(subtotal, discountPercent types.Money) types.Money {
	return subtotal.Mul(discountPercent).Div(types.Hundred)
}

// TaxAmount returns base * taxPercent / 100. The base is caller-supplied:
// invoice-level tax accrues on the discounted subtotal while a line's
// persisted tax value is computed from the raw subtotal. Both callers go
// through this one function.
func TaxAmount(base, taxPercent types.Money) types.Money {
	return base.Mul(taxPercent).Div(types.Hundred)
}

// InvoiceTotals rolls up all lines into invoice totals.
// An empty line set yields all-zero totals.
func InvoiceTotals(lines []Line) Totals {
	afterDiscount := types.Zero()
	tax := types.Zero()

	for _, l := range lines {
		subtotal := LineSubtotal(l.Quantity, l.UnitPrice)
		discounted := subtotal.Sub(DiscountAmount(subtotal, l.DiscountPercent))
		afterDiscount = afterDiscount.Add(discounted)
		tax = tax.Add(TaxAmount(discounted, l.TaxPercent))
	}

	return Totals{
		AfterDiscount: afterDiscount,
		Tax:           tax,
		AfterTax:      afterDiscount.Add(tax),
		Total:         afterDiscount,
	}
}
