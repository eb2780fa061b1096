// Package stock derives on-hand quantities by replaying historical
// purchase and sale invoices. Stock is never stored as an independent
// counter; every read is a fresh re-derivation from the two event streams.
package stock

import (
	"context"

	"backoffice/internal/core/types"
	"backoffice/pkg/logger"
)

// LedgerLine is one product line inside a historical invoice.
type LedgerLine struct {
	ItemName string
	Quantity types.Money
}

// LedgerInvoice is the replay view of a purchase or sale invoice: the
// warehouse it moved stock through and its product lines.
type LedgerInvoice struct {
	WarehouseID string
	Lines       []LedgerLine
}

// LedgerSource supplies the full historical invoice sets.
// Implementations live in infrastructure; tests use in-memory fakes.
type LedgerSource interface {
	ListPurchaseInvoices(ctx context.Context) ([]LedgerInvoice, error)
	ListSaleInvoices(ctx context.Context) ([]LedgerInvoice, error)
}

// Reconciler computes net quantity on hand for an (item, warehouse) pair.
// It is stateless and recomputes from scratch on every call; memoization,
// if wanted, lives one layer up in a caller-owned BalanceCache.
type Reconciler struct {
	source LedgerSource
}

// NewReconciler creates a reconciler over the given event source.
func NewReconciler(source LedgerSource) *Reconciler {
	return &Reconciler{source: source}
}

// AvailableStock returns incoming minus outgoing quantity for the item in
// the warehouse. Negative results are valid (oversold item).
//
// A fetch failure is logged and degrades to zero rather than propagating;
// callers must treat zero as "unknown or truly zero" and track a separate
// loading flag if they need to distinguish the two.
func (r *Reconciler) AvailableStock(ctx context.Context, itemName, warehouseID string) types.Money {
	purchases, err := r.source.ListPurchaseInvoices(ctx)
	if err != nil {
		logger.Error(ctx, "stock reconciliation: purchase fetch failed",
			"item", itemName,
			"warehouse", warehouseID,
			"error", err,
		)
		return types.Zero()
	}

	sales, err := r.source.ListSaleInvoices(ctx)
	if err != nil {
		logger.Error(ctx, "stock reconciliation: sale fetch failed",
			"item", itemName,
			"warehouse", warehouseID,
			"error", err,
		)
		return types.Zero()
	}

	incoming := sumQuantities(purchases, itemName, warehouseID)
	outgoing := sumQuantities(sales, itemName, warehouseID)

	return incoming.Sub(outgoing)
}

// sumQuantities totals matching line quantities across every invoice of
// the given warehouse.
func sumQuantities(invoices []LedgerInvoice, itemName, warehouseID string) types.Money {
	total := types.Zero()
	for _, inv := range invoices {
		if inv.WarehouseID != warehouseID {
			continue
		}
		for _, line := range inv.Lines {
			if line.ItemName == itemName {
				total = total.Add(line.Quantity)
			}
		}
	}
	return total
}
