package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/types"
	"backoffice/internal/domain/stock"
)

// LedgerRepo feeds the stock reconciler with the full historical invoice
// streams. Soft-deleted documents are excluded, so deleting an invoice is
// immediately visible in derived balances.
type LedgerRepo struct {
	txManager *TxManager
}

// NewLedgerRepo creates the ledger source over persisted invoices.
func NewLedgerRepo(txManager *TxManager) *LedgerRepo {
	return &LedgerRepo{txManager: txManager}
}

var _ stock.LedgerSource = (*LedgerRepo)(nil)

type ledgerRow struct {
	DocumentID  string      `db:"document_id"`
	WarehouseID string      `db:"warehouse_id"`
	ItemName    string      `db:"item_name"`
	Quantity    types.Money `db:"quantity"`
}

// ListPurchaseInvoices returns the replay view of all purchase invoices.
func (r *LedgerRepo) ListPurchaseInvoices(ctx context.Context) ([]stock.LedgerInvoice, error) {
	return r.list(ctx, "doc_purchase_invoices", "doc_purchase_invoice_lines")
}

// ListSaleInvoices returns the replay view of all sale invoices.
func (r *LedgerRepo) ListSaleInvoices(ctx context.Context) ([]stock.LedgerInvoice, error) {
	return r.list(ctx, "doc_sale_invoices", "doc_sale_invoice_lines")
}

func (r *LedgerRepo) list(ctx context.Context, docTable, linesTable string) ([]stock.LedgerInvoice, error) {
	// A line-level warehouse (multiple-warehouse invoices) wins over the
	// header warehouse.
	sql := fmt.Sprintf(`
		SELECT d.id AS document_id,
		       COALESCE(NULLIF(l.warehouse_id, ''), d.warehouse_id) AS warehouse_id,
		       l.item_name,
		       l.quantity
		FROM %s d
		JOIN %s l ON l.document_id = d.id
		WHERE d.deletion_mark = false
		ORDER BY d.id, l.line_no
	`, docTable, linesTable)

	var rows []ledgerRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql); err != nil {
		return nil, fmt.Errorf("list ledger %s: %w", docTable, err)
	}

	return groupLedgerRows(rows), nil
}

// groupLedgerRows folds ordered rows into per-(document, warehouse)
// invoices.
func groupLedgerRows(rows []ledgerRow) []stock.LedgerInvoice {
	invoices := make([]stock.LedgerInvoice, 0)
	index := make(map[string]int)

	for _, row := range rows {
		key := row.DocumentID + "|" + row.WarehouseID
		i, ok := index[key]
		if !ok {
			invoices = append(invoices, stock.LedgerInvoice{WarehouseID: row.WarehouseID})
			i = len(invoices) - 1
			index[key] = i
		}
		invoices[i].Lines = append(invoices[i].Lines, stock.LedgerLine{
			ItemName: row.ItemName,
			Quantity: row.Quantity,
		})
	}

	return invoices
}
