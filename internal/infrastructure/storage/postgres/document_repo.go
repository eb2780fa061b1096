package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/documents"
)

// DocumentRepo provides CRUD for invoice documents plus their line tables.
// Lines are replaced wholesale on save (delete + insert) inside the
// caller's transaction.
type DocumentRepo[T any] struct {
	txManager  *TxManager
	tableName  string
	linesTable string

	// searchCol is the party column matched by the list Search filter
	// (customer_name for sales, supplier_name for purchases).
	searchCol string

	selectCols []string
	newFn      func() T
}

func newDocumentRepo[T any](txManager *TxManager, tableName, linesTable, searchCol string, newFn func() T) *DocumentRepo[T] {
	return &DocumentRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		linesTable: linesTable,
		searchCol:  searchCol,
		selectCols: ExtractDBColumns[T](),
		newFn:      newFn,
	}
}

// NewSaleInvoiceRepo creates the sale invoice repository.
func NewSaleInvoiceRepo(txManager *TxManager) *DocumentRepo[*documents.SaleInvoice] {
	return newDocumentRepo(txManager, "doc_sale_invoices", "doc_sale_invoice_lines", "customer_name",
		func() *documents.SaleInvoice { return &documents.SaleInvoice{} })
}

// NewPurchaseInvoiceRepo creates the purchase invoice repository.
func NewPurchaseInvoiceRepo(txManager *TxManager) *DocumentRepo[*documents.PurchaseInvoice] {
	return newDocumentRepo(txManager, "doc_purchase_invoices", "doc_purchase_invoice_lines", "supplier_name",
		func() *documents.PurchaseInvoice { return &documents.PurchaseInvoice{} })
}

var (
	_ documents.SaleRepository     = (*DocumentRepo[*documents.SaleInvoice])(nil)
	_ documents.PurchaseRepository = (*DocumentRepo[*documents.PurchaseInvoice])(nil)
)

func (r *DocumentRepo[T]) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the document header.
func (r *DocumentRepo[T]) Create(ctx context.Context, doc T) error {
	data := StructToMap(doc)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in document")
	}

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().Insert(r.tableName).SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate(r.tableName, "number", fmt.Sprintf("%v", data["number"]))
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}

	return nil
}

// GetByID retrieves the document header by ID.
func (r *DocumentRepo[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	doc := r.newFn()

	q := r.builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"id": docID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return doc, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return doc, apperror.NewNotFound(r.tableName, docID.String())
		}
		return doc, fmt.Errorf("get by id: %w", err)
	}

	return doc, nil
}

// Update modifies the document header with optimistic locking.
func (r *DocumentRepo[T]) Update(ctx context.Context, doc T) error {
	data := StructToMap(doc)

	docID, ok := data["id"]
	if !ok {
		return fmt.Errorf("document has no 'id' field with db tag")
	}
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("document has no 'version' field or it is not an int")
	}

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if col == "id" || col == "version" {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().
		Update(r.tableName).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": docID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, docID)
	}

	return nil
}

// SaveLines replaces the document's lines.
func (r *DocumentRepo[T]) SaveLines(ctx context.Context, docID id.ID, lines []documents.DocumentLine) error {
	querier := r.txManager.GetQuerier(ctx)

	delQ := r.builder().Delete(r.linesTable).Where(squirrel.Eq{"document_id": docID})
	sql, args, err := delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	insQ := r.builder().Insert(r.linesTable).Columns(
		"document_id", "line_id", "line_no",
		"item_number", "item_name", "quantity", "unit", "unit_price",
		"discount_percent", "tax_percent", "is_new_item", "warehouse_id",
		"discount_value", "tax_value", "line_total",
	)
	for _, l := range lines {
		insQ = insQ.Values(
			docID, l.LineID, l.LineNo,
			l.ItemNumber, l.ItemName, l.Quantity, l.Unit, l.UnitPrice,
			l.DiscountPercent, l.TaxPercent, l.IsNewItem, l.WarehouseID,
			l.DiscountValue, l.TaxValue, l.LineTotal,
		)
	}

	sql, args, err = insQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// GetLines retrieves the document's lines ordered by line number.
func (r *DocumentRepo[T]) GetLines(ctx context.Context, docID id.ID) ([]documents.DocumentLine, error) {
	q := r.builder().
		Select(ExtractDBColumns[documents.DocumentLine]()...).
		From(r.linesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []documents.DocumentLine
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SetDeletionMark soft-deletes the document. Deleted documents drop out of
// the stock ledger on the next reconciliation.
func (r *DocumentRepo[T]) SetDeletionMark(ctx context.Context, docID id.ID, marked bool) error {
	q := r.builder().
		Update(r.tableName).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": docID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set deletion mark: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute set deletion mark: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, docID.String())
	}

	return nil
}

// List retrieves documents with filtering and pagination.
func (r *DocumentRepo[T]) List(ctx context.Context, filter documents.ListFilter) (documents.ListResult[T], error) {
	result := documents.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(r.selectCols...).From(r.tableName)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{r.searchCol: pattern},
		})
	}
	if filter.BranchID != "" {
		q = q.Where(squirrel.Eq{"branch_id": filter.BranchID})
	}
	if filter.WarehouseID != "" {
		q = q.Where(squirrel.Eq{"warehouse_id": filter.WarehouseID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy(r.parseOrderBy(filter.OrderBy))

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

func (r *DocumentRepo[T]) parseOrderBy(orderBy string) string {
	direction := "DESC"
	field := "date"

	if orderBy != "" {
		field = orderBy
		direction = "ASC"
		if strings.HasPrefix(orderBy, "-") {
			direction = "DESC"
			field = strings.TrimPrefix(orderBy, "-")
		}
	}

	for _, col := range r.selectCols {
		if col == field {
			return field + " " + direction
		}
	}
	return "date DESC"
}
