package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/catalogs"
)

// CatalogRepo provides common CRUD operations for catalog entities using
// squirrel-built SQL and pgxscan row mapping. The column set comes from the
// entity's "db" tags, extracted once at construction.
type CatalogRepo[T any] struct {
	txManager  *TxManager
	tableName  string
	selectCols []string
	newFn      func() T
}

// NewCatalogRepo creates a catalog repository for a table.
func NewCatalogRepo[T any](txManager *TxManager, tableName string, newFn func() T) *CatalogRepo[T] {
	return &CatalogRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		selectCols: ExtractDBColumns[T](),
		newFn:      newFn,
	}
}

// NewCustomerRepo creates the customer repository.
func NewCustomerRepo(txManager *TxManager) *CatalogRepo[*catalogs.Customer] {
	return NewCatalogRepo(txManager, "cat_customers", func() *catalogs.Customer { return &catalogs.Customer{} })
}

// NewItemRepo creates the item repository.
func NewItemRepo(txManager *TxManager) *CatalogRepo[*catalogs.Item] {
	return NewCatalogRepo(txManager, "cat_items", func() *catalogs.Item { return &catalogs.Item{} })
}

// NewBranchRepo creates the branch repository.
func NewBranchRepo(txManager *TxManager) *CatalogRepo[*catalogs.Branch] {
	return NewCatalogRepo(txManager, "cat_branches", func() *catalogs.Branch { return &catalogs.Branch{} })
}

func (r *CatalogRepo[T]) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *CatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.selectCols...).From(r.tableName)
}

// Create inserts a new entity using its "db" tags.
func (r *CatalogRepo[T]) Create(ctx context.Context, entity T) error {
	data := StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	q := r.builder().Insert(r.tableName).SetMap(r.filterColumns(data, false))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate(r.tableName, "code", fmt.Sprintf("%v", data["code"]))
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}

	return nil
}

// GetByID retrieves entity by ID.
func (r *CatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity := r.newFn()

	q := r.baseSelect().Where(squirrel.Eq{"id": entityID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.tableName, entityID.String())
		}
		return entity, fmt.Errorf("get by id: %w", err)
	}

	return entity, nil
}

// GetByCode retrieves entity by code, excluding soft-deleted rows.
func (r *CatalogRepo[T]) GetByCode(ctx context.Context, code string) (T, error) {
	entity := r.newFn()

	q := r.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.tableName, code)
		}
		return entity, fmt.Errorf("get by code: %w", err)
	}

	return entity, nil
}

// Update modifies an existing entity with optimistic locking.
func (r *CatalogRepo[T]) Update(ctx context.Context, entity T) error {
	data := StructToMap(entity)

	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	q := r.builder().
		Update(r.tableName).
		SetMap(r.filterColumns(data, true)).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
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
		return apperror.NewConcurrentModification(r.tableName, entityID)
	}

	return nil
}

// SetDeletionMark sets or clears the soft-delete mark.
func (r *CatalogRepo[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	q := r.builder().
		Update(r.tableName).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set deletion mark: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute set deletion mark: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, entityID.String())
	}

	return nil
}

// List retrieves entities with filtering and pagination.
func (r *CatalogRepo[T]) List(ctx context.Context, filter catalogs.ListFilter) (catalogs.ListResult[T], error) {
	result := catalogs.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

	// Count before pagination.
	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

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

// Exists checks if an entity with the given ID exists.
func (r *CatalogRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	q := r.builder().
		Select("1").
		From(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	return true, nil
}

// filterColumns keeps only known columns; id and version are excluded from
// updates (version is managed by the optimistic lock).
func (r *CatalogRepo[T]) filterColumns(data map[string]any, forUpdate bool) map[string]any {
	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if forUpdate && (col == "id" || col == "version") {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	return filtered
}

// parseOrderBy validates the order column against the known columns.
// Supports "-field" for DESC.
func (r *CatalogRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return "name ASC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	}

	field = strings.TrimSpace(field)
	for _, col := range r.selectCols {
		if col == field {
			return field + " " + direction, nil
		}
	}

	return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
}

// WarehouseRepo extends the generic catalog repository with the
// default-flag housekeeping used by warehouse creation.
type WarehouseRepo struct {
	*CatalogRepo[*catalogs.Warehouse]
}

// NewWarehouseRepo creates the warehouse repository.
func NewWarehouseRepo(txManager *TxManager) *WarehouseRepo {
	return &WarehouseRepo{
		CatalogRepo: NewCatalogRepo(txManager, "cat_warehouses", func() *catalogs.Warehouse { return &catalogs.Warehouse{} }),
	}
}

// ClearDefault clears the default flag on all warehouses.
func (r *WarehouseRepo) ClearDefault(ctx context.Context) error {
	q := r.builder().
		Update(r.tableName).
		Set("is_default", false).
		Where(squirrel.Eq{"is_default": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build clear default: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear default warehouse: %w", err)
	}

	return nil
}

var _ catalogs.WarehouseRepository = (*WarehouseRepo)(nil)
