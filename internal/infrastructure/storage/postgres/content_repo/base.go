// Package content_repo provides PostgreSQL repositories for books, chapters
// and records. Visible numbers live in num_major/num_minor; every list is
// ordered by them.
package content_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"cgl/internal/core/apperror"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
	"cgl/internal/domain"
	"cgl/internal/infrastructure/storage/postgres"
)

const (
	colMajor = "num_major"
	colMinor = "num_minor"
)

// immutableCols are never written by Update.
var immutableCols = map[string]bool{
	"id":         true,
	"version":    true,
	colMajor:     true,
	colMinor:     true,
	"created_at": true,
	"created_by": true,
	"book_id":    true,
}

// BaseContentRepo provides common CRUD operations for numbered content.
// Embed this in specific repositories.
type BaseContentRepo[T domain.Numbered] struct {
	txm        *postgres.TxManager
	tableName  string
	selectCols []string
	newFn      func() T

	// scopeCol holds the container ID of the numbering scope ("" for global).
	scopeCol   string
	searchCols []string
	sortCols   map[string]string
}

// NewBaseContentRepo creates a new base content repository.
func NewBaseContentRepo[T domain.Numbered](
	txm *postgres.TxManager,
	tableName string,
	selectCols []string,
	newFn func() T,
	scopeCol string,
	searchCols ...string,
) *BaseContentRepo[T] {
	sortCols := map[string]string{
		"visibleNumber": colMajor,
		"createdAt":     "created_at",
		"updatedAt":     "updated_at",
	}
	for _, c := range selectCols {
		if c == "title" {
			sortCols["title"] = "title"
		}
	}
	return &BaseContentRepo[T]{
		txm:        txm,
		tableName:  tableName,
		selectCols: selectCols,
		newFn:      newFn,
		scopeCol:   scopeCol,
		searchCols: searchCols,
		sortCols:   sortCols,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseContentRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseContentRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Create inserts a new entity using its "db" tags. A taken visible number
// surfaces as apperror.CodeNumberConflict.
func (r *BaseContentRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		mapped := postgres.MapError(err)
		if apperror.IsNumberConflict(mapped) {
			return apperror.NewNumberConflict(entity.NumberingScope().Key(), entity.GetVisibleNumber().String()).WithCause(err)
		}
		if mapped != err {
			return mapped
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// Update modifies an existing entity with optimistic locking. The visible
// number and the owning book are never rewritten.
func (r *BaseContentRepo[T]) Update(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	now := time.Now().UTC()
	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if immutableCols[col] {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	filtered["updated_at"] = now

	sql, args, err := r.Builder().
		Update(r.tableName).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if mapped := postgres.MapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, entityID)
	}

	if v, ok := any(entity).(interface{ Touch() }); ok {
		v.Touch()
	}
	return nil
}

// baseSelect creates a SELECT builder.
func (r *BaseContentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(r.tableName)
}

// GetByID retrieves a live entity by ID.
func (r *BaseContentRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity := r.newFn()

	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": entityID, "deletion_mark": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.tableName, entityID.String())
		}
		return entity, fmt.Errorf("get by id: %w", err)
	}
	return entity, nil
}

// List retrieves entities with filtering and pagination.
func (r *BaseContentRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Items:  []T{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	if filter.Range.IsEmpty() {
		return result, nil
	}

	q, err := r.listQuery(filter)
	if err != nil {
		return result, err
	}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy...)
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
	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	return result, nil
}

// listQuery builds the filtered SELECT without ordering or paging.
func (r *BaseContentRepo[T]) listQuery(filter domain.ListFilter) (squirrel.SelectBuilder, error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.BookID != nil {
		if r.scopeCol == "" {
			return q, apperror.NewValidation("bookId filter is not supported").WithDetail("entity", r.tableName)
		}
		q = q.Where(squirrel.Eq{r.scopeCol: *filter.BookID})
	}
	if filter.ChapterID != nil {
		if !r.hasColumn("chapter_id") {
			return q, apperror.NewValidation("chapterId filter is not supported").WithDetail("entity", r.tableName)
		}
		q = q.Where(squirrel.Eq{"chapter_id": *filter.ChapterID})
	}
	if filter.Status != "" && r.hasColumn("status") {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Search != "" && len(r.searchCols) > 0 {
		pattern := "%" + filter.Search + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	if cond := RangeCondition(filter.Range); cond != nil {
		q = q.Where(cond)
	}
	return q, nil
}

// RangeCondition renders an inclusive visible-number range over
// num_major/num_minor. It returns nil for the full range, a false condition
// for an inverted one, and the three-clause disjunction otherwise. Bounds
// sharing a major collapse into one conjunction because the disjunction
// would admit every minor of that major.
func RangeCondition(rg numbering.Range) squirrel.Sqlizer {
	if rg.IsEmpty() {
		return squirrel.Expr("1 = 0")
	}
	if rg.IsFull() {
		return nil
	}
	from, to := rg.From, rg.To
	if rg.SameMajor() {
		return squirrel.And{
			squirrel.Eq{colMajor: from.Major},
			squirrel.GtOrEq{colMinor: from.Minor},
			squirrel.LtOrEq{colMinor: to.Minor},
		}
	}
	return squirrel.Or{
		squirrel.And{squirrel.Gt{colMajor: from.Major}, squirrel.Lt{colMajor: to.Major}},
		squirrel.And{squirrel.Eq{colMajor: from.Major}, squirrel.GtOrEq{colMinor: from.Minor}},
		squirrel.And{squirrel.Eq{colMajor: to.Major}, squirrel.LtOrEq{colMinor: to.Minor}},
	}
}

// MaxNumber implements numbering.MaxFinder. Soft-deleted rows count: their
// numbers stay reserved by the unique constraint.
func (r *BaseContentRepo[T]) MaxNumber(ctx context.Context, scope numbering.Scope) (*numbering.VisibleNumber, error) {
	q := r.Builder().
		Select(colMajor, colMinor).
		From(r.tableName).
		OrderBy(colMajor+" DESC", colMinor+" DESC").
		Limit(1)
	if r.scopeCol != "" {
		q = q.Where(squirrel.Eq{r.scopeCol: scope.BookID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build max query: %w", err)
	}

	var v numbering.VisibleNumber
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&v.Major, &v.Minor)
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("max number %s: %w", scope, err)
	}
	return &v, nil
}

// SetDeletionMark sets or clears the deletion mark (soft delete).
func (r *BaseContentRepo[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	sql, args, err := r.Builder().
		Update(r.tableName).
		Set("deletion_mark", marked).
		Set("updated_at", time.Now().UTC()).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set deletion mark: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute set deletion mark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, entityID.String())
	}
	return nil
}

// existsWhere reports whether a live row matches cond.
func (r *BaseContentRepo[T]) existsWhere(ctx context.Context, cond squirrel.Sqlizer) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").
		From(r.tableName).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var one int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if postgres.IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}

// Exists checks if a live entity exists.
func (r *BaseContentRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return r.existsWhere(ctx, squirrel.Eq{"id": entityID})
}

func (r *BaseContentRepo[T]) hasColumn(col string) bool {
	for _, c := range r.selectCols {
		if c == col {
			return true
		}
	}
	return false
}

// parseOrderBy maps API sort keys to columns. Visible number ordering is
// always the tie-breaker.
func (r *BaseContentRepo[T]) parseOrderBy(orderBy string) ([]string, error) {
	if orderBy == "" {
		return []string{colMajor + " ASC", colMinor + " ASC"}, nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	col, ok := r.sortCols[strings.TrimSpace(field)]
	if !ok {
		return nil, apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}
	if col == colMajor {
		return []string{colMajor + " " + direction, colMinor + " " + direction}, nil
	}
	return []string{col + " " + direction, colMajor + " ASC", colMinor + " ASC"}, nil
}
