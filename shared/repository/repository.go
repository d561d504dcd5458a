package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"roomsense/infras/otel"
	"roomsense/infras/postgres"
	"roomsense/shared/constant"
	"roomsense/shared/dto"
	"roomsense/shared/logger"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
)

var errRequiredFilter = errors.New("refusing to touch every row: filter is required")

// column is one selectable field. expr is the qualified SQL expression,
// aliased when the struct reads it under another name.
type column struct {
	name  string
	expr  string
	owned bool
}

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

type preparer interface {
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

type joiner interface {
	GetJoinQuery() string
}

// Repository maps a struct tagged with db (and optionally table and column
// for joined fields) onto named sqlx queries. Entities implementing
// GetJoinQuery get that join appended to every read.
type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entitas       string
	primaryColumn string
	columns       []column
	join          string
	insertQuery   string
	InsertColumns []string
}

func NewRepository[T any](entitasName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	columns := getColumns(tableName, reflect.TypeOf(zero))

	insertColumns := make([]string, 0, len(columns))
	placeholders := make([]string, 0, len(columns))

	for _, col := range columns {
		if col.owned {
			insertColumns = append(insertColumns, col.name)
			placeholders = append(placeholders, ":"+col.name)
		}
	}

	join := ""
	if j, ok := any(zero).(joiner); ok {
		join = j.GetJoinQuery()
	}

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entitas:       entitasName,
		primaryColumn: primaryColumn,
		columns:       columns,
		join:          join,
		insertQuery: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			tableName, strings.Join(insertColumns, ", "), strings.Join(placeholders, ", ")),
		InsertColumns: insertColumns,
	}
}

func (repo *Repository[T]) trace(ctx context.Context, operation string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+repo.entitas+"."+operation)
}

// fail records err on the span and wraps it with the failed action.
func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entitas, err)
}

// statement joins the non-empty clauses with single spaces.
func statement(clauses ...string) string {
	return strings.Join(slices.DeleteFunc(clauses, func(c string) bool { return c == "" }), " ")
}

func where(filter dto.FilterGroup) (string, map[string]any) {
	clause, args := filter.GetWhereClause()
	if clause == "" {
		return "", map[string]any{}
	}

	return "WHERE " + clause, args
}

func paginate(params dto.QueryParams, args map[string]any) string {
	if params.Limit <= 0 {
		return ""
	}

	args["limit"] = params.Limit

	if params.Page <= 0 {
		return "LIMIT :limit"
	}

	args["offset"] = (params.Page - 1) * params.Limit

	return "LIMIT :limit OFFSET :offset"
}

func (repo *Repository[T]) selectFrom(columns []string, filter string) string {
	exprs := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(columns) == 0 || slices.Contains(columns, col.name) {
			exprs = append(exprs, col.expr)
		}
	}

	return statement("SELECT "+strings.Join(exprs, ", "), "FROM "+repo.table, repo.join, filter)
}

func (repo *Repository[T]) insert(ctx context.Context, exec execer, model T) error {
	ctx, scope := repo.trace(ctx, "insert")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, repo.insertQuery)

	if _, err := exec.NamedExecContext(ctx, repo.insertQuery, model); err != nil {
		return repo.fail(scope, "insert data", err)
	}

	return nil
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	return repo.insert(ctx, repo.db.Write, model)
}

func (repo *Repository[T]) InsertTx(ctx context.Context, sqltx *sqlx.Tx, model T) error {
	return repo.insert(ctx, sqltx, model)
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.trace(ctx, "Exist")
	defer scope.End()

	clause, args := where(filter)
	if clause == "" {
		return false, errRequiredFilter
	}

	query := fmt.Sprintf("SELECT EXISTS(%s)", statement("SELECT 1 FROM "+repo.table, clause))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		return false, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	exist := false
	if err := stmt.GetContext(ctx, &exist, args); err != nil {
		return false, repo.fail(scope, "check exist data", err)
	}

	return exist, nil
}

// get returns the zero T when nothing matches.
func (repo *Repository[T]) get(ctx context.Context, prep preparer, filter dto.FilterGroup, lock bool, columns ...string) (T, error) {
	ctx, scope := repo.trace(ctx, "get")
	defer scope.End()

	var model T

	clause, args := where(filter)

	query := repo.selectFrom(columns, clause)
	if lock {
		query = statement(query, "FOR UPDATE OF "+repo.table)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := prep.PrepareNamedContext(ctx, query)
	if err != nil {
		return model, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	err = stmt.GetContext(ctx, &model, args)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model, nil
	case err != nil:
		return model, repo.fail(scope, "get data", err)
	}

	return model, nil
}

func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	return repo.get(ctx, repo.db.Read, filter, false, columns...)
}

// GetTx reads inside sqltx so the row reflects the transaction's own writes.
func (repo *Repository[T]) GetTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup, columns ...string) (T, error) {
	return repo.get(ctx, sqltx, filter, false, columns...)
}

// GetForUpdateTx reads the matching row and holds its lock until sqltx ends.
func (repo *Repository[T]) GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup, columns ...string) (T, error) {
	return repo.get(ctx, sqltx, filter, true, columns...)
}

func (repo *Repository[T]) getAll(ctx context.Context, prep preparer, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.trace(ctx, "getAll")
	defer scope.End()

	clause, args := where(filter)

	ordering := ""
	if params.SortBy != "" && params.SortDir != "" {
		ordering = "ORDER BY " + params.SortBy + " " + params.SortDir
	}

	query := statement(repo.selectFrom(columns, clause), ordering, paginate(params, args))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := prep.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	var models []T
	if err := stmt.SelectContext(ctx, &models, args); err != nil {
		return nil, repo.fail(scope, "get all data", err)
	}

	return models, nil
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	return repo.getAll(ctx, repo.db.Read, params, filter, columns...)
}

func (repo *Repository[T]) GetAllTx(ctx context.Context, sqltx *sqlx.Tx, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	return repo.getAll(ctx, sqltx, params, filter, columns...)
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.trace(ctx, "Count")
	defer scope.End()

	clause, args := where(filter)

	query := statement(fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s", repo.table, repo.primaryColumn, repo.table), repo.join, clause)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		return 0, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	var count int
	if err := stmt.GetContext(ctx, &count, args); err != nil {
		return 0, repo.fail(scope, "count data", err)
	}

	return count, nil
}

func (repo *Repository[T]) delete(ctx context.Context, exec execer, filter dto.FilterGroup) error {
	ctx, scope := repo.trace(ctx, "delete")
	defer scope.End()

	clause, args := where(filter)
	if clause == "" {
		return errRequiredFilter
	}

	query := statement("DELETE FROM "+repo.table, clause)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := exec.NamedExecContext(ctx, query, args); err != nil {
		return repo.fail(scope, "delete data", err)
	}

	return nil
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	return repo.delete(ctx, repo.db.Write, filter)
}

func (repo *Repository[T]) DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup) error {
	return repo.delete(ctx, sqltx, filter)
}

// update sets the columns named by mod. Assignments are ordered by column
// name so the statement text is stable.
func (repo *Repository[T]) update(ctx context.Context, exec execer, mod map[string]any, filter dto.FilterGroup) error {
	ctx, scope := repo.trace(ctx, "update")
	defer scope.End()

	clause, args := where(filter)
	if clause == "" {
		return errRequiredFilter
	}

	assignments := make([]string, 0, len(mod))
	for _, col := range slices.Sorted(maps.Keys(mod)) {
		assignments = append(assignments, col+" = :"+col)
	}

	query := statement("UPDATE "+repo.table, "SET "+strings.Join(assignments, ", "), clause)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	maps.Copy(args, mod)

	if _, err := exec.NamedExecContext(ctx, query, args); err != nil {
		return repo.fail(scope, "update data", err)
	}

	return nil
}

func (repo *Repository[T]) Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) error {
	return repo.update(ctx, repo.db.Write, mod, filter)
}

func (repo *Repository[T]) UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter dto.FilterGroup) error {
	return repo.update(ctx, sqltx, mod, filter)
}

// getColumns walks db tags, descending into embedded structs. Fields tagged
// with another table are read through the join and never inserted.
func getColumns(table string, reflectType reflect.Type) []column {
	var columns []column

	for i := range reflectType.NumField() {
		field := reflectType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, getColumns(table, field.Type)...)

			continue
		}

		name := field.Tag.Get("db")
		if name == "" {
			continue
		}

		owner := field.Tag.Get("table")
		if owner == "" {
			owner = table
		}

		col := column{name: name, expr: owner + "." + name, owned: owner == table}

		if source := field.Tag.Get("column"); source != "" {
			col.expr = owner + "." + source + " AS " + name
		}

		columns = append(columns, col)
	}

	return columns
}
