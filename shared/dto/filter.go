package dto

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLess      = "less"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreater   = "greater"
	FilterOperatorGreaterEq = "greater_eq"
	FilterOperatorLike      = "like"
	FilterOperatorIn        = "in"
	FilterIsNull            = "is_null"
	FilterIsNotNull         = "is_not_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var comparisons = map[string]string{
	FilterOperatorEq:        "=",
	FilterOperatorNotEq:     "!=",
	FilterOperatorLess:      "<",
	FilterOperatorLessEq:    "<=",
	FilterOperatorGreater:   ">",
	FilterOperatorGreaterEq: ">=",
}

// Filter is a single named-parameter predicate on one column. ArgName
// defaults to Field and must be unique within the enclosing group.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string
	Table    string
}

func (f *Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f *Filter) argName() string {
	if f.ArgName == "" {
		return f.Field
	}

	return f.ArgName
}

// GetWhereClause renders the predicate and its bind values. Unknown
// operators render nothing so the filter is ignored.
func (f *Filter) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	column, name := f.column(), f.argName()

	if op, ok := comparisons[f.Operator]; ok {
		args[name] = f.Value

		return fmt.Sprintf("%s %s :%s", column, op, name), args
	}

	switch f.Operator {
	case FilterOperatorLike:
		args[name] = fmt.Sprintf("%%%v%%", f.Value)

		return fmt.Sprintf("LOWER(%s) LIKE LOWER(:%s)", column, name), args
	case FilterOperatorIn:
		return f.in(column, name, args)
	case FilterIsNull:
		return column + " IS NULL", args
	case FilterIsNotNull:
		return column + " IS NOT NULL", args
	default:
		return "", args
	}
}

// in expands a slice value into one bind parameter per element. An empty
// slice matches nothing.
func (f *Filter) in(column, name string, args map[string]any) (string, map[string]any) {
	value := reflect.ValueOf(f.Value)

	if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
		args[name] = f.Value

		return fmt.Sprintf("%s IN (:%s)", column, name), args
	}

	if value.Len() == 0 {
		return "FALSE", args
	}

	placeholders := make([]string, value.Len())

	for i := range value.Len() {
		key := fmt.Sprintf("%s_%d", name, i)
		args[key] = value.Index(i).Interface()
		placeholders[i] = ":" + key
	}

	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")), args
}

// FilterGroup joins filters and nested groups with Operator, AND when unset.
// Members that render nothing are dropped.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := make([]string, 0, len(f.Filters))

	for _, member := range f.Filters {
		var (
			clause    string
			memberArg map[string]any
		)

		switch m := member.(type) {
		case Filter:
			clause, memberArg = m.GetWhereClause()
		case FilterGroup:
			clause, memberArg = m.GetWhereClause()
		}

		if clause == "" {
			continue
		}

		clauses = append(clauses, clause)
		maps.Copy(args, memberArg)
	}

	if len(clauses) == 0 {
		return "", args
	}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return "(" + strings.Join(clauses, " "+operator+" ") + ")", args
}
