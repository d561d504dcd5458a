package dto

import (
	"net/http"
	"roomsense/shared/constant"
	"strconv"
	"strings"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

func positiveInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0
	}

	return n
}

// FromRequest reads page, limit, sort_by and sort_dir from the query string.
// With paginate set, missing values get the default page and limit. Limit is
// always capped at MaxValueLimit.
func (q *QueryParams) FromRequest(r *http.Request, paginate bool) {
	values := r.URL.Query()

	if page := positiveInt(values.Get(constant.RequestParamPage)); page > 0 {
		q.Page = page
	}

	if limit := positiveInt(values.Get(constant.RequestParamLimit)); limit > 0 {
		q.Limit = min(limit, constant.MaxValueLimit)
	}

	if sortBy := values.Get(constant.RequestParamSortBy); sortBy != constant.Empty {
		q.SortBy = sortBy
	}

	switch dir := strings.ToUpper(values.Get(constant.RequestParamSortDir)); dir {
	case SortDirAsc, SortDirDesc:
		q.SortDir = dir
	}

	if !paginate {
		return
	}

	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}
}

// RestrictSort keeps SortBy only when it is one of the allowed keys, translated
// to its column. Otherwise the fallback ordering is applied.
func (q *QueryParams) RestrictSort(allowed map[string]string, fallbackBy, fallbackDir string) {
	column, ok := allowed[q.SortBy]
	if !ok {
		q.SortBy = fallbackBy
		q.SortDir = fallbackDir

		return
	}

	q.SortBy = column
	if q.SortDir == "" {
		q.SortDir = fallbackDir
	}
}
