package table

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const DEFAULT_PAGE_SIZE = 20

var PageSizeOptions = []int{5, 10, 20, 50}

// ALL disables a filter.
const ALL = "all"

type Column[T any] struct {
	Id    string
	Value func(T) string
}

// Definition names the searchable columns of a row type and the columns that can be
// filtered on.
type Definition[T any] struct {
	Columns []Column[T]
	Filters []string
}

func (d Definition[T]) column(id string) (Column[T], bool) {
	for _, c := range d.Columns {
		if c.Id == id {
			return c, true
		}
	}
	return Column[T]{}, false
}

// QueryError is a malformed table query.
type QueryError struct {
	Message string
}

func (e QueryError) Error() string {
	return e.Message
}

type Query struct {
	Search   string
	Filters  map[string]string
	Page     int
	PageSize int
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// ParseQuery reads search, page, pageSize and one parameter per filter. A missing or
// malformed page means the first page.
func ParseQuery(values url.Values, filters []string) (Query, error) {
	q := Query{
		Search:   values.Get("search"),
		Filters:  make(map[string]string, len(filters)),
		Page:     1,
		PageSize: DEFAULT_PAGE_SIZE,
	}
	if p, err := strconv.Atoi(values.Get("page")); err == nil && p > 0 {
		q.Page = p
	}
	if raw := values.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || !validPageSize(size) {
			return Query{}, QueryError{Message: fmt.Sprintf("pageSize must be one of %v", PageSizeOptions)}
		}
		q.PageSize = size
	}
	for _, f := range filters {
		if v := values.Get(f); v != "" {
			q.Filters[f] = v
		}
	}
	return q, nil
}

func validPageSize(size int) bool {
	for _, s := range PageSizeOptions {
		if s == size {
			return true
		}
	}
	return false
}

// Apply searches, filters and paginates items. Search matches a case-insensitive
// substring of any column; a filter matches a column value case-insensitively unless it
// is empty or ALL. The page is clamped to the available pages.
func Apply[T any](items []T, def Definition[T], q Query) Page[T] {
	search := strings.ToLower(q.Search)
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if search != "" && !matchesSearch(item, def, search) {
			continue
		}
		if !matchesFilters(item, def, q.Filters) {
			continue
		}
		matched = append(matched, item)
	}

	size := q.PageSize
	if size <= 0 {
		size = DEFAULT_PAGE_SIZE
	}
	totalPages := (len(matched) + size - 1) / size
	page := q.Page
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	end := start + size
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	return Page[T]{
		Items:      matched[start:end],
		Total:      len(matched),
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}
}

func matchesSearch[T any](item T, def Definition[T], search string) bool {
	for _, c := range def.Columns {
		if strings.Contains(strings.ToLower(c.Value(item)), search) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](item T, def Definition[T], filters map[string]string) bool {
	for id, want := range filters {
		if want == "" || want == ALL {
			continue
		}
		c, ok := def.column(id)
		if !ok {
			continue
		}
		if strings.ToLower(c.Value(item)) != strings.ToLower(want) {
			return false
		}
	}
	return true
}
