package database

import (
	"math"
	"strings"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Filter collects optional "AND ..." conditions and their bind values for
// list queries that start from "WHERE 1=1".
type Filter struct {
	clauses []string
	args    []any
}

// Add appends a condition. Empty strings and zero ids are skipped so
// callers can pass query-string parameters through unchanged.
func (f *Filter) Add(clause string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		if v == "" {
			return
		}
	case int:
		if v == 0 {
			return
		}
	case int64:
		if v == 0 {
			return
		}
	}
	f.clauses = append(f.clauses, clause)
	f.args = append(f.args, value)
}

// AddLike appends a condition that matches value as a substring in every
// placeholder of clause.
func (f *Filter) AddLike(clause string, value string) {
	if value == "" {
		return
	}
	term := "%" + value + "%"
	f.clauses = append(f.clauses, clause)
	for i := strings.Count(clause, "?"); i > 0; i-- {
		f.args = append(f.args, term)
	}
}

// When appends a condition without bind values if on is set, as in
// "i.available <= i.reorder_level" for a low-stock toggle.
func (f *Filter) When(on bool, clause string) {
	if on {
		f.clauses = append(f.clauses, clause)
	}
}

// SQL returns the conditions joined as " AND a AND b", or "".
func (f *Filter) SQL() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(f.clauses, " AND ")
}

// Args returns a copy of the bind values, so callers can append paging
// values without touching the count query's arguments.
func (f *Filter) Args() []any {
	return append([]any(nil), f.args...)
}

// PageRequest is a 1-based page with a row limit.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest clamps page to at least 1 and limit to 1..MaxPageLimit,
// using DefaultPageLimit when limit is not set.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is returned alongside paged lists.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

func (p PageRequest) Paginate(total int64) Pagination {
	pages := int64(0)
	if p.Limit > 0 {
		pages = int64(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Pagination{Total: total, Page: p.Page, Limit: p.Limit, Pages: pages}
}
