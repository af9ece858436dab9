// Package search backs the admin filter dropdowns and the cross-entity
// search box.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/unipress/publishing/internal/database"
)

const (
	// MinTermLength is the shortest term Search looks up.
	MinTermLength = 2
	// PerKindLimit caps the matches returned for each entity kind.
	PerKindLimit = 5
)

type Filters struct {
	Faculties  []string       `json:"faculties"`
	Categories []string       `json:"categories"`
	Authors    []database.Row `json:"authors"`
}

type Repository struct {
	db *database.Adapter
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

// Filters returns the distinct faculties and categories in use and the
// active authors.
func (r *Repository) Filters(ctx context.Context) (*Filters, error) {
	faculties, err := r.distinct(ctx, "faculty",
		"SELECT DISTINCT faculty FROM authors WHERE faculty IS NOT NULL AND faculty != '' ORDER BY faculty")
	if err != nil {
		return nil, fmt.Errorf("failed to load faculties: %w", err)
	}
	categories, err := r.distinct(ctx, "category",
		"SELECT DISTINCT category FROM books WHERE category IS NOT NULL AND category != '' ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	authors, err := r.db.QueryRows(ctx,
		"SELECT a.id, u.full_name, u.email FROM authors a JOIN users u ON a.user_id = u.id WHERE u.status = 'active' ORDER BY u.full_name")
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	return &Filters{Faculties: faculties, Categories: categories, Authors: authors}, nil
}

func (r *Repository) distinct(ctx context.Context, column, query string) ([]string, error) {
	rows, err := r.db.QueryRows(ctx, query)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.String(column))
	}
	return values, nil
}

// Search matches books by title or ISBN, authors by name, email or staff id
// and contracts by number. Each hit carries type, id, name and description.
// Terms shorter than MinTermLength return no hits.
func (r *Repository) Search(ctx context.Context, term string) ([]database.Row, error) {
	term = strings.TrimSpace(term)
	results := make([]database.Row, 0)
	if len(term) < MinTermLength {
		return results, nil
	}
	like := "%" + term + "%"

	kinds := []struct {
		name  string
		query string
		args  []any
	}{
		{"books", `SELECT 'book' as type, id, title as name, CONCAT('Book: ', title) as description
			FROM books
			WHERE title LIKE ? OR isbn LIKE ?
			LIMIT ?`, []any{like, like, PerKindLimit}},
		{"authors", `SELECT 'author' as type, a.id, u.full_name as name, CONCAT('Author: ', u.full_name, ' (', u.email, ')') as description
			FROM authors a JOIN users u ON a.user_id = u.id
			WHERE u.full_name LIKE ? OR u.email LIKE ? OR a.staff_id LIKE ?
			LIMIT ?`, []any{like, like, like, PerKindLimit}},
		{"contracts", `SELECT 'contract' as type, c.id, c.contract_number as name, CONCAT('Contract: ', c.contract_number, ' - ', b.title) as description
			FROM contracts c JOIN books b ON c.book_id = b.id
			WHERE c.contract_number LIKE ?
			LIMIT ?`, []any{like, PerKindLimit}},
	}
	for _, k := range kinds {
		rows, err := r.db.QueryRows(ctx, k.query, k.args...)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", k.name, err)
		}
		results = append(results, rows...)
	}
	return results, nil
}
