// Package books provides database operations for the book catalogue.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	published, err := repo.Published(ctx)
package books

import (
	"context"
	"errors"
	"fmt"

	"github.com/unipress/publishing/internal/database"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrInvalidStatus = errors.New("invalid book status")
)

// Statuses lists the lifecycle states a book can be moved to.
var Statuses = []string{
	"draft",
	"submitted",
	"under_review",
	"revisions_requested",
	"accepted",
	"in_production",
	"published",
	"rejected",
	"archived",
}

func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// ListFilter narrows List. Zero fields are ignored.
type ListFilter struct {
	Status   string
	Category string
	AuthorID int64
	Format   string
	Year     int
	Search   string
}

// Repository handles all book database operations.
type Repository struct {
	db *database.Adapter
}

// NewRepository creates a new books repository.
func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

// Published returns the 20 most recently published books with their
// author names.
func (r *Repository) Published(ctx context.Context) ([]database.Row, error) {
	rows, err := r.db.QueryRows(ctx, `
		SELECT b.*, u.full_name as author_name
		FROM books b
		LEFT JOIN authors a ON b.author_id = a.id
		LEFT JOIN users u ON a.user_id = u.id
		WHERE b.status = 'published'
		ORDER BY COALESCE(b.publication_date, DATE(b.created_at)) DESC
		LIMIT 20`)
	if err != nil {
		return nil, fmt.Errorf("failed to get published books: %w", err)
	}
	return rows, nil
}

const listFrom = `
		FROM books b
		LEFT JOIN authors a ON b.author_id = a.id
		LEFT JOIN users u ON a.user_id = u.id
		WHERE 1=1`

// List returns a page of books, newest first, each with its inventory
// and sales count.
func (r *Repository) List(ctx context.Context, f ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	var where database.Filter
	where.Add("b.status = ?", f.Status)
	where.Add("b.category = ?", f.Category)
	where.Add("b.author_id = ?", f.AuthorID)
	where.Add("b.format = ?", f.Format)
	where.Add("YEAR(b.created_at) = ?", f.Year)
	where.AddLike("(b.title LIKE ? OR b.isbn LIKE ? OR u.full_name LIKE ?)", f.Search)

	total, err := r.db.ScalarInt(ctx, "total", "SELECT COUNT(*) as total"+listFrom+where.SQL(), where.Args()...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to count books: %w", err)
	}

	args := append(where.Args(), page.Limit, page.Offset())
	rows, err := r.db.QueryRows(ctx,
		"SELECT b.*, u.full_name as author_name, u.email as author_email"+listFrom+where.SQL()+
			" ORDER BY b.created_at DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to list books: %w", err)
	}

	for _, book := range rows {
		inventory, err := r.db.QueryRows(ctx, "SELECT format, quantity, available FROM inventory WHERE book_id = ?", book.Int("id"))
		if err != nil {
			return nil, database.Pagination{}, fmt.Errorf("failed to get book inventory: %w", err)
		}
		book["inventory"] = inventory

		sales, err := r.db.ScalarInt(ctx, "salesCount", "SELECT COUNT(*) as salesCount FROM sales WHERE book_id = ?", book.Int("id"))
		if err != nil {
			return nil, database.Pagination{}, fmt.Errorf("failed to count book sales: %w", err)
		}
		book["salesCount"] = sales
	}

	return rows, page.Paginate(total), nil
}

// GetByID returns a book with its author details, submissions, contracts,
// production stages, reviews, inventory and latest sales.
func (r *Repository) GetByID(ctx context.Context, id int64) (database.Row, error) {
	book, err := r.db.QueryOne(ctx, `
		SELECT b.*, u.full_name as author_name, u.email as author_email,
		       a.faculty as author_faculty, a.department as author_department
		FROM books b
		LEFT JOIN authors a ON b.author_id = a.id
		LEFT JOIN users u ON a.user_id = u.id
		WHERE b.id = ?`, id)
	if errors.Is(err, database.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	related := []struct {
		key   string
		query string
	}{
		{"submissions", "SELECT * FROM submissions WHERE book_id = ? ORDER BY submission_date DESC"},
		{"contracts", "SELECT * FROM contracts WHERE book_id = ? ORDER BY created_at DESC"},
		{"production", "SELECT * FROM production WHERE book_id = ? ORDER BY created_at DESC"},
		{"reviews", `SELECT r.*, u.full_name as reviewer_name
			FROM reviews r
			LEFT JOIN users u ON r.reviewer_id = u.id
			WHERE r.submission_id IN (SELECT id FROM submissions WHERE book_id = ?)
			ORDER BY r.completed_date DESC`},
		{"inventory", "SELECT * FROM inventory WHERE book_id = ?"},
		{"sales", "SELECT * FROM sales WHERE book_id = ? ORDER BY sale_date DESC LIMIT 50"},
	}
	for _, rel := range related {
		rows, err := r.db.QueryRows(ctx, rel.query, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load book %s: %w", rel.key, err)
		}
		book[rel.key] = rows
	}
	return book, nil
}

// UpdateStatus moves a book to status. A nil note keeps the existing
// editor notes.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string, notes *string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	var note any
	if notes != nil {
		note = *notes
	}

	res, err := r.db.Execute(ctx,
		"UPDATE books SET status = ?, editor_notes = COALESCE(?, editor_notes) WHERE id = ?",
		status, note, id)
	if err != nil {
		return fmt.Errorf("failed to update book status: %w", err)
	}
	if res.Affected() == 0 {
		return ErrBookNotFound
	}
	return nil
}
