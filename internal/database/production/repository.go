// Package production provides database operations for the production
// schedule of books.
package production

import (
	"context"
	"fmt"

	"github.com/unipress/publishing/internal/database"
)

type ListFilter struct {
	Status string
	Stage  string
	BookID int64
}

type Repository struct {
	db *database.Adapter
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

const listFrom = " FROM production p JOIN books b ON p.book_id = b.id WHERE 1=1"

// List returns a page of production tasks, earliest due date first, with
// days_remaining until the due date.
func (r *Repository) List(ctx context.Context, f ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	var where database.Filter
	where.Add("p.status = ?", f.Status)
	where.Add("p.stage = ?", f.Stage)
	where.Add("p.book_id = ?", f.BookID)

	total, err := r.db.ScalarInt(ctx, "total", "SELECT COUNT(*) as total"+listFrom+where.SQL(), where.Args()...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to count production tasks: %w", err)
	}

	args := append(where.Args(), page.Limit, page.Offset())
	rows, err := r.db.QueryRows(ctx,
		"SELECT p.*, b.title as book_title, DATEDIFF(p.due_date, CURDATE()) as days_remaining"+listFrom+where.SQL()+
			" ORDER BY p.due_date ASC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to list production tasks: %w", err)
	}
	return rows, page.Paginate(total), nil
}

// ForBook returns every production stage of a book in schedule order.
func (r *Repository) ForBook(ctx context.Context, bookID int64) ([]database.Row, error) {
	rows, err := r.db.QueryRows(ctx,
		"SELECT id, stage, status, start_date, due_date, completed_date FROM production WHERE book_id = ? ORDER BY start_date ASC, id ASC",
		bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list book production: %w", err)
	}
	return rows, nil
}
