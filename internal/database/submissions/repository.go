// Package submissions provides database operations for manuscript
// submissions and reviewer assignment.
package submissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/unipress/publishing/internal/database"
)

var ErrSubmissionNotFound = errors.New("submission not found")

type ListFilter struct {
	Status   string
	Type     string
	Priority string
}

// Assignment hands a submission to a reviewer.
type Assignment struct {
	ReviewerID int64
	DueDate    string
	Priority   string
}

type Repository struct {
	db *database.Adapter
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

// List returns a page of submissions ordered by priority then due date.
// Each row carries days_remaining until its due date.
func (r *Repository) List(ctx context.Context, f ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	var where database.Filter
	where.Add("s.status = ?", f.Status)
	where.Add("s.submission_type = ?", f.Type)
	where.Add("s.priority = ?", f.Priority)

	total, err := r.db.ScalarInt(ctx, "total",
		"SELECT COUNT(*) as total FROM submissions s JOIN books b ON s.book_id = b.id WHERE 1=1"+where.SQL(),
		where.Args()...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to count submissions: %w", err)
	}

	args := append(where.Args(), page.Limit, page.Offset())
	rows, err := r.db.QueryRows(ctx, `
		SELECT s.*, b.title as book_title, u.full_name as author_name,
		       DATE(s.due_date) as due_date_formatted,
		       DATEDIFF(s.due_date, CURDATE()) as days_remaining
		FROM submissions s
		JOIN books b ON s.book_id = b.id
		LEFT JOIN authors a ON b.author_id = a.id
		LEFT JOIN users u ON a.user_id = u.id
		WHERE 1=1`+where.SQL()+" ORDER BY s.priority DESC, s.due_date ASC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to list submissions: %w", err)
	}
	return rows, page.Paginate(total), nil
}

// Assign sets the reviewer, due date and priority and marks the submission
// assigned.
func (r *Repository) Assign(ctx context.Context, id int64, a Assignment) error {
	var due any
	if a.DueDate != "" {
		due = a.DueDate
	}

	res, err := r.db.Execute(ctx,
		"UPDATE submissions SET assigned_to = ?, due_date = ?, priority = ?, status = 'assigned' WHERE id = ?",
		a.ReviewerID, due, a.Priority, id)
	if err != nil {
		return fmt.Errorf("failed to assign submission: %w", err)
	}
	if res.Affected() == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}
