// Package royalties provides database operations for royalty statements.
//
// # Usage
//
//	repo := royalties.NewRepository(db)
//	due, err := repo.Pending(ctx)
package royalties

import (
	"context"
	"fmt"

	"github.com/unipress/publishing/internal/database"
)

const (
	StatusPending    = "pending"
	StatusCalculated = "calculated"
	StatusPaid       = "paid"
)

// ListFilter narrows List. Period bounds are YYYY-MM-DD.
type ListFilter struct {
	Status      string
	PeriodStart string
	PeriodEnd   string
	AuthorID    int64
}

type Repository struct {
	db *database.Adapter
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

const listFrom = ` FROM royalties r
	LEFT JOIN books b ON r.book_id = b.id
	LEFT JOIN authors a ON r.author_id = a.id
	LEFT JOIN users u ON a.user_id = u.id
	WHERE 1=1`

// List returns a page of royalty statements, latest period first.
func (r *Repository) List(ctx context.Context, f ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	var where database.Filter
	where.Add("r.payment_status = ?", f.Status)
	where.Add("r.period_start >= ?", f.PeriodStart)
	where.Add("r.period_end <= ?", f.PeriodEnd)
	where.Add("r.author_id = ?", f.AuthorID)

	total, err := r.db.ScalarInt(ctx, "total", "SELECT COUNT(*) as total"+listFrom+where.SQL(), where.Args()...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to count royalties: %w", err)
	}

	args := append(where.Args(), page.Limit, page.Offset())
	rows, err := r.db.QueryRows(ctx,
		"SELECT r.*, b.title as book_title, u.full_name as author_name"+listFrom+where.SQL()+
			" ORDER BY r.period_end DESC, r.id DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to list royalties: %w", err)
	}
	return rows, page.Paginate(total), nil
}

// Pending returns the statements not yet paid, with the contract and author
// contact needed to settle them.
func (r *Repository) Pending(ctx context.Context) ([]database.Row, error) {
	rows, err := r.db.QueryRows(ctx, `SELECT r.*, c.contract_number, b.title as book_title,
		       u.full_name as author_name, u.email as author_email
		FROM royalties r
		LEFT JOIN contracts c ON r.contract_id = c.id
		LEFT JOIN books b ON r.book_id = b.id
		LEFT JOIN authors a ON r.author_id = a.id
		LEFT JOIN users u ON a.user_id = u.id
		WHERE r.payment_status IN (?, ?)
		ORDER BY r.period_end ASC`, StatusPending, StatusCalculated)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending royalties: %w", err)
	}
	return rows, nil
}
