// Package inventory provides database operations for stock levels.
package inventory

import (
	"context"
	"fmt"

	"github.com/unipress/publishing/internal/database"
)

// ListFilter narrows List. LowStock keeps items at or below their reorder
// level.
type ListFilter struct {
	LowStock bool
	Category string
	Format   string
}

// Summary totals stock across all items. Values are at unit cost, revenue at
// selling price.
type Summary struct {
	TotalItems       int64   `json:"total_items"`
	TotalQuantity    int64   `json:"total_quantity"`
	TotalAvailable   int64   `json:"total_available"`
	LowStockItems    int64   `json:"low_stock_items"`
	TotalValue       float64 `json:"total_value"`
	PotentialRevenue float64 `json:"potential_revenue"`
}

type Repository struct {
	db *database.Adapter
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

const listFrom = ` FROM inventory i
	JOIN books b ON i.book_id = b.id
	LEFT JOIN authors a ON b.author_id = a.id
	LEFT JOIN users u ON a.user_id = u.id
	WHERE 1=1`

// List returns a page of inventory items with their book, author and a
// stock_status of out_of_stock, low_stock or in_stock.
func (r *Repository) List(ctx context.Context, f ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	var where database.Filter
	where.When(f.LowStock, "i.available <= i.reorder_level")
	where.Add("b.category = ?", f.Category)
	where.Add("i.format = ?", f.Format)

	total, err := r.db.ScalarInt(ctx, "total", "SELECT COUNT(*) as total"+listFrom+where.SQL(), where.Args()...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to count inventory: %w", err)
	}

	args := append(where.Args(), page.Limit, page.Offset())
	rows, err := r.db.QueryRows(ctx, `SELECT i.*, b.title as book_title, b.isbn, b.category, u.full_name as author_name,
		       CASE
		           WHEN i.available <= 0 THEN 'out_of_stock'
		           WHEN i.available <= i.reorder_level THEN 'low_stock'
		           ELSE 'in_stock'
		       END as stock_status`+listFrom+where.SQL()+" ORDER BY b.title ASC, i.format ASC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to list inventory: %w", err)
	}
	return rows, page.Paginate(total), nil
}

// Summary totals quantities and stock value.
func (r *Repository) Summary(ctx context.Context) (Summary, error) {
	row, err := r.db.QueryOne(ctx, `SELECT COUNT(*) as total_items,
		       SUM(quantity) as total_quantity,
		       SUM(available) as total_available,
		       SUM(CASE WHEN available <= reorder_level THEN 1 ELSE 0 END) as low_stock_items,
		       SUM(quantity * unit_cost) as total_value,
		       SUM(available * selling_price) as potential_revenue
		FROM inventory`)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to summarize inventory: %w", err)
	}
	return Summary{
		TotalItems:       row.Int("total_items"),
		TotalQuantity:    row.Int("total_quantity"),
		TotalAvailable:   row.Int("total_available"),
		LowStockItems:    row.Int("low_stock_items"),
		TotalValue:       row.Float("total_value"),
		PotentialRevenue: row.Float("potential_revenue"),
	}, nil
}
