// Package sales provides database operations for book sales.
//
// # Usage
//
//	repo := sales.NewRepository(db)
//	rows, page, err := repo.List(ctx, sales.ListFilter{Format: "ebook"}, database.NewPageRequest(1, 50))
package sales

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/unipress/publishing/internal/database"
)

// ListFilter narrows List and Summary. Dates are YYYY-MM-DD and inclusive.
type ListFilter struct {
	StartDate     string
	EndDate       string
	Format        string
	CustomerType  string
	PaymentStatus string
	BookID        int64
}

// Summary totals the sales in a date range.
type Summary struct {
	TotalTransactions int64   `json:"total_transactions"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalUnits        int64   `json:"total_units"`
}

// RecentSummary totals the sales of the last 30 days.
type RecentSummary struct {
	TotalOrders       int64   `json:"total_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
	PaidOrders        int64   `json:"paid_orders"`
	PaidRevenue       float64 `json:"paid_revenue"`
}

type Repository struct {
	db *database.Adapter
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

var amounts = message.NewPrinter(language.English)

// formatAmount renders an amount with thousands separators and two
// decimals, e.g. 1,234.50.
func formatAmount(v float64) string {
	return amounts.Sprintf("%.2f", v)
}

const listFrom = " FROM sales s JOIN books b ON s.book_id = b.id WHERE 1=1"

// List returns a page of sales, newest first, with the book title and a
// formatted_amount column.
func (r *Repository) List(ctx context.Context, f ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	var where database.Filter
	where.Add("DATE(s.sale_date) >= ?", f.StartDate)
	where.Add("DATE(s.sale_date) <= ?", f.EndDate)
	where.Add("s.format = ?", f.Format)
	where.Add("s.customer_type = ?", f.CustomerType)
	where.Add("s.payment_status = ?", f.PaymentStatus)
	where.Add("s.book_id = ?", f.BookID)

	total, err := r.db.ScalarInt(ctx, "total", "SELECT COUNT(*) as total"+listFrom+where.SQL(), where.Args()...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to count sales: %w", err)
	}

	args := append(where.Args(), page.Limit, page.Offset())
	rows, err := r.db.QueryRows(ctx,
		"SELECT s.*, b.title as book_title"+listFrom+where.SQL()+" ORDER BY s.sale_date DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to list sales: %w", err)
	}

	for _, row := range rows {
		row["formatted_amount"] = formatAmount(row.Float("total_amount"))
	}
	return rows, page.Paginate(total), nil
}

// Summary totals transactions, revenue and units. Only the date bounds of
// f apply.
func (r *Repository) Summary(ctx context.Context, f ListFilter) (Summary, error) {
	var where database.Filter
	where.Add("DATE(sale_date) >= ?", f.StartDate)
	where.Add("DATE(sale_date) <= ?", f.EndDate)

	row, err := r.db.QueryOne(ctx,
		"SELECT COUNT(*) as total_transactions, SUM(total_amount) as total_revenue, SUM(quantity) as total_units"+
			" FROM sales WHERE 1=1"+where.SQL(),
		where.Args()...)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to summarize sales: %w", err)
	}
	return Summary{
		TotalTransactions: row.Int("total_transactions"),
		TotalRevenue:      row.Float("total_revenue"),
		TotalUnits:        row.Int("total_units"),
	}, nil
}

// RecentSummary totals the sales of the last 30 days.
func (r *Repository) RecentSummary(ctx context.Context) (RecentSummary, error) {
	row, err := r.db.QueryOne(ctx, `
		SELECT COUNT(*) as total_orders,
		       SUM(total_amount) as total_revenue,
		       AVG(total_amount) as average_order_value,
		       SUM(CASE WHEN payment_status = 'paid' THEN 1 ELSE 0 END) as paid_orders,
		       SUM(CASE WHEN payment_status = 'paid' THEN total_amount ELSE 0 END) as paid_revenue
		FROM sales
		WHERE sale_date >= DATE_SUB(CURDATE(), INTERVAL 30 DAY)`)
	if err != nil {
		return RecentSummary{}, fmt.Errorf("failed to summarize recent sales: %w", err)
	}
	return RecentSummary{
		TotalOrders:       row.Int("total_orders"),
		TotalRevenue:      row.Float("total_revenue"),
		AverageOrderValue: row.Float("average_order_value"),
		PaidOrders:        row.Int("paid_orders"),
		PaidRevenue:       row.Float("paid_revenue"),
	}, nil
}
