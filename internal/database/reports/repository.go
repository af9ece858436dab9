// Package reports builds the financial report from sales and royalties.
//
// Monthly revenue is grouped by YEAR and MONTH and labelled in Go, so the
// same query runs on MySQL and Postgres without DATE_FORMAT.
package reports

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/database/royalties"
)

// TopBooksLimit caps Financial.TopBooks.
const TopBooksLimit = 10

// FinancialFilter selects the report period. Month applies to the current
// year and takes precedence over Year for the top books.
type FinancialFilter struct {
	Year  int
	Month int
}

type Financial struct {
	MonthlyRevenue   []database.Row `json:"monthly_revenue"`
	TopBooks         []database.Row `json:"top_books"`
	PendingRoyalties []database.Row `json:"pending_royalties"`
}

type Repository struct {
	db        *database.Adapter
	royalties *royalties.Repository
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db, royalties: royalties.NewRepository(db)}
}

// Financial runs the report queries concurrently.
func (r *Repository) Financial(ctx context.Context, f FinancialFilter) (*Financial, error) {
	var report Financial

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.monthlyRevenue(gctx, f.Year)
		report.MonthlyRevenue = rows
		return err
	})
	g.Go(func() error {
		rows, err := r.topBooks(gctx, f)
		report.TopBooks = rows
		return err
	})
	g.Go(func() error {
		rows, err := r.royalties.Pending(gctx)
		report.PendingRoyalties = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build financial report: %w", err)
	}
	return &report, nil
}

func (r *Repository) monthlyRevenue(ctx context.Context, year int) ([]database.Row, error) {
	var where database.Filter
	where.Add("YEAR(sale_date) = ?", year)

	rows, err := r.db.QueryRows(ctx, `SELECT YEAR(sale_date) as year, MONTH(sale_date) as month,
		       SUM(total_amount) as revenue, COUNT(*) as transactions, SUM(quantity) as units_sold
		FROM sales
		WHERE payment_status = 'paid'`+where.SQL()+`
		GROUP BY YEAR(sale_date), MONTH(sale_date)
		ORDER BY year DESC, month DESC`,
		where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly revenue: %w", err)
	}
	for _, row := range rows {
		row["period"] = fmt.Sprintf("%04d-%02d", row.Int("year"), row.Int("month"))
	}
	return rows, nil
}

func (r *Repository) topBooks(ctx context.Context, f FinancialFilter) ([]database.Row, error) {
	var where database.Filter
	if f.Month != 0 {
		where.Add("MONTH(s.sale_date) = ? AND YEAR(s.sale_date) = YEAR(CURDATE())", f.Month)
	} else {
		where.Add("YEAR(s.sale_date) = ?", f.Year)
	}

	rows, err := r.db.QueryRows(ctx, `SELECT b.id, b.title, b.isbn, u.full_name as author,
		       SUM(s.quantity) as total_sold, SUM(s.total_amount) as total_revenue,
		       COUNT(DISTINCT s.id) as transactions
		FROM sales s
		JOIN books b ON s.book_id = b.id
		LEFT JOIN authors a ON b.author_id = a.id
		LEFT JOIN users u ON a.user_id = u.id
		WHERE s.payment_status = 'paid'`+where.SQL()+`
		GROUP BY b.id, b.title, b.isbn, u.full_name
		ORDER BY total_revenue DESC
		LIMIT ?`,
		append(where.Args(), TopBooksLimit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load top books: %w", err)
	}
	return rows, nil
}
