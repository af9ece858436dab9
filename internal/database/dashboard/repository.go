// Package dashboard computes the admin dashboard aggregates.
package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/unipress/publishing/internal/database"
)

type AuthorStats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Total    int64 `json:"total"`
}

type BookStats struct {
	Total      int64 `json:"total"`
	Published  int64 `json:"published"`
	InProgress int64 `json:"in_progress"`
}

type SalesStats struct {
	TotalLast30Days float64 `json:"total_last_30_days"`
	MonthlyRevenue  float64 `json:"monthly_revenue"`
}

// Counters holds the headline numbers of the dashboard.
type Counters struct {
	Authors     AuthorStats      `json:"authors"`
	Books       BookStats        `json:"books"`
	Submissions map[string]int64 `json:"submissions"`
	Training    map[string]int64 `json:"training"`
	Contacts    map[string]int64 `json:"contacts"`
	Contracts   map[string]int64 `json:"contracts"`
	Sales       SalesStats       `json:"sales"`
	Inventory   map[string]int64 `json:"inventory"`
}

type Recent struct {
	Books       []database.Row `json:"books"`
	Submissions []database.Row `json:"submissions"`
}

type Charts struct {
	MonthlySales []database.Row `json:"monthly_sales"`
	Categories   []database.Row `json:"categories"`
}

// Stats is the full dashboard payload.
type Stats struct {
	Stats  Counters `json:"stats"`
	Recent Recent   `json:"recent"`
	Charts Charts   `json:"charts"`
}

type Repository struct {
	db *database.Adapter
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

type counter struct {
	dst    *int64
	column string
	query  string
}

type sum struct {
	dst    *float64
	column string
	query  string
}

type list struct {
	dst   *[]database.Row
	query string
}

// Stats runs the dashboard queries concurrently and assembles the result.
// The first failing query cancels the rest.
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	var (
		pendingAuthors, approvedAuthors, totalBooks, publishedBooks int64
		pendingSubmissions, pendingTraining, newContacts           int64
		pendingContracts, lowStock                                 int64
		s                                                          Stats
	)

	counters := []counter{
		{&pendingAuthors, "count", "SELECT COUNT(*) as count FROM authors a JOIN users u ON a.user_id = u.id WHERE u.status = 'pending'"},
		{&approvedAuthors, "count", "SELECT COUNT(*) as count FROM authors a JOIN users u ON a.user_id = u.id WHERE u.status = 'active'"},
		{&totalBooks, "count", "SELECT COUNT(*) as count FROM books"},
		{&publishedBooks, "count", "SELECT COUNT(*) as count FROM books WHERE status = 'published'"},
		{&pendingSubmissions, "count", "SELECT COUNT(*) as count FROM submissions WHERE status = 'pending'"},
		{&pendingTraining, "count", "SELECT COUNT(*) as count FROM training_registrations WHERE status = 'pending'"},
		{&newContacts, "count", "SELECT COUNT(*) as count FROM contacts WHERE status = 'new'"},
		{&pendingContracts, "count", "SELECT COUNT(*) as count FROM contracts WHERE status = 'draft' OR status = 'sent'"},
		{&lowStock, "count", "SELECT COUNT(*) as count FROM inventory WHERE available <= reorder_level"},
	}
	sums := []sum{
		{&s.Stats.Sales.TotalLast30Days, "total",
			"SELECT SUM(total_amount) as total FROM sales WHERE payment_status = 'paid' AND sale_date >= DATE_SUB(CURDATE(), INTERVAL 30 DAY)"},
		{&s.Stats.Sales.MonthlyRevenue, "revenue",
			"SELECT SUM(total_amount) as revenue FROM sales WHERE payment_status = 'paid' AND MONTH(sale_date) = MONTH(CURDATE())"},
	}
	lists := []list{
		{&s.Recent.Books, `SELECT b.id, b.title, b.status, u.full_name as author, b.created_at
			FROM books b LEFT JOIN authors a ON b.author_id = a.id LEFT JOIN users u ON a.user_id = u.id
			ORDER BY b.created_at DESC LIMIT 5`},
		{&s.Recent.Submissions, `SELECT s.id, b.title, s.submission_type, s.status, s.submission_date
			FROM submissions s JOIN books b ON s.book_id = b.id
			ORDER BY s.submission_date DESC LIMIT 5`},
		{&s.Charts.MonthlySales, `SELECT YEAR(sale_date) as year, MONTH(sale_date) as month,
			       SUM(total_amount) as revenue, COUNT(*) as transactions
			FROM sales
			WHERE sale_date >= DATE_SUB(CURDATE(), INTERVAL 6 MONTH)
			GROUP BY YEAR(sale_date), MONTH(sale_date)
			ORDER BY year DESC, month DESC
			LIMIT 6`},
		{&s.Charts.Categories, `SELECT category, COUNT(*) as count,
			       ROUND(COUNT(*) * 100.0 / (SELECT COUNT(*) FROM books), 1) as percentage
			FROM books
			WHERE category IS NOT NULL
			GROUP BY category
			ORDER BY count DESC
			LIMIT 8`},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counters {
		g.Go(func() error {
			n, err := r.db.ScalarInt(gctx, c.column, c.query)
			*c.dst = n
			return err
		})
	}
	for _, q := range sums {
		g.Go(func() error {
			v, err := r.db.ScalarFloat(gctx, q.column, q.query)
			*q.dst = v
			return err
		})
	}
	for _, l := range lists {
		g.Go(func() error {
			rows, err := r.db.QueryRows(gctx, l.query)
			*l.dst = rows
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard statistics: %w", err)
	}

	s.Stats.Authors = AuthorStats{
		Pending:  pendingAuthors,
		Approved: approvedAuthors,
		Total:    pendingAuthors + approvedAuthors,
	}
	s.Stats.Books = BookStats{
		Total:      totalBooks,
		Published:  publishedBooks,
		InProgress: totalBooks - publishedBooks,
	}
	s.Stats.Submissions = map[string]int64{"pending": pendingSubmissions}
	s.Stats.Training = map[string]int64{"pending": pendingTraining}
	s.Stats.Contacts = map[string]int64{"new": newContacts}
	s.Stats.Contracts = map[string]int64{"pending": pendingContracts}
	s.Stats.Inventory = map[string]int64{"low_stock": lowStock}

	return &s, nil
}
