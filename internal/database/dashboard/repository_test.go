package dashboard

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/database/dbtest"
	"github.com/unipress/publishing/internal/dialect"
)

func count(n int64) *sqlmock.Rows {
	return dbtest.Rows([]string{"count"}, []any{n})
}

func TestRepository_Stats_Postgres(t *testing.T) {
	db, mock := dbtest.New(t, dialect.Postgres)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT COUNT(*) as count FROM authors a JOIN users u ON a.user_id = u.id WHERE u.status = 'pending'").WillReturnRows(count(2))
	mock.ExpectQuery("SELECT COUNT(*) as count FROM authors a JOIN users u ON a.user_id = u.id WHERE u.status = 'active'").WillReturnRows(count(10))
	mock.ExpectQuery("SELECT COUNT(*) as count FROM books").WillReturnRows(count(30))
	mock.ExpectQuery("SELECT COUNT(*) as count FROM books WHERE status = 'published'").WillReturnRows(count(12))
	mock.ExpectQuery("SELECT COUNT(*) as count FROM submissions WHERE status = 'pending'").WillReturnRows(count(4))
	mock.ExpectQuery("SELECT COUNT(*) as count FROM training_registrations WHERE status = 'pending'").WillReturnRows(count(6))
	mock.ExpectQuery("SELECT COUNT(*) as count FROM contacts WHERE status = 'new'").WillReturnRows(count(1))
	mock.ExpectQuery("SELECT COUNT(*) as count FROM contracts WHERE status = 'draft' OR status = 'sent'").WillReturnRows(count(3))
	mock.ExpectQuery("SELECT COUNT(*) as count FROM inventory WHERE available <= reorder_level").WillReturnRows(count(0))

	mock.ExpectQuery("SELECT SUM(total_amount) as total FROM sales WHERE payment_status = 'paid' AND sale_date >= CURRENT_DATE - INTERVAL '30 day'").
		WillReturnRows(dbtest.Rows([]string{"total"}, []any{"15000.50"}))
	mock.ExpectQuery("SELECT SUM(total_amount) as revenue FROM sales WHERE payment_status = 'paid' AND EXTRACT(MONTH FROM sale_date) = EXTRACT(MONTH FROM CURRENT_DATE)").
		WillReturnRows(dbtest.Rows([]string{"revenue"}, []any{nil}))

	mock.ExpectQuery(`SELECT b.id, b.title, b.status, u.full_name as author, b.created_at FROM books b LEFT JOIN authors a ON b.author_id = a.id LEFT JOIN users u ON a.user_id = u.id ORDER BY b.created_at DESC LIMIT 5`).
		WillReturnRows(dbtest.Rows([]string{"id", "title"}, []any{int64(1), "Optics"}))
	mock.ExpectQuery(`SELECT s.id, b.title, s.submission_type, s.status, s.submission_date FROM submissions s JOIN books b ON s.book_id = b.id ORDER BY s.submission_date DESC LIMIT 5`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT EXTRACT(YEAR FROM sale_date) as year, EXTRACT(MONTH FROM sale_date) as month, SUM(total_amount) as revenue, COUNT(*) as transactions FROM sales WHERE sale_date >= CURRENT_DATE - INTERVAL '6 month' GROUP BY EXTRACT(YEAR FROM sale_date), EXTRACT(MONTH FROM sale_date) ORDER BY year DESC, month DESC LIMIT 6`).
		WillReturnRows(sqlmock.NewRows([]string{"year", "month", "revenue", "transactions"}))
	mock.ExpectQuery(`SELECT category, COUNT(*) as count, ROUND(COUNT(*) * 100.0 / (SELECT COUNT(*) FROM books), 1) as percentage FROM books WHERE category IS NOT NULL GROUP BY category ORDER BY count DESC LIMIT 8`).
		WillReturnRows(dbtest.Rows([]string{"category", "count", "percentage"}, []any{"Science", int64(12), "40.0"}))

	stats, err := NewRepository(db).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, AuthorStats{Pending: 2, Approved: 10, Total: 12}, stats.Stats.Authors)
	assert.Equal(t, BookStats{Total: 30, Published: 12, InProgress: 18}, stats.Stats.Books)
	assert.Equal(t, int64(3), stats.Stats.Contracts["pending"])
	assert.Equal(t, int64(0), stats.Stats.Inventory["low_stock"])
	assert.InDelta(t, 15000.50, stats.Stats.Sales.TotalLast30Days, 0.001)
	assert.Zero(t, stats.Stats.Sales.MonthlyRevenue)
	assert.Len(t, stats.Recent.Books, 1)
	assert.Len(t, stats.Charts.Categories, 1)
}

func TestRepository_Stats_Error(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	// No expectations: every query fails.
	_, err = NewRepository(database.New(sqlDB, database.Config{Engine: dialect.MySQL})).Stats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load dashboard statistics")
}
