package authors

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipress/publishing/internal/database/dbtest"
	"github.com/unipress/publishing/internal/dialect"
)

func strptr(s string) *string { return &s }

func TestRepository_Profile(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		mock.ExpectQuery(profileQuery).WithArgs(int64(7)).
			WillReturnRows(dbtest.Rows([]string{"user_id", "full_name", "author_id"}, []any{int64(7), "Dr. Ada Obi", int64(3)}))

		row, err := NewRepository(db).Profile(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(3), row.Int("author_id"))
	})

	t.Run("missing account", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		mock.ExpectQuery(profileQuery).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

		_, err := NewRepository(db).Profile(context.Background(), 7)
		assert.ErrorIs(t, err, ErrAuthorNotFound)
	})
}

func TestRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("updates only given fields on existing columns", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		mock.ExpectQuery("SELECT id FROM authors WHERE user_id = ?").WithArgs(int64(7)).
			WillReturnRows(dbtest.Rows([]string{"id"}, []any{int64(3)}))
		mock.ExpectQuery("SELECT id FROM users WHERE email = ? AND id != ?").WithArgs("ada@uni.edu", int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery("SHOW COLUMNS FROM `users`").
			WillReturnRows(fields("id", "username", "email", "full_name", "phone"))
		mock.ExpectQuery("SHOW COLUMNS FROM `authors`").
			WillReturnRows(fields("id", "user_id", "faculty", "biography"))
		mock.ExpectExec("UPDATE users SET email = ?, username = ?, phone = ? WHERE id = ?").
			WithArgs("ada@uni.edu", "ada@uni.edu", nil, int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE authors SET faculty = ? WHERE id = ?").
			WithArgs("Engineering", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(profileQuery).WithArgs(int64(7)).
			WillReturnRows(dbtest.Rows([]string{"user_id", "email", "faculty"}, []any{int64(7), "ada@uni.edu", "Engineering"}))

		row, err := NewRepository(db).UpdateProfile(ctx, 7, ProfileUpdate{
			FullName: strptr("  "),
			Email:    strptr(" ada@uni.edu "),
			Phone:    strptr(""),
			Faculty:  strptr("Engineering"),
			OrcidID:  strptr("0000-0001"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Engineering", row.String("faculty"))
	})

	t.Run("nothing to write skips the updates", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.Postgres)
		columnsQuery := `SELECT column_name
			FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1
			ORDER BY ordinal_position`
		mock.ExpectQuery("SELECT id FROM authors WHERE user_id = $1").WithArgs(int64(7)).
			WillReturnRows(dbtest.Rows([]string{"id"}, []any{int64(3)}))
		mock.ExpectQuery(columnsQuery).WithArgs("users").
			WillReturnRows(dbtest.Rows([]string{"column_name"}, []any{"id"}))
		mock.ExpectQuery(columnsQuery).WithArgs("authors").
			WillReturnRows(dbtest.Rows([]string{"column_name"}, []any{"id"}))
		mock.ExpectQuery(`SELECT u.id as user_id, u.full_name, u.email, u.phone, u.profile_image, u.status as user_status,
			a.id as author_id, a.staff_id, a.faculty, a.department, a.qualifications,
			a.biography, a.areas_of_expertise, a.orcid_id, a.google_scholar_id, a.linkedin_url, a.status as author_status
			FROM users u LEFT JOIN authors a ON a.user_id = u.id WHERE u.id = $1`).WithArgs(int64(7)).
			WillReturnRows(dbtest.Rows([]string{"user_id"}, []any{int64(7)}))

		_, err := NewRepository(db).UpdateProfile(ctx, 7, ProfileUpdate{Biography: strptr("Hydrologist")})
		require.NoError(t, err)
	})

	t.Run("email used by another account", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		mock.ExpectQuery("SELECT id FROM authors WHERE user_id = ?").WithArgs(int64(7)).
			WillReturnRows(dbtest.Rows([]string{"id"}, []any{int64(3)}))
		mock.ExpectQuery("SELECT id FROM users WHERE email = ? AND id != ?").WithArgs("taken@uni.edu", int64(7)).
			WillReturnRows(dbtest.Rows([]string{"id"}, []any{int64(9)}))

		_, err := NewRepository(db).UpdateProfile(ctx, 7, ProfileUpdate{Email: strptr("taken@uni.edu")})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("account without author profile", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		mock.ExpectQuery("SELECT id FROM authors WHERE user_id = ?").WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewRepository(db).UpdateProfile(ctx, 7, ProfileUpdate{})
		assert.ErrorIs(t, err, ErrAuthorNotFound)
	})
}

func TestRepository_Dashboard(t *testing.T) {
	db, mock := dbtest.New(t, dialect.MySQL)

	mock.ExpectQuery("SELECT id FROM authors WHERE user_id = ?").WithArgs(int64(7)).
		WillReturnRows(dbtest.Rows([]string{"id"}, []any{int64(3)}))

	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT b.*,
		(SELECT COUNT(*) FROM reviews rv JOIN submissions s ON rv.submission_id = s.id WHERE s.book_id = b.id) as review_count,
		(SELECT COUNT(*) FROM production p WHERE p.book_id = b.id AND p.status = 'completed') as progress_count,
		(SELECT MAX(p.completed_date) FROM production p WHERE p.book_id = b.id) as last_progress_date
		FROM books b WHERE b.author_id = ? ORDER BY b.updated_at DESC`).
		WithArgs(int64(3)).
		WillReturnRows(dbtest.Rows([]string{"id", "title", "review_count"}, []any{int64(11), "Coastal Erosion", int64(2)}))
	mock.ExpectQuery(`SELECT COUNT(*) as total_books,
		SUM(CASE WHEN status = 'published' THEN 1 ELSE 0 END) as published_books,
		SUM(CASE WHEN status = 'in_production' THEN 1 ELSE 0 END) as in_production_books,
		SUM(CASE WHEN status = 'under_review' THEN 1 ELSE 0 END) as under_review_books,
		SUM(CASE WHEN status = 'revisions_requested' THEN 1 ELSE 0 END) as revision_books
		FROM books WHERE author_id = ?`).
		WithArgs(int64(3)).
		WillReturnRows(dbtest.Rows(
			[]string{"total_books", "published_books", "in_production_books", "under_review_books", "revision_books"},
			[]any{int64(1), "0", "1", "0", "0"}))
	mock.ExpectQuery(`SELECT rv.id, rv.rating, rv.recommendation, rv.status, rv.comments, rv.completed_date,
		b.title as book_title, u.full_name as reviewer_name
		FROM reviews rv JOIN submissions s ON rv.submission_id = s.id JOIN books b ON s.book_id = b.id
		LEFT JOIN users u ON rv.reviewer_id = u.id
		WHERE b.author_id = ? ORDER BY rv.assigned_date DESC LIMIT 5`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT SUM(royalty_amount) as total_royalties,
		SUM(CASE WHEN payment_status = 'paid' THEN royalty_amount ELSE 0 END) as paid_royalties,
		SUM(CASE WHEN payment_status = 'pending' THEN royalty_amount ELSE 0 END) as pending_royalties
		FROM royalties WHERE author_id = ?`).
		WithArgs(int64(3)).
		WillReturnRows(dbtest.Rows([]string{"total_royalties", "paid_royalties", "pending_royalties"},
			[]any{"300.00", "200.00", "100.00"}))

	d, err := NewRepository(db).Dashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, d.Books, 1)
	assert.Equal(t, BookCounts{TotalBooks: 1, InProductionBooks: 1}, d.Stats)
	assert.Empty(t, d.RecentReviews)
	assert.Equal(t, RoyaltyTotals{TotalRoyalties: 300, PaidRoyalties: 200, PendingRoyalties: 100}, d.Royalties)
}

func TestRepository_BookForAuthor(t *testing.T) {
	ownership := "SELECT b.* FROM books b JOIN authors a ON b.author_id = a.id WHERE a.user_id = ? AND b.id = ?"

	t.Run("owned book with history", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		mock.ExpectQuery(ownership).WithArgs(int64(7), int64(11)).
			WillReturnRows(dbtest.Rows([]string{"id", "title"}, []any{int64(11), "Coastal Erosion"}))
		mock.ExpectQuery("SELECT id, stage, status, start_date, due_date, completed_date FROM production WHERE book_id = ? ORDER BY start_date ASC, id ASC").
			WithArgs(int64(11)).
			WillReturnRows(dbtest.Rows([]string{"id", "stage"}, []any{int64(1), "editing"}))
		mock.ExpectQuery(`SELECT rv.id, rv.rating, rv.recommendation, rv.status, rv.comments, rv.completed_date
			FROM reviews rv JOIN submissions s ON rv.submission_id = s.id
			WHERE s.book_id = ? ORDER BY rv.assigned_date DESC`).
			WithArgs(int64(11)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(`SELECT id, format, quantity, unit_price, total_amount, customer_type, payment_status, sale_date
			FROM sales WHERE book_id = ? ORDER BY sale_date DESC LIMIT 10`).
			WithArgs(int64(11)).
			WillReturnRows(dbtest.Rows([]string{"id", "total_amount"}, []any{int64(4), "45.00"}))
		mock.ExpectQuery("SELECT * FROM royalties WHERE book_id = ? ORDER BY period_end DESC").
			WithArgs(int64(11)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		ab, err := NewRepository(db).BookForAuthor(context.Background(), 7, 11)
		require.NoError(t, err)
		assert.Equal(t, "Coastal Erosion", ab.Book.String("title"))
		assert.Len(t, ab.Progress, 1)
		assert.Empty(t, ab.Reviews)
		assert.Len(t, ab.Sales, 1)
		assert.Empty(t, ab.Royalties)
	})

	t.Run("someone else's book", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		mock.ExpectQuery(ownership).WithArgs(int64(7), int64(12)).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewRepository(db).BookForAuthor(context.Background(), 7, 12)
		assert.ErrorIs(t, err, ErrBookNotOwned)
	})
}
