package books

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

func TestRepository_List_TranslatesYearFilter(t *testing.T) {
	db, mock := dbtest.New(t, dialect.Postgres)

	from := " FROM books b LEFT JOIN authors a ON b.author_id = a.id LEFT JOIN users u ON a.user_id = u.id WHERE 1=1" +
		" AND b.status = $1 AND EXTRACT(YEAR FROM b.created_at) = $2"

	mock.ExpectQuery("SELECT COUNT(*) as total" + from).
		WithArgs("published", 2024).
		WillReturnRows(dbtest.Rows([]string{"total"}, []any{int64(2)}))
	mock.ExpectQuery("SELECT b.*, u.full_name as author_name, u.email as author_email" + from +
		" ORDER BY b.created_at DESC LIMIT $3 OFFSET $4").
		WithArgs("published", 2024, 10, 0).
		WillReturnRows(dbtest.Rows([]string{"id", "title"},
			[]any{int64(1), "Tropical Soils"},
			[]any{int64(2), "Lagos Lagoon"},
		))

	for _, id := range []int64{1, 2} {
		mock.ExpectQuery("SELECT format, quantity, available FROM inventory WHERE book_id = $1").
			WithArgs(id).
			WillReturnRows(dbtest.Rows([]string{"format", "quantity", "available"}, []any{"paperback", int64(100), int64(80)}))
		mock.ExpectQuery("SELECT COUNT(*) as salesCount FROM sales WHERE book_id = $1").
			WithArgs(id).
			WillReturnRows(dbtest.Rows([]string{"salesCount"}, []any{int64(3)}))
	}

	rows, page, err := NewRepository(db).List(context.Background(),
		ListFilter{Status: "published", Year: 2024}, database.NewPageRequest(1, 10))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), rows[1]["salesCount"])
	assert.Len(t, rows[0]["inventory"], 1)
	assert.Equal(t, database.Pagination{Total: 2, Page: 1, Limit: 10, Pages: 1}, page)
}

func TestRepository_Published(t *testing.T) {
	db, mock := dbtest.New(t, dialect.MySQL)
	mock.ExpectQuery(`SELECT b.*, u.full_name as author_name FROM books b LEFT JOIN authors a ON b.author_id = a.id LEFT JOIN users u ON a.user_id = u.id WHERE b.status = 'published' ORDER BY COALESCE(b.publication_date, DATE(b.created_at)) DESC LIMIT 20`).
		WillReturnRows(dbtest.Rows([]string{"id", "title", "author_name"}, []any{int64(1), "Tropical Soils", "Ada"}))

	rows, err := NewRepository(db).Published(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ada", rows[0].String("author_name"))
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		mock.ExpectQuery(`SELECT b.*, u.full_name as author_name, u.email as author_email, a.faculty as author_faculty, a.department as author_department FROM books b LEFT JOIN authors a ON b.author_id = a.id LEFT JOIN users u ON a.user_id = u.id WHERE b.id = ?`).
			WithArgs(int64(77)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewRepository(db).GetByID(ctx, 77)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("loads every related list", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		mock.MatchExpectationsInOrder(false)
		mock.ExpectQuery(`SELECT b.*, u.full_name as author_name, u.email as author_email, a.faculty as author_faculty, a.department as author_department FROM books b LEFT JOIN authors a ON b.author_id = a.id LEFT JOIN users u ON a.user_id = u.id WHERE b.id = ?`).
			WithArgs(int64(1)).
			WillReturnRows(dbtest.Rows([]string{"id", "title"}, []any{int64(1), "Tropical Soils"}))
		for _, q := range []string{
			"SELECT * FROM submissions WHERE book_id = ? ORDER BY submission_date DESC",
			"SELECT * FROM contracts WHERE book_id = ? ORDER BY created_at DESC",
			"SELECT * FROM production WHERE book_id = ? ORDER BY created_at DESC",
			"SELECT r.*, u.full_name as reviewer_name FROM reviews r LEFT JOIN users u ON r.reviewer_id = u.id WHERE r.submission_id IN (SELECT id FROM submissions WHERE book_id = ?) ORDER BY r.completed_date DESC",
			"SELECT * FROM inventory WHERE book_id = ?",
			"SELECT * FROM sales WHERE book_id = ? ORDER BY sale_date DESC LIMIT 50",
		} {
			mock.ExpectQuery(q).WithArgs(int64(1)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
		}

		book, err := NewRepository(db).GetByID(ctx, 1)
		require.NoError(t, err)
		for _, key := range []string{"submissions", "contracts", "production", "reviews", "inventory", "sales"} {
			assert.Contains(t, book, key)
		}
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("nil notes keep existing notes", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.Postgres)
		mock.ExpectExec("UPDATE books SET status = $1, editor_notes = COALESCE($2, editor_notes) WHERE id = $3").
			WithArgs("accepted", nil, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewRepository(db).UpdateStatus(ctx, 5, "accepted", nil))
	})

	t.Run("unknown book", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		note := "typeset next week"
		mock.ExpectExec("UPDATE books SET status = ?, editor_notes = COALESCE(?, editor_notes) WHERE id = ?").
			WithArgs("in_production", note, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, NewRepository(db).UpdateStatus(ctx, 5, "in_production", &note), ErrBookNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		db, _ := dbtest.New(t, dialect.MySQL)
		assert.ErrorIs(t, NewRepository(db).UpdateStatus(ctx, 5, "lost", nil), ErrInvalidStatus)
	})
}
