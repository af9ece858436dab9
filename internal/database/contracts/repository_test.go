package contracts

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/database/dbtest"
	"github.com/unipress/publishing/internal/dialect"
)

func TestContractNumber(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^CONTRACT-\d{13}-\d{1,3}$`), contractNumber())
}

func TestRepository_Create(t *testing.T) {
	db, mock := dbtest.New(t, dialect.Postgres)
	repo := NewRepository(db)
	repo.newNumber = func() string { return "CONTRACT-1-1" }

	royalty := 12.5
	mock.ExpectQuery(`INSERT INTO contracts (
		book_id, author_id, contract_type, contract_number,
		royalty_percentage, advance_amount, start_date, end_date,
		rights_granted, territory, payment_schedule
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`).
		WithArgs(int64(2), int64(3), "standard", "CONTRACT-1-1", 12.5, nil, "2025-01-01", "2027-01-01", nil, "Worldwide", nil).
		WillReturnRows(dbtest.Rows([]string{"id"}, []any{int64(15)}))

	id, number, err := repo.Create(context.Background(), NewContract{
		BookID:            2,
		AuthorID:          3,
		RoyaltyPercentage: &royalty,
		StartDate:         "2025-01-01",
		EndDate:           "2027-01-01",
		Territory:         "Worldwide",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), id)
	assert.Equal(t, "CONTRACT-1-1", number)
}

func TestRepository_List(t *testing.T) {
	db, mock := dbtest.New(t, dialect.MySQL)
	mock.ExpectQuery(`SELECT c.*, b.title as book_title, u.full_name as author_name, u.email as author_email, u.phone as author_phone FROM contracts c JOIN books b ON c.book_id = b.id JOIN authors a ON c.author_id = a.id LEFT JOIN users u ON a.user_id = u.id WHERE 1=1 AND c.status = ? AND c.author_id = ? ORDER BY c.created_at DESC LIMIT ? OFFSET ?`).
		WithArgs("active", int64(3), 20, 20).
		WillReturnRows(dbtest.Rows([]string{"id", "book_title"}, []any{int64(1), "Optics"}))

	rows, err := NewRepository(db).List(context.Background(), ListFilter{Status: "active", AuthorID: 3}, database.NewPageRequest(2, 20))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Optics", rows[0].String("book_title"))
}

func TestRepository_ExpiringWithin(t *testing.T) {
	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("postgres", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.Postgres)
		mock.ExpectQuery(`SELECT c.id, c.contract_number, c.end_date, c.author_id, a.user_id, b.title as book_title,
		       (c.end_date::date - CURRENT_DATE) as days_left
		FROM contracts c
		JOIN authors a ON c.author_id = a.id
		LEFT JOIN books b ON c.book_id = b.id
		WHERE c.status = 'active' AND c.end_date IS NOT NULL
		  AND (c.end_date::date - CURRENT_DATE) BETWEEN 0 AND $1
		ORDER BY c.end_date ASC`).
			WithArgs(30).
			WillReturnRows(dbtest.Rows(
				[]string{"id", "contract_number", "end_date", "author_id", "user_id", "book_title", "days_left"},
				[]any{int64(4), "CONTRACT-9-9", end, int64(3), int64(8), "Optics", int64(10)},
			))

		expiring, err := NewRepository(db).ExpiringWithin(context.Background(), 30)
		require.NoError(t, err)
		require.Len(t, expiring, 1)
		assert.Equal(t, Expiring{
			ID:             4,
			ContractNumber: "CONTRACT-9-9",
			BookTitle:      "Optics",
			AuthorID:       3,
			UserID:         8,
			EndDate:        end,
			DaysLeft:       10,
		}, expiring[0])
	})

	t.Run("error is wrapped", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		mock.ExpectQuery(`SELECT c.id, c.contract_number, c.end_date, c.author_id, a.user_id, b.title as book_title, DATEDIFF(c.end_date, CURDATE()) as days_left FROM contracts c JOIN authors a ON c.author_id = a.id LEFT JOIN books b ON c.book_id = b.id WHERE c.status = 'active' AND c.end_date IS NOT NULL AND DATEDIFF(c.end_date, CURDATE()) BETWEEN 0 AND ? ORDER BY c.end_date ASC`).
			WithArgs(7).
			WillReturnError(assert.AnError)

		_, err := NewRepository(db).ExpiringWithin(context.Background(), 7)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
