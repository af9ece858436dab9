package contacts

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipress/publishing/internal/database/dbtest"
	"github.com/unipress/publishing/internal/dialect"
)

func TestRepository_Create(t *testing.T) {
	msg := Message{Name: "Kemi", Email: "kemi@example.com", Subject: "Manuscript", Message: "Hello"}

	t.Run("defaults the category", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.MySQL)
		mock.ExpectExec("INSERT INTO contacts (name, email, phone, subject, message, category, status) VALUES (?, ?, ?, ?, ?, ?, 'new')").
			WithArgs("Kemi", "kemi@example.com", nil, "Manuscript", "Hello", "general").
			WillReturnResult(sqlmock.NewResult(3, 1))

		id, err := NewRepository(db).Create(context.Background(), msg)
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
	})

	t.Run("postgres insert without returned row has no id", func(t *testing.T) {
		db, mock := dbtest.New(t, dialect.Postgres)
		m := msg
		m.Category = "sales"
		m.Phone = "0801"
		mock.ExpectQuery("INSERT INTO contacts (name, email, phone, subject, message, category, status) VALUES ($1, $2, $3, $4, $5, $6, 'new') RETURNING id").
			WithArgs("Kemi", "kemi@example.com", "0801", "Manuscript", "Hello", "sales").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		id, err := NewRepository(db).Create(context.Background(), m)
		require.NoError(t, err)
		assert.Zero(t, id)
	})
}

func TestRepository_CountNew(t *testing.T) {
	db, mock := dbtest.New(t, dialect.MySQL)
	mock.ExpectQuery("SELECT COUNT(*) as count FROM contacts WHERE status = 'new'").
		WillReturnRows(dbtest.Rows([]string{"count"}, []any{int64(5)}))

	count, err := NewRepository(db).CountNew(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}
