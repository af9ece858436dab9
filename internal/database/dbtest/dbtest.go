// Package dbtest builds adapters over go-sqlmock for repository tests.
package dbtest

import (
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/dialect"
)

// New returns an adapter for engine whose statements must match the
// expectations exactly. Unmet expectations fail the test on cleanup.
func New(t *testing.T, engine dialect.Engine) (*database.Adapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return database.New(db, database.Config{Engine: engine}), mock
}

// Rows builds a sqlmock result set from column names and row values.
func Rows(columns []string, data ...[]any) *sqlmock.Rows {
	rows := sqlmock.NewRows(columns)
	for _, v := range data {
		values := make([]driver.Value, len(v))
		for i := range v {
			values[i] = v[i]
		}
		rows.AddRow(values...)
	}
	return rows
}
