package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipress/publishing/internal/dialect"
)

func newMockAdapter(t *testing.T, engine dialect.Engine) (*Adapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, Config{Engine: engine}), mock
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := Open(Config{Engine: dialect.Postgres})
	assert.ErrorIs(t, err, ErrMissingDSN)
}

func TestNew_DefaultsToMySQL(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a := New(db, Config{})
	assert.Equal(t, dialect.MySQL, a.Engine())
	assert.Same(t, db, a.DB())
	assert.Equal(t, "id", a.Translator().PrimaryKey())
}

func TestAdapter_Execute_Postgres(t *testing.T) {
	ctx := context.Background()

	t.Run("select is translated and rows returned unchanged", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		mock.ExpectQuery("SELECT COUNT(*) as count FROM authors WHERE status = $1").
			WithArgs("pending").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

		res, err := a.Execute(ctx, "SELECT COUNT(*) as count FROM authors WHERE status = ?", "pending")
		require.NoError(t, err)

		assert.Equal(t, []Row{{"count": int64(3)}}, res.Rows)
		assert.Nil(t, res.Meta)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert gains returning clause and reports generated id", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		mock.ExpectQuery("INSERT INTO users (email) VALUES ($1) RETURNING id").
			WithArgs("a@b.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

		res, err := a.Execute(ctx, "INSERT INTO users (email) VALUES (?)", "a@b.com")
		require.NoError(t, err)

		require.NotNil(t, res.Meta)
		require.NotNil(t, res.Meta.InsertID)
		assert.Equal(t, int64(42), *res.Meta.InsertID)
		assert.Equal(t, int64(42), res.InsertID())
		assert.Equal(t, int64(1), res.Meta.AffectedRows)
		assert.Equal(t, []Row{{"id": int64(42)}}, res.Meta.Rows)
		assert.Nil(t, res.Rows)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert that returns nothing has nil id", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		mock.ExpectQuery("INSERT INTO tags (name) VALUES ($1) ON CONFLICT DO NOTHING RETURNING id").
			WithArgs("go").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		res, err := a.Execute(ctx, "INSERT INTO tags (name) VALUES (?) ON CONFLICT DO NOTHING", "go")
		require.NoError(t, err)

		assert.Nil(t, res.Meta.InsertID)
		assert.Equal(t, int64(0), res.Affected())
		assert.Empty(t, res.Meta.Rows)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert with existing returning clause is not duplicated", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		mock.ExpectQuery("INSERT INTO users (email) VALUES ($1) RETURNING id, email").
			WithArgs("a@b.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(int64(5), "a@b.com"))

		res, err := a.Execute(ctx, "INSERT INTO users (email) VALUES (?) RETURNING id, email", "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.InsertID())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update reports affected rows under both names", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		mock.ExpectExec("UPDATE users SET status = $1 WHERE id = $2").
			WithArgs("active", 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		res, err := a.Execute(ctx, "UPDATE users SET status = ? WHERE id = ?", "active", 7)
		require.NoError(t, err)

		require.NotNil(t, res.Meta)
		assert.Equal(t, int64(1), res.Meta.AffectedRows)
		assert.Equal(t, int64(1), res.Meta.RowCount)
		assert.NotNil(t, res.Meta.Rows)
		assert.Empty(t, res.Meta.Rows)
		assert.Nil(t, res.Meta.InsertID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("date functions are rewritten", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		mock.ExpectQuery("SELECT COALESCE(SUM(total_amount), 0) as total FROM sales WHERE sale_date >= CURRENT_DATE - INTERVAL '30 day'").
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("1250.50"))

		total, err := a.ScalarFloat(ctx, "total",
			"SELECT COALESCE(SUM(total_amount), 0) as total FROM sales WHERE sale_date >= DATE_SUB(CURDATE(), INTERVAL 30 DAY)")
		require.NoError(t, err)
		assert.InDelta(t, 1250.50, total, 0.001)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("engine errors pass through unchanged", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		mock.ExpectQuery("SELECT * FROM missing WHERE id = $1").
			WithArgs(1).
			WillReturnError(assert.AnError)

		res, err := a.Execute(ctx, "SELECT * FROM missing WHERE id = ?", 1)
		assert.Nil(t, res)
		assert.Equal(t, assert.AnError, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unsupported function is executed verbatim and warned once", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		query := "SELECT DATE_FORMAT(sale_date, '%Y-%m') as month FROM sales"
		for i := 0; i < 2; i++ {
			mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"month"}))
		}

		for i := 0; i < 2; i++ {
			_, err := a.Execute(ctx, query)
			require.NoError(t, err)
		}

		_, warned := a.warned.Load("DATE_FORMAT")
		assert.True(t, warned)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("warnings are keyed by function names, not templates", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		templates := []string{
			"SELECT IFNULL(price, 0) as price, DATE_FORMAT(sale_date, '%Y') as y FROM sales WHERE book_id = 1",
			"SELECT DATE_FORMAT(sale_date, '%Y') as y, IFNULL(price, 0) as price FROM sales WHERE book_id = 2",
			"SELECT DATE_FORMAT(created_at, '%Y') as y FROM books",
		}
		for _, q := range templates {
			mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"y"}))
		}

		for _, q := range templates {
			_, err := a.Execute(ctx, q)
			require.NoError(t, err)
		}

		var keys []string
		a.warned.Range(func(k, _ any) bool {
			keys = append(keys, k.(string))
			return true
		})
		assert.ElementsMatch(t, []string{"DATE_FORMAT,IFNULL", "DATE_FORMAT"}, keys)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("explain returns the plan rows", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		mock.ExpectQuery("EXPLAIN SELECT * FROM books WHERE id = $1").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"QUERY PLAN"}).AddRow("Index Scan using books_pkey on books"))

		res, err := a.Execute(ctx, "EXPLAIN SELECT * FROM books WHERE id = ?", 1)
		require.NoError(t, err)

		assert.Nil(t, res.Rows)
		require.NotNil(t, res.Meta)
		assert.Equal(t, []Row{{"QUERY PLAN": "Index Scan using books_pkey on books"}}, res.Meta.Rows)
		assert.Equal(t, int64(1), res.Meta.RowCount)
		assert.Nil(t, res.Meta.InsertID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("values list returns its rows", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		mock.ExpectQuery("VALUES ($1), ($2)").
			WithArgs("a", "b").
			WillReturnRows(sqlmock.NewRows([]string{"column1"}).AddRow("a").AddRow("b"))

		res, err := a.Execute(ctx, "VALUES (?), (?)", "a", "b")
		require.NoError(t, err)
		require.NotNil(t, res.Meta)
		assert.Len(t, res.Meta.Rows, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdapter_Execute_MySQL(t *testing.T) {
	ctx := context.Background()

	t.Run("select is passed through untouched", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.MySQL)
		mock.ExpectQuery("SELECT id, title FROM books WHERE YEAR(created_at) = ?").
			WithArgs(2024).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(int64(1), []byte("Campus Stories")))

		res, err := a.Execute(ctx, "SELECT id, title FROM books WHERE YEAR(created_at) = ?", 2024)
		require.NoError(t, err)

		require.Len(t, res.Rows, 1)
		assert.Equal(t, int64(1), res.Rows[0].Int("id"))
		assert.Equal(t, "Campus Stories", res.Rows[0]["title"])
		assert.Nil(t, res.Meta)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert reports last insert id", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.MySQL)
		mock.ExpectExec("INSERT INTO contacts (name, email) VALUES (?, ?)").
			WithArgs("Ada", "ada@example.com").
			WillReturnResult(sqlmock.NewResult(12, 1))

		res, err := a.Execute(ctx, "INSERT INTO contacts (name, email) VALUES (?, ?)", "Ada", "ada@example.com")
		require.NoError(t, err)

		assert.Equal(t, int64(12), res.InsertID())
		assert.Equal(t, int64(1), res.Affected())
		assert.Nil(t, res.Meta.Rows)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete reports affected rows", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.MySQL)
		mock.ExpectExec("DELETE FROM users WHERE id = ?").
			WithArgs(3).
			WillReturnResult(sqlmock.NewResult(0, 0))

		res, err := a.Execute(ctx, "DELETE FROM users WHERE id = ?", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.Affected())
		assert.Nil(t, res.Meta.InsertID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec errors pass through unchanged", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.MySQL)
		mock.ExpectExec("UPDATE users SET status = ? WHERE id = ?").
			WithArgs("active", 1).
			WillReturnError(assert.AnError)

		_, err := a.Execute(ctx, "UPDATE users SET status = ? WHERE id = ?", "active", 1)
		assert.Equal(t, assert.AnError, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdapter_Helpers(t *testing.T) {
	ctx := context.Background()

	t.Run("query one returns ErrNoRows on empty result", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.Postgres)
		mock.ExpectQuery("SELECT * FROM users WHERE email = $1").
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := a.QueryOne(ctx, "SELECT * FROM users WHERE email = ?", "nobody@example.com")
		assert.ErrorIs(t, err, ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scalar int reads named column", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.MySQL)
		mock.ExpectQuery("SELECT COUNT(*) as total FROM books").
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(int64(17)))

		total, err := a.ScalarInt(ctx, "total", "SELECT COUNT(*) as total FROM books")
		require.NoError(t, err)
		assert.Equal(t, int64(17), total)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping and close", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		a := New(db, Config{Engine: dialect.Postgres})

		mock.ExpectPing()
		mock.ExpectClose()

		require.NoError(t, a.Ping(ctx))
		require.NoError(t, a.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdapter_TableColumns(t *testing.T) {
	ctx := context.Background()

	t.Run("postgres reads information_schema", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		a := New(db, Config{Engine: dialect.Postgres})

		mock.ExpectQuery(`FROM information_schema.columns\s+WHERE table_schema = 'public' AND table_name = \$1`).
			WithArgs("users").
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id").AddRow("email"))

		cols, err := a.TableColumns(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"id": true, "email": true}, cols)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mysql uses show columns", func(t *testing.T) {
		a, mock := newMockAdapter(t, dialect.MySQL)
		mock.ExpectQuery("SHOW COLUMNS FROM `authors`").
			WillReturnRows(sqlmock.NewRows([]string{"Field", "Type"}).
				AddRow([]byte("id"), []byte("int")).
				AddRow([]byte("staff_id"), []byte("varchar(50)")))

		cols, err := a.TableColumns(ctx, "authors")
		require.NoError(t, err)
		assert.True(t, cols["staff_id"])
		assert.Len(t, cols, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unsafe table names", func(t *testing.T) {
		a, _ := newMockAdapter(t, dialect.MySQL)
		_, err := a.TableColumns(ctx, "users; DROP TABLE users")
		assert.Error(t, err)
	})
}

func TestAdapter_ConcurrentUse(t *testing.T) {
	a, mock := newMockAdapter(t, dialect.Postgres)
	mock.MatchExpectationsInOrder(false)

	const workers = 8
	for i := 0; i < workers; i++ {
		mock.ExpectQuery("SELECT id FROM books WHERE id = $1").
			WithArgs(i).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(i)))
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			row, err := a.QueryOne(context.Background(), "SELECT id FROM books WHERE id = ?", id)
			if err != nil {
				errs <- err
				return
			}
			if row.Int("id") != int64(id) {
				errs <- fmt.Errorf("got id %d, want %d", row.Int("id"), id)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingLogger) Printf(format string, v ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

func TestLoggingExecutor(t *testing.T) {
	t.Run("logs every statement when enabled", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		logger := &recordingLogger{}
		exec := &loggingExecutor{inner: db, logger: logger, logSQL: true}

		mock.ExpectExec("DELETE FROM sessions").WillReturnResult(sqlmock.NewResult(0, 2))
		_, err = exec.ExecContext(context.Background(), "DELETE FROM sessions")
		require.NoError(t, err)

		require.Len(t, logger.lines, 1)
		assert.Contains(t, logger.lines[0], "[SQL] sql=DELETE FROM sessions argc=0")
	})

	t.Run("stays quiet below the slow query threshold", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		logger := &recordingLogger{}
		exec := &loggingExecutor{inner: db, logger: logger, slowQuery: time.Hour}

		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		rows, err := exec.QueryContext(context.Background(), "SELECT 1")
		require.NoError(t, err)
		rows.Close()

		assert.Empty(t, logger.lines)
	})

	t.Run("reports slow statements", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		logger := &recordingLogger{}
		exec := &loggingExecutor{inner: db, logger: logger, slowQuery: time.Millisecond}

		mock.ExpectQuery("SELECT pg_sleep(1)").
			WillDelayFor(5 * time.Millisecond).
			WillReturnRows(sqlmock.NewRows([]string{"x"}))
		rows, err := exec.QueryContext(context.Background(), "SELECT pg_sleep(1)")
		require.NoError(t, err)
		rows.Close()

		require.Len(t, logger.lines, 1)
		assert.Contains(t, logger.lines[0], "[SQL SLOW]")
	})
}

func TestRow_Accessors(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	row := Row{
		"count":    int64(4),
		"amount":   "19.99",
		"name":     "Ada",
		"active":   int64(1),
		"created":  now,
		"date_str": "2025-03-01",
		"missing":  nil,
	}

	assert.Equal(t, int64(4), row.Int("count"))
	assert.InDelta(t, 19.99, row.Float("amount"), 0.0001)
	assert.Equal(t, "Ada", row.String("name"))
	assert.True(t, row.Bool("active"))
	assert.Equal(t, now, row.Time("created"))
	assert.Equal(t, 2025, row.Time("date_str").Year())
	assert.False(t, row.Has("missing"))
	assert.True(t, row.Has("name"))
	assert.Equal(t, "", row.String("missing"))
	assert.Equal(t, int64(0), row.Int("nope"))
}
