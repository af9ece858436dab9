package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/unipress/publishing/internal/dialect"
)

var (
	ErrMissingDSN = errors.New("database DSN is not set")
	ErrNoRows     = errors.New("no rows in result set")
)

// Config selects the engine and connection settings for an Adapter.
type Config struct {
	Engine          dialect.Engine
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// PrimaryKey is the column requested from Postgres inserts. Defaults to "id".
	PrimaryKey string

	// LogSQL logs every statement. SlowQuery logs statements slower than
	// the threshold even when LogSQL is off.
	LogSQL    bool
	SlowQuery time.Duration
}

// Adapter runs MySQL-dialect SQL templates against MySQL or Postgres and
// returns results in one shape regardless of the engine.
//
// The engine is fixed at construction. Several adapters for different
// engines can be used side by side.
type Adapter struct {
	db         *sql.DB
	engine     dialect.Engine
	translator *dialect.Translator
	exec       executor

	// warned holds one entry per distinct set of unsupported function
	// names, so it stays bounded by the size of the function table.
	warned sync.Map
}

// Open connects to the configured engine and verifies the connection.
func Open(cfg Config) (*Adapter, error) {
	if cfg.DSN == "" {
		return nil, ErrMissingDSN
	}
	if cfg.Engine == "" {
		cfg.Engine = dialect.MySQL
	}

	db, err := sql.Open(cfg.Engine.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Engine, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Engine, err)
	}

	log.Printf("Database connected (engine: %s)", cfg.Engine)

	return New(db, cfg), nil
}

// New wraps an existing connection pool. The adapter takes ownership of db.
func New(db *sql.DB, cfg Config) *Adapter {
	engine := cfg.Engine
	if engine == "" {
		engine = dialect.MySQL
	}

	a := &Adapter{
		db:         db,
		engine:     engine,
		translator: dialect.DefaultTranslator().WithPrimaryKey(cfg.PrimaryKey),
		exec:       db,
	}
	if cfg.LogSQL || cfg.SlowQuery > 0 {
		a.exec = &loggingExecutor{inner: db, logger: log.Default(), logSQL: cfg.LogSQL, slowQuery: cfg.SlowQuery}
	}
	return a
}

// Engine returns the engine statements are executed against.
func (a *Adapter) Engine() dialect.Engine {
	return a.engine
}

// DB returns the underlying connection pool.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Translator returns the translator used for Postgres statements.
func (a *Adapter) Translator() *dialect.Translator {
	return a.translator
}

// Ping verifies the connection is alive.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close closes the connection pool.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Execute runs a MySQL-dialect template with positional bind values.
//
// Select-like statements return Result.Rows with a nil Meta. Inserts and
// other statements return Result.Meta; other statements that yield rows,
// such as EXPLAIN or VALUES, carry them in Meta.Rows. On Postgres the template is translated
// first and inserts are given a RETURNING clause so Meta.InsertID can be
// filled from the returned row.
//
// Errors from the driver are returned as they are.
func (a *Adapter) Execute(ctx context.Context, query string, args ...any) (*Result, error) {
	stmt := a.translator.Translate(a.engine, query)
	if a.engine.Translated() {
		a.warnUnsupported(query)
	}

	if stmt.Returning {
		rows, err := a.exec.QueryContext(ctx, stmt.SQL, args...)
		if err != nil {
			return nil, err
		}
		records, err := scanRows(rows)
		if err != nil {
			return nil, err
		}
		return a.rowsResult(stmt, records), nil
	}

	res, err := a.exec.ExecContext(ctx, stmt.SQL, args...)
	if err != nil {
		return nil, err
	}
	return a.execResult(stmt, res)
}

func (a *Adapter) rowsResult(stmt dialect.Statement, rows []Row) *Result {
	switch stmt.Kind {
	case dialect.KindSelect:
		return &Result{Rows: rows}
	case dialect.KindInsert:
		meta := &Meta{
			AffectedRows: int64(len(rows)),
			RowCount:     int64(len(rows)),
			Rows:         rows,
		}
		if len(rows) > 0 {
			if id, ok := toInt64(rows[0][a.translator.PrimaryKey()]); ok {
				meta.InsertID = &id
			}
		}
		return &Result{Meta: meta}
	default:
		return &Result{Meta: &Meta{
			AffectedRows: int64(len(rows)),
			RowCount:     int64(len(rows)),
			Rows:         rows,
		}}
	}
}

func (a *Adapter) execResult(stmt dialect.Statement, res sql.Result) (*Result, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	meta := &Meta{AffectedRows: affected, RowCount: affected}
	if a.engine.Translated() {
		meta.Rows = []Row{}
	}
	if stmt.Kind == dialect.KindInsert && !a.engine.Translated() {
		if id, err := res.LastInsertId(); err == nil {
			meta.InsertID = &id
		}
	}
	return &Result{Meta: meta}, nil
}

func (a *Adapter) warnUnsupported(query string) {
	names := a.translator.Unsupported(query)
	if len(names) == 0 {
		return
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	if _, seen := a.warned.LoadOrStore(strings.Join(sorted, ","), struct{}{}); seen {
		return
	}
	log.Printf("WARNING: query uses MySQL-only functions %v with no Postgres rewrite: %s", names, truncateSQL(query, 200))
}

// QueryRows runs a select-like template and returns its rows.
func (a *Adapter) QueryRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	res, err := a.Execute(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// QueryOne returns the first row of a select-like template, or ErrNoRows.
func (a *Adapter) QueryOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := a.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// ScalarInt reads an integer column from the first row, as in
// "SELECT COUNT(*) as total ...".
func (a *Adapter) ScalarInt(ctx context.Context, column, query string, args ...any) (int64, error) {
	row, err := a.QueryOne(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return row.Int(column), nil
}

// ScalarFloat reads a numeric column from the first row. NULL reads as 0.
func (a *Adapter) ScalarFloat(ctx context.Context, column, query string, args ...any) (float64, error) {
	row, err := a.QueryOne(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return row.Float(column), nil
}
