package migrate

import (
	"strings"

	"github.com/unipress/publishing/internal/dialect"
)

// Column is one row of INFORMATION_SCHEMA.COLUMNS.
type Column struct {
	Name     string
	Type     string // COLUMN_TYPE, e.g. "int(11) unsigned"
	Nullable bool
	Key      string // PRI, UNI, MUL or empty
	Extra    string
}

func (c Column) primary() bool {
	return c.Key == "PRI"
}

func (c Column) autoIncrement() bool {
	return strings.Contains(strings.ToLower(c.Extra), "auto_increment")
}

// prefixTypes maps numeric and character types by COLUMN_TYPE prefix.
var prefixTypes = []struct {
	prefix string
	pgType string
}{
	{"int", "INTEGER"},
	{"tinyint", "INTEGER"},
	{"smallint", "INTEGER"},
	{"bigint", "BIGINT"},
	{"decimal", "NUMERIC"},
	{"numeric", "NUMERIC"},
	{"float", "DOUBLE PRECISION"},
	{"double", "DOUBLE PRECISION"},
	{"varchar", "TEXT"},
	{"char", "TEXT"},
}

// PostgresType maps a MySQL COLUMN_TYPE to the Postgres type used for the
// copy. Unknown types fall back to TEXT.
func PostgresType(mysqlType string) string {
	t := strings.ToLower(strings.TrimSpace(mysqlType))

	for _, p := range prefixTypes {
		if strings.HasPrefix(t, p.prefix) {
			return p.pgType
		}
	}

	// datetime and timestamp are matched before date and time.
	switch {
	case strings.Contains(t, "text"):
		return "TEXT"
	case strings.HasPrefix(t, "datetime"), strings.HasPrefix(t, "timestamp"):
		return "TIMESTAMP"
	case strings.HasPrefix(t, "date"):
		return "DATE"
	case strings.HasPrefix(t, "time"):
		return "TIME"
	case strings.HasPrefix(t, "json"):
		return "JSONB"
	case strings.HasPrefix(t, "enum"):
		return "TEXT"
	case strings.HasPrefix(t, "bool"):
		return "BOOLEAN"
	}
	return "TEXT"
}

// Definition renders the column for CREATE TABLE. An auto-increment
// INTEGER primary key becomes SERIAL.
func (c Column) Definition() string {
	name := dialect.Postgres.QuoteIdent(c.Name)
	pgType := PostgresType(c.Type)

	if c.primary() && c.autoIncrement() && pgType == "INTEGER" {
		return name + " SERIAL PRIMARY KEY"
	}

	def := name + " " + pgType
	if !c.Nullable {
		def += " NOT NULL"
	}
	if c.primary() {
		def += " PRIMARY KEY"
	}
	return def
}

// Table is a source table with its columns in ordinal order.
type Table struct {
	Name     string
	Columns  []Column
	RowCount int64
}

// CreateStatement returns the Postgres CREATE TABLE IF NOT EXISTS for t.
func (t Table) CreateStatement() string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = c.Definition()
	}
	return "CREATE TABLE IF NOT EXISTS " + dialect.Postgres.QuoteIdent(t.Name) +
		" (\n  " + strings.Join(defs, ",\n  ") + "\n);"
}

// InsertStatement returns the Postgres insert for one row of t with
// positional parameters in column order.
func (t Table) InsertStatement() string {
	cols := make([]string, len(t.Columns))
	params := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = dialect.Postgres.QuoteIdent(c.Name)
		params[i] = "?"
	}
	sql, _ := dialect.RewritePlaceholders("INSERT INTO " + dialect.Postgres.QuoteIdent(t.Name) +
		" (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(params, ", ") +
		") ON CONFLICT DO NOTHING")
	return sql
}
