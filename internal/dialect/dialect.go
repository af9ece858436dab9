// Package dialect translates SQL templates written in the MySQL dialect
// (`?` placeholders, MySQL date functions) into the Postgres dialect.
//
// Repositories write every query once, in the MySQL dialect. When the
// platform runs against Postgres the database adapter passes each template
// through a Translator before execution.
//
// # Usage
//
//	tr := dialect.DefaultTranslator()
//	stmt := tr.Translate(dialect.Postgres, "SELECT * FROM books WHERE YEAR(created_at) = ?")
//	// stmt.SQL == "SELECT * FROM books WHERE EXTRACT(YEAR FROM created_at) = $1"
package dialect

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Engine identifies the database engine a statement is executed against.
type Engine string

const (
	// MySQL is the native dialect. Templates are executed unchanged.
	MySQL Engine = "mysql"
	// Postgres is the translated dialect.
	Postgres Engine = "postgres"
)

var ErrUnknownEngine = errors.New("unknown database engine")

// ParseEngine maps a DB_CLIENT style value to an Engine.
// An empty value selects MySQL.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}

func (e Engine) String() string {
	return string(e)
}

// Translated reports whether templates must be rewritten before they reach
// this engine.
func (e Engine) Translated() bool {
	return e == Postgres
}

// DriverName returns the database/sql driver registered for the engine.
func (e Engine) DriverName() string {
	if e == Postgres {
		return "pgx"
	}
	return "mysql"
}

// QuoteIdent quotes a table or column name for the engine.
func (e Engine) QuoteIdent(name string) string {
	if e == Postgres {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// StatementKind selects how a statement's result is normalized.
type StatementKind int

const (
	KindOther StatementKind = iota
	KindSelect
	KindInsert
)

func (k StatementKind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindInsert:
		return "insert"
	default:
		return "other"
	}
}

var (
	selectPattern    = regexp.MustCompile(`(?i)^(select|with|show)\b`)
	insertPattern    = regexp.MustCompile(`(?i)^insert\s+into\s+`)
	returningPattern = regexp.MustCompile(`(?i)\breturning\b`)
	// Statements outside the select family that still yield a result set.
	rowsPattern = regexp.MustCompile(`(?i)^(\(|(explain|values|table)\b)`)
)

// Classify returns the kind of a statement from its leading keyword.
func Classify(sql string) StatementKind {
	trimmed := strings.TrimSpace(sql)
	switch {
	case selectPattern.MatchString(trimmed):
		return KindSelect
	case insertPattern.MatchString(trimmed):
		return KindInsert
	default:
		return KindOther
	}
}

// HasReturning reports whether the statement already carries a RETURNING
// clause. The word inside a string literal does not count.
func HasReturning(sql string) bool {
	return returningPattern.MatchString(maskLiterals(sql))
}

// leadsWithRows reports whether the leading token makes the statement
// yield rows: select-like keywords, EXPLAIN, VALUES, TABLE or a
// parenthesized query such as "(SELECT ...) UNION (SELECT ...)".
func leadsWithRows(sql string) bool {
	trimmed := strings.TrimSpace(sql)
	return selectPattern.MatchString(trimmed) || rowsPattern.MatchString(trimmed)
}

// ProducesRows reports whether the statement returns a result set and must
// be run as a query rather than an exec.
func ProducesRows(sql string) bool {
	return leadsWithRows(sql) || HasReturning(sql)
}

// EnsureReturning appends "RETURNING <pk>" to an insert that has no
// RETURNING clause. Any other statement is returned unchanged.
func EnsureReturning(sql, pk string) string {
	if Classify(sql) != KindInsert || HasReturning(sql) {
		return sql
	}
	if pk == "" {
		pk = "id"
	}
	trimmed := strings.TrimRight(sql, " \t\r\n;")
	return trimmed + " RETURNING " + pk
}
