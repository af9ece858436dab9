package database

import (
	"context"
	"fmt"
	"regexp"

	"github.com/unipress/publishing/internal/dialect"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableColumns returns the set of column names of a table.
func (a *Adapter) TableColumns(ctx context.Context, table string) (map[string]bool, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	var (
		rows []Row
		err  error
		key  string
	)
	if a.engine == dialect.Postgres {
		key = "column_name"
		rows, err = a.QueryRows(ctx, `SELECT column_name
			FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = ?
			ORDER BY ordinal_position`, table)
	} else {
		key = "Field"
		rows, err = a.QueryRows(ctx, "SHOW COLUMNS FROM "+a.engine.QuoteIdent(table))
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]bool, len(rows))
	for _, row := range rows {
		name := row.String(key)
		if name == "" {
			name = row.String("field")
		}
		if name != "" {
			columns[name] = true
		}
	}
	return columns, nil
}
