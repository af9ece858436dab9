package migrate

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/dialect"
)

// inspectConcurrency bounds the number of tables read at once.
const inspectConcurrency = 4

const (
	tablesQuery = "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME"

	columnsQuery = `SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_KEY, EXTRA
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`
)

// Plan is the inspected source schema.
type Plan struct {
	Database    string
	GeneratedAt time.Time
	Tables      []Table
}

// Statements returns one CREATE TABLE statement per table.
func (p *Plan) Statements() []string {
	stmts := make([]string, len(p.Tables))
	for i, t := range p.Tables {
		stmts[i] = t.CreateStatement()
	}
	return stmts
}

// Inspector reads table definitions from a MySQL database.
type Inspector struct {
	source *database.Adapter
	schema string
}

func NewInspector(source *database.Adapter, schema string) (*Inspector, error) {
	if source.Engine() != dialect.MySQL {
		return nil, fmt.Errorf("source must be a mysql database, got %s", source.Engine())
	}
	return &Inspector{source: source, schema: schema}, nil
}

// Inspect lists the tables of the schema with their columns and row counts.
func (in *Inspector) Inspect(ctx context.Context) (*Plan, error) {
	rows, err := in.source.QueryRows(ctx, tablesQuery, in.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	plan := &Plan{
		Database:    in.schema,
		GeneratedAt: time.Now().UTC(),
		Tables:      make([]Table, len(rows)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(inspectConcurrency)
	for i, row := range rows {
		name := row.String("TABLE_NAME")
		g.Go(func() error {
			table, err := in.table(gctx, name)
			if err != nil {
				return err
			}
			plan.Tables[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("Inspected %d tables in %s", len(plan.Tables), in.schema)
	return plan, nil
}

func (in *Inspector) table(ctx context.Context, name string) (Table, error) {
	rows, err := in.source.QueryRows(ctx, columnsQuery, in.schema, name)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}

	table := Table{Name: name, Columns: make([]Column, len(rows))}
	for i, row := range rows {
		table.Columns[i] = Column{
			Name:     row.String("COLUMN_NAME"),
			Type:     row.String("COLUMN_TYPE"),
			Nullable: row.String("IS_NULLABLE") == "YES",
			Key:      row.String("COLUMN_KEY"),
			Extra:    row.String("EXTRA"),
		}
	}

	table.RowCount, err = in.source.ScalarInt(ctx, "count",
		"SELECT COUNT(*) as count FROM "+dialect.MySQL.QuoteIdent(name))
	if err != nil {
		return Table{}, fmt.Errorf("failed to count rows of %s: %w", name, err)
	}
	return table, nil
}
