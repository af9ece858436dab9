package migrate

import (
	"context"
	"fmt"
	"log"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/dialect"
)

// Copier creates the planned tables in Postgres and copies the rows.
//
// Statements are already in the Postgres dialect, so they go to the
// target connection directly instead of through the adapter's
// translation.
type Copier struct {
	source *database.Adapter
	target *database.Adapter
}

func NewCopier(source, target *database.Adapter) (*Copier, error) {
	if source.Engine() != dialect.MySQL {
		return nil, fmt.Errorf("source must be a mysql database, got %s", source.Engine())
	}
	if target.Engine() != dialect.Postgres {
		return nil, fmt.Errorf("target must be a postgres database, got %s", target.Engine())
	}
	return &Copier{source: source, target: target}, nil
}

// CreateTables runs every CREATE TABLE IF NOT EXISTS of the plan.
func (c *Copier) CreateTables(ctx context.Context, plan *Plan) error {
	for _, t := range plan.Tables {
		if _, err := c.target.DB().ExecContext(ctx, t.CreateStatement()); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
	}
	return nil
}

// CopyTable copies all rows of t in one transaction and returns how many
// rows were read. Rows that already exist are skipped by ON CONFLICT.
func (c *Copier) CopyTable(ctx context.Context, t Table) (int, error) {
	rows, err := c.source.QueryRows(ctx, "SELECT * FROM "+dialect.MySQL.QuoteIdent(t.Name))
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", t.Name, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := c.target.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin copy of %s: %w", t.Name, err)
	}
	defer tx.Rollback()

	insert := t.InsertStatement()
	for _, row := range rows {
		values := make([]any, len(t.Columns))
		for i, col := range t.Columns {
			values[i] = row[col.Name]
		}
		if _, err := tx.ExecContext(ctx, insert, values...); err != nil {
			return 0, fmt.Errorf("failed to copy row into %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit copy of %s: %w", t.Name, err)
	}
	return len(rows), nil
}

// Apply creates the tables and copies every table in plan order.
func (c *Copier) Apply(ctx context.Context, plan *Plan) error {
	if err := c.CreateTables(ctx, plan); err != nil {
		return err
	}

	for _, t := range plan.Tables {
		n, err := c.CopyTable(ctx, t)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("Migrated %d row(s) from %s", n, t.Name)
		}
	}
	return nil
}
