package migrate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultOutputDir = "migrations/mysql_to_postgres"
	SchemaFile       = "generated_schema.sql"
	SummaryFile      = "migration_summary.json"
)

// Summary is the JSON report written next to the generated schema.
type Summary struct {
	Database    string         `json:"database"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Tables      []TableSummary `json:"tables"`
}

type TableSummary struct {
	TableName   string `json:"tableName"`
	RowCount    int64  `json:"rowCount"`
	ColumnCount int    `json:"columnCount"`
}

func (p *Plan) Summary() Summary {
	s := Summary{
		Database:    p.Database,
		GeneratedAt: p.GeneratedAt,
		Tables:      make([]TableSummary, len(p.Tables)),
	}
	for i, t := range p.Tables {
		s.Tables[i] = TableSummary{TableName: t.Name, RowCount: t.RowCount, ColumnCount: len(t.Columns)}
	}
	return s
}

// WriteArtifacts writes the schema and summary files into dir, creating it
// if needed. It returns the two file paths.
func WriteArtifacts(dir string, plan *Plan) (schemaPath, summaryPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}

	schemaPath = filepath.Join(dir, SchemaFile)
	schema := strings.Join(plan.Statements(), "\n\n") + "\n"
	if err := os.WriteFile(schemaPath, []byte(schema), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write schema: %w", err)
	}

	summary, err := json.MarshalIndent(plan.Summary(), "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode summary: %w", err)
	}
	summaryPath = filepath.Join(dir, SummaryFile)
	if err := os.WriteFile(summaryPath, summary, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write summary: %w", err)
	}
	return schemaPath, summaryPath, nil
}
