package schema

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/dialect"
)

// DefaultSetting is a row seeded into the settings table.
type DefaultSetting struct {
	Key         string
	Value       string
	Type        string
	Category    string
	Description string
}

var DefaultSettings = []DefaultSetting{
	{"site_name", "University Publishing Company", "string", "general", "Site Name"},
	{"royalty_rate", "15", "number", "royalty", "Default royalty percentage"},
	{"contact_email", "publishing@example.edu", "string", "contact", "Contact email"},
	{"max_file_size", "10485760", "number", "uploads", "Maximum file size in bytes"},
	{"currency", "NGN", "string", "general", "Default currency"},
	{"tax_rate", "7.5", "number", "sales", "Tax rate percentage"},
	{"default_contract_type", "standard", "string", "contracts", "Default contract type"},
	{"training_fee", "5000", "number", "training", "Default training fee"},
	{"contract_reminder_days", "30", "number", "contracts", "Days before contract end to notify authors"},
}

// Dialector returns the gorm dialector for the adapter's engine, sharing
// its connection pool.
func Dialector(a *database.Adapter) gorm.Dialector {
	if a.Engine() == dialect.Postgres {
		return postgres.New(postgres.Config{Conn: a.DB()})
	}
	return mysql.New(mysql.Config{Conn: a.DB()})
}

// AutoMigrate creates or updates every table of the schema.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Migrate creates the schema on the adapter's database, adds author profile
// columns missing from older databases and seeds default settings.
func Migrate(ctx context.Context, a *database.Adapter) error {
	db, err := gorm.Open(Dialector(a), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to open schema connection: %w", err)
	}

	if err := AutoMigrate(db.WithContext(ctx)); err != nil {
		return err
	}

	if err := EnsureAuthorProfileColumns(ctx, a); err != nil {
		return err
	}

	if err := BackfillPublicationDates(ctx, a); err != nil {
		return err
	}

	if err := SeedSettings(ctx, a, DefaultSettings); err != nil {
		return err
	}

	log.Printf("Database schema ready (engine: %s)", a.Engine())
	return nil
}

// SeedSettings inserts settings whose key is not present yet.
func SeedSettings(ctx context.Context, a *database.Adapter, settings []DefaultSetting) error {
	query := "INSERT IGNORE INTO settings (setting_key, setting_value, setting_type, category, description) VALUES (?, ?, ?, ?, ?)"
	if a.Engine() == dialect.Postgres {
		query = "INSERT INTO settings (setting_key, setting_value, setting_type, category, description) VALUES (?, ?, ?, ?, ?) ON CONFLICT (setting_key) DO NOTHING"
	}

	for _, s := range settings {
		if _, err := a.Execute(ctx, query, s.Key, s.Value, s.Type, s.Category, s.Description); err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", s.Key, err)
		}
	}
	return nil
}

// BackfillPublicationDates sets publication_date for published books that
// predate the column.
func BackfillPublicationDates(ctx context.Context, a *database.Adapter) error {
	_, err := a.Execute(ctx,
		"UPDATE books SET publication_date = DATE(created_at) WHERE publication_date IS NULL AND status = 'published'")
	if err != nil {
		return fmt.Errorf("failed to backfill publication dates: %w", err)
	}
	return nil
}

type profileColumn struct {
	name  string
	mysql string
	pg    string
}

var userProfileColumns = []profileColumn{
	{"profile_image", "VARCHAR(255)", "VARCHAR(255)"},
	{"phone", "VARCHAR(20)", "VARCHAR(20)"},
}

var authorProfileColumns = []profileColumn{
	{"qualifications", "TEXT", "TEXT"},
	{"biography", "TEXT", "TEXT"},
	{"areas_of_expertise", "TEXT", "TEXT"},
	{"orcid_id", "VARCHAR(50)", "VARCHAR(50)"},
	{"google_scholar_id", "VARCHAR(100)", "VARCHAR(100)"},
	{"linkedin_url", "VARCHAR(255)", "VARCHAR(255)"},
	{"status", "ENUM('pending', 'approved', 'rejected', 'suspended') DEFAULT 'pending'", "TEXT DEFAULT 'pending'"},
}

// EnsureAuthorProfileColumns adds the author profile columns that databases
// created before author self-registration do not have.
func EnsureAuthorProfileColumns(ctx context.Context, a *database.Adapter) error {
	if err := addMissingColumns(ctx, a, "users", userProfileColumns); err != nil {
		return err
	}
	return addMissingColumns(ctx, a, "authors", authorProfileColumns)
}

func addMissingColumns(ctx context.Context, a *database.Adapter, table string, columns []profileColumn) error {
	existing, err := a.TableColumns(ctx, table)
	if err != nil {
		return fmt.Errorf("failed to read %s columns: %w", table, err)
	}

	var clauses []string
	for _, col := range columns {
		if existing[col.name] {
			continue
		}
		def := col.mysql
		if a.Engine() == dialect.Postgres {
			def = col.pg
		}
		clauses = append(clauses, "ADD COLUMN "+col.name+" "+def)
	}
	if len(clauses) == 0 {
		return nil
	}

	if _, err := a.Execute(ctx, "ALTER TABLE "+table+" "+strings.Join(clauses, ", ")); err != nil {
		return fmt.Errorf("failed to add %s columns: %w", table, err)
	}
	log.Printf("Added %d missing column(s) to %s", len(clauses), table)
	return nil
}
