package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/unipress/publishing/internal/auth"
	"github.com/unipress/publishing/internal/config"
	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/database/schema"
)

// MigrateCommand creates or updates the schema and seeds the admin account.
type MigrateCommand struct {
	SkipAdmin bool
}

func NewMigrateCommand() *MigrateCommand {
	return &MigrateCommand{}
}

func (cmd *MigrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)

	fs.BoolVar(&cmd.SkipAdmin, "skip-admin", false, "Do not create the ADMIN_EMAIL account")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s migrate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create or update the publishing schema on the configured database,\n")
		fmt.Fprintf(os.Stderr, "seed default settings and create the admin account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  DB_CLIENT=mysql DB_NAME=press %s migrate\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  DB_CLIENT=postgres DATABASE_URL=postgres://... ADMIN_EMAIL=admin@example.edu ADMIN_PASSWORD=... %s migrate\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *MigrateCommand) Run() error {
	cfg := config.NewConfig()

	adapterCfg, err := cfg.Database.AdapterConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(adapterCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := schema.Migrate(ctx, db); err != nil {
		return err
	}

	if cmd.SkipAdmin || cfg.Admin.Email == "" {
		return nil
	}

	created, err := auth.NewService(db, cfg.Auth).EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FullName)
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	if created {
		log.Printf("Created admin account %s", cfg.Admin.Email)
	} else {
		log.Printf("Admin account %s already exists", cfg.Admin.Email)
	}
	return nil
}
