package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/unipress/publishing/internal/config"
	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/dialect"
	"github.com/unipress/publishing/internal/migrate"
)

// MySQLToPostgresCommand generates a Postgres schema from the MySQL
// database and, with -apply, copies the data.
type MySQLToPostgresCommand struct {
	Apply     bool
	OutputDir string
	Schema    string
}

func NewMySQLToPostgresCommand() *MySQLToPostgresCommand {
	return &MySQLToPostgresCommand{}
}

func (cmd *MySQLToPostgresCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("mysql-to-postgres", flag.ExitOnError)

	fs.BoolVar(&cmd.Apply, "apply", false, "Create the tables in DATABASE_URL and copy all rows")
	fs.StringVar(&cmd.OutputDir, "out", migrate.DefaultOutputDir, "Directory for the generated schema and summary")
	fs.StringVar(&cmd.Schema, "schema", "", "MySQL schema to read (defaults to DB_NAME)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s mysql-to-postgres [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Read the MySQL schema (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME) and write\n")
		fmt.Fprintf(os.Stderr, "%s and %s. Without -apply this is a dry run.\n\n", migrate.SchemaFile, migrate.SummaryFile)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s mysql-to-postgres\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  DATABASE_URL=postgres://... %s mysql-to-postgres -apply\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *MySQLToPostgresCommand) Run() error {
	cfg := config.NewConfig()
	if cmd.Schema == "" {
		cmd.Schema = cfg.Database.Name
	}

	sourceCfg, err := cfg.Database.AdapterConfigFor(dialect.MySQL)
	if err != nil {
		return err
	}
	source, err := database.Open(sourceCfg)
	if err != nil {
		return err
	}
	defer source.Close()

	inspector, err := migrate.NewInspector(source, cmd.Schema)
	if err != nil {
		return err
	}

	ctx := context.Background()
	plan, err := inspector.Inspect(ctx)
	if err != nil {
		return err
	}

	schemaPath, summaryPath, err := migrate.WriteArtifacts(cmd.OutputDir, plan)
	if err != nil {
		return err
	}
	fmt.Printf("Generated schema: %s\n", schemaPath)
	fmt.Printf("Generated summary: %s\n", summaryPath)

	if !cmd.Apply {
		fmt.Println("Dry run complete. Re-run with -apply to create tables and copy data.")
		return nil
	}

	targetCfg, err := cfg.Database.AdapterConfigFor(dialect.Postgres)
	if err != nil {
		return fmt.Errorf("-apply needs a postgres target: %w", err)
	}
	target, err := database.Open(targetCfg)
	if err != nil {
		return err
	}
	defer target.Close()

	copier, err := migrate.NewCopier(source, target)
	if err != nil {
		return err
	}
	if err := copier.Apply(ctx, plan); err != nil {
		return err
	}

	fmt.Println("MySQL -> Postgres migration complete.")
	return nil
}
