package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/unipress/publishing/internal/dialect"
)

// TranslateCommand prints the Postgres form of a MySQL-dialect template.
type TranslateCommand struct {
	SQL        string
	PrimaryKey string

	In  io.Reader
	Out io.Writer
}

func NewTranslateCommand() *TranslateCommand {
	return &TranslateCommand{In: os.Stdin, Out: os.Stdout}
}

func (cmd *TranslateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("translate", flag.ExitOnError)

	fs.StringVar(&cmd.SQL, "sql", "", "Statement to translate (read from stdin when empty)")
	fs.StringVar(&cmd.PrimaryKey, "pk", "id", "Column returned by translated inserts")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s translate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the Postgres translation of a MySQL-dialect statement.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s translate -sql \"SELECT * FROM books WHERE YEAR(created_at) = ?\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  echo \"INSERT INTO contacts (name) VALUES (?)\" | %s translate\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *TranslateCommand) Run() error {
	query := cmd.SQL
	if query == "" {
		raw, err := io.ReadAll(cmd.In)
		if err != nil {
			return fmt.Errorf("failed to read statement: %w", err)
		}
		query = string(raw)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("no statement given")
	}

	translator := dialect.DefaultTranslator().WithPrimaryKey(cmd.PrimaryKey)
	stmt := translator.Translate(dialect.Postgres, query)

	fmt.Fprintln(cmd.Out, stmt.SQL)
	fmt.Fprintf(cmd.Out, "-- kind: %s, parameters: %d\n", stmt.Kind, stmt.Params)
	for _, name := range translator.Unsupported(query) {
		fmt.Fprintf(cmd.Out, "-- warning: %s has no postgres rewrite\n", name)
	}
	return nil
}
