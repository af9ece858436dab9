// Package database provides the data access layer for the platform.
//
// # Architecture
//
// All SQL is written once, in the MySQL dialect, and executed through the
// Adapter. The adapter targets either MySQL or Postgres; for Postgres it
// translates each template with the dialect package before running it.
//
//	database/
//	├── database.go      # Adapter: Open, Execute, query helpers
//	├── result.go        # Result, Meta and Row accessors
//	├── logging.go       # statement logging and slow-query reporting
//	├── columns.go       # table introspection
//	├── schema/          # gorm models, migrations, profile column upgrades
//	├── users/           # accounts and logins
//	├── authors/         # author profiles and approval
//	├── books/           # catalogue and book lifecycle
//	├── submissions/     # manuscript submissions
//	├── contracts/       # publishing contracts
//	├── training/        # training registrations
//	├── contacts/        # contact form messages
//	├── dashboard/       # admin dashboard aggregates
//	├── settings/        # site settings
//	└── notifications/   # per-user notifications
//
// # Using Sub-packages
//
//	db, err := database.Open(database.Config{Engine: dialect.Postgres, DSN: dsn})
//
//	usersRepo := users.NewRepository(db)
//	user, err := usersRepo.GetByEmail(ctx, "a@b.com")
//
// # Result Shape
//
// Execute returns the same shape on both engines. Reads fill Result.Rows.
// Writes fill Result.Meta with the affected row count and, for inserts,
// the generated key:
//
//	res, err := db.Execute(ctx, "INSERT INTO contacts (name) VALUES (?)", name)
//	id := res.InsertID()
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *database.Adapter field
//  3. Add NewRepository(db *database.Adapter) constructor
//  4. Write queries in the MySQL dialect; only functions known to the
//     dialect package are rewritten for Postgres
package database
