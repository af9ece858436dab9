package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/database/authors"
	"github.com/unipress/publishing/internal/database/books"
	"github.com/unipress/publishing/internal/database/contacts"
	"github.com/unipress/publishing/internal/database/contracts"
	"github.com/unipress/publishing/internal/database/dashboard"
	"github.com/unipress/publishing/internal/database/inventory"
	"github.com/unipress/publishing/internal/database/production"
	"github.com/unipress/publishing/internal/database/reports"
	"github.com/unipress/publishing/internal/database/royalties"
	"github.com/unipress/publishing/internal/database/sales"
	"github.com/unipress/publishing/internal/database/search"
	"github.com/unipress/publishing/internal/database/submissions"
	"github.com/unipress/publishing/internal/database/training"
	"github.com/unipress/publishing/internal/database/users"
)

// Each controller declares the slice of a repository it needs. The
// repositories under internal/database satisfy them.

type UserStore interface {
	Exists(ctx context.Context, email, username string) (bool, error)
	Create(ctx context.Context, u users.NewUser) (int64, error)
	List(ctx context.Context, f users.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error)
	Update(ctx context.Context, id int64, u users.Update) error
	Delete(ctx context.Context, id int64) error
}

type AuthorStore interface {
	CountActive(ctx context.Context) (int64, error)
	List(ctx context.Context, f authors.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error)
	GetByID(ctx context.Context, id int64) (database.Row, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type BookStore interface {
	Published(ctx context.Context) ([]database.Row, error)
	List(ctx context.Context, f books.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error)
	GetByID(ctx context.Context, id int64) (database.Row, error)
	UpdateStatus(ctx context.Context, id int64, status string, notes *string) error
}

type SubmissionStore interface {
	List(ctx context.Context, f submissions.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error)
	Assign(ctx context.Context, id int64, a submissions.Assignment) error
}

type ContractStore interface {
	List(ctx context.Context, f contracts.ListFilter, page database.PageRequest) ([]database.Row, error)
	Create(ctx context.Context, c contracts.NewContract) (int64, string, error)
}

type TrainingStore interface {
	CountCompleted(ctx context.Context) (int64, error)
	Register(ctx context.Context, reg training.Registration) (int64, error)
	List(ctx context.Context, f training.ListFilter, page database.PageRequest) ([]database.Row, error)
	UpdateOutcome(ctx context.Context, id int64, o training.Outcome) error
}

type ContactStore interface {
	Create(ctx context.Context, m contacts.Message) (int64, error)
}

type SettingsStore interface {
	All(ctx context.Context) (map[string][]database.Row, error)
	SetMany(ctx context.Context, values map[string]string) error
}

type DashboardStore interface {
	Stats(ctx context.Context) (*dashboard.Stats, error)
}

type AboutStore interface {
	About(ctx context.Context) (*dashboard.About, error)
}

// AuthorPortalStore serves the signed-in author's own records.
type AuthorPortalStore interface {
	Profile(ctx context.Context, userID int64) (database.Row, error)
	UpdateProfile(ctx context.Context, userID int64, u authors.ProfileUpdate) (database.Row, error)
	Dashboard(ctx context.Context, userID int64) (*authors.Dashboard, error)
	BookForAuthor(ctx context.Context, userID, bookID int64) (*authors.AuthorBook, error)
}

type SalesStore interface {
	List(ctx context.Context, f sales.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error)
	Summary(ctx context.Context, f sales.ListFilter) (sales.Summary, error)
	RecentSummary(ctx context.Context) (sales.RecentSummary, error)
}

type InventoryStore interface {
	List(ctx context.Context, f inventory.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error)
	Summary(ctx context.Context) (inventory.Summary, error)
}

type RoyaltyStore interface {
	List(ctx context.Context, f royalties.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error)
}

type ProductionStore interface {
	List(ctx context.Context, f production.ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error)
}

type ReportStore interface {
	Financial(ctx context.Context, f reports.FinancialFilter) (*reports.Financial, error)
}

type SearchStore interface {
	Filters(ctx context.Context) (*search.Filters, error)
	Search(ctx context.Context, term string) ([]database.Row, error)
}

type NotificationStore interface {
	ListForUser(ctx context.Context, userID int64, limit int) ([]database.Row, error)
}

// JobRunner enqueues a named scheduled job immediately.
type JobRunner interface {
	RunNow(name string) (string, error)
}

type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
