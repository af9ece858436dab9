// Package authors provides database operations for author profiles and
// their approval.
//
// # Usage
//
//	repo := authors.NewRepository(db)
//	userID, authorID, err := repo.Register(ctx, reg)
package authors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/database/production"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusSuspended = "suspended"
)

var (
	ErrAuthorNotFound     = errors.New("author not found")
	ErrLinkedUserNotFound = errors.New("linked user account not found")
	ErrInvalidStatus      = errors.New("invalid author status")
)

// userStatusFor maps an author approval status to the linked account status.
var userStatusFor = map[string]string{
	StatusPending:   "pending",
	StatusApproved:  "active",
	StatusRejected:  "inactive",
	StatusSuspended: "suspended",
}

func ValidStatus(status string) bool {
	_, ok := userStatusFor[status]
	return ok
}

// Registration is a self-service author sign-up. PasswordHash must already
// be hashed.
type Registration struct {
	FullName         string
	Email            string
	Phone            string
	PasswordHash     string
	ProfileImage     string
	StaffID          string
	Faculty          string
	Department       string
	Qualifications   string
	Biography        string
	AreasOfExpertise string
	OrcidID          string
	GoogleScholarID  string
	LinkedinURL      string
}

// ListFilter narrows List. Empty fields are ignored.
type ListFilter struct {
	Status  string
	Faculty string
	Search  string
}

// Repository handles all author database operations.
type Repository struct {
	db         *database.Adapter
	production *production.Repository
}

// NewRepository creates a new authors repository.
func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db, production: production.NewRepository(db)}
}

// CountActive returns the number of authors with an active account.
func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	count, err := r.db.ScalarInt(ctx, "count",
		"SELECT COUNT(*) as count FROM authors a JOIN users u ON a.user_id = u.id WHERE u.status = 'active'")
	if err != nil {
		return 0, fmt.Errorf("failed to count authors: %w", err)
	}
	return count, nil
}

// StaffIDTaken reports whether an author already uses the staff id.
func (r *Repository) StaffIDTaken(ctx context.Context, staffID string) (bool, error) {
	rows, err := r.db.QueryRows(ctx, "SELECT id FROM authors WHERE staff_id = ?", staffID)
	if err != nil {
		return false, fmt.Errorf("failed to check staff id: %w", err)
	}
	return len(rows) > 0, nil
}

type column struct {
	name  string
	value any
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// Register creates a pending author account and its profile. Only columns
// present in the live tables are written, so older databases without the
// profile columns still accept registrations.
func (r *Repository) Register(ctx context.Context, reg Registration) (userID, authorID int64, err error) {
	userCols, err := r.db.TableColumns(ctx, "users")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read users columns: %w", err)
	}
	authorCols, err := r.db.TableColumns(ctx, "authors")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read authors columns: %w", err)
	}

	user := []column{
		{"username", reg.Email},
		{"email", reg.Email},
		{"password", reg.PasswordHash},
		{"full_name", reg.FullName},
		{"role", "author"},
		{"status", "pending"},
		{"phone", nullable(reg.Phone)},
		{"profile_image", nullable(reg.ProfileImage)},
	}
	res, err := r.insert(ctx, "users", userCols, user)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create author account: %w", err)
	}
	userID = res.InsertID()

	author := []column{
		{"user_id", userID},
		{"staff_id", nullable(reg.StaffID)},
		{"faculty", nullable(reg.Faculty)},
		{"department", nullable(reg.Department)},
		{"qualifications", nullable(reg.Qualifications)},
		{"biography", nullable(reg.Biography)},
		{"areas_of_expertise", nullable(reg.AreasOfExpertise)},
		{"orcid_id", nullable(reg.OrcidID)},
		{"google_scholar_id", nullable(reg.GoogleScholarID)},
		{"linkedin_url", nullable(reg.LinkedinURL)},
		{"status", StatusPending},
	}
	res, err = r.insert(ctx, "authors", authorCols, author)
	if err != nil {
		return userID, 0, fmt.Errorf("failed to create author profile: %w", err)
	}
	return userID, res.InsertID(), nil
}

func (r *Repository) insert(ctx context.Context, table string, existing map[string]bool, cols []column) (*database.Result, error) {
	var names, marks []string
	var args []any
	for _, c := range cols {
		if !existing[c.name] {
			continue
		}
		names = append(names, c.name)
		marks = append(marks, "?")
		args = append(args, c.value)
	}

	query := "INSERT INTO " + table + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	return r.db.Execute(ctx, query, args...)
}

// List returns a page of authors with their book counts, newest accounts
// first. Status filters on the linked account status.
func (r *Repository) List(ctx context.Context, f ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	var where database.Filter
	where.Add("u.status = ?", f.Status)
	where.Add("a.faculty = ?", f.Faculty)
	where.AddLike("(u.full_name LIKE ? OR u.email LIKE ? OR a.staff_id LIKE ?)", f.Search)

	total, err := r.db.ScalarInt(ctx, "total",
		"SELECT COUNT(*) as total FROM authors a LEFT JOIN users u ON a.user_id = u.id WHERE 1=1"+where.SQL(),
		where.Args()...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to count authors: %w", err)
	}

	args := append(where.Args(), page.Limit, page.Offset())
	rows, err := r.db.QueryRows(ctx,
		"SELECT a.*, u.username, u.email, u.full_name, u.status as user_status, u.created_at"+
			" FROM authors a LEFT JOIN users u ON a.user_id = u.id WHERE 1=1"+where.SQL()+
			" ORDER BY u.created_at DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to list authors: %w", err)
	}

	for _, row := range rows {
		count, err := r.db.ScalarInt(ctx, "bookCount",
			"SELECT COUNT(*) as bookCount FROM books WHERE author_id = ?", row.Int("id"))
		if err != nil {
			return nil, database.Pagination{}, fmt.Errorf("failed to count author books: %w", err)
		}
		row["bookCount"] = count
	}
	return rows, page.Paginate(total), nil
}

// GetByID returns an author joined with their account, books, submissions
// and contracts.
func (r *Repository) GetByID(ctx context.Context, id int64) (database.Row, error) {
	author, err := r.db.QueryOne(ctx,
		"SELECT a.*, u.id as user_id, u.username, u.email, u.full_name, u.phone, u.profile_image, u.status as user_status, u.created_at"+
			" FROM authors a LEFT JOIN users u ON a.user_id = u.id WHERE a.id = ?", id)
	if errors.Is(err, database.ErrNoRows) {
		return nil, ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	related := []struct {
		key   string
		query string
	}{
		{"books", "SELECT id, title, status, created_at FROM books WHERE author_id = ? ORDER BY created_at DESC"},
		{"submissions", "SELECT s.*, b.title FROM submissions s JOIN books b ON s.book_id = b.id WHERE b.author_id = ? ORDER BY s.submission_date DESC"},
		{"contracts", "SELECT * FROM contracts WHERE author_id = ? ORDER BY created_at DESC"},
	}
	for _, rel := range related {
		rows, err := r.db.QueryRows(ctx, rel.query, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load author %s: %w", rel.key, err)
		}
		author[rel.key] = rows
	}
	return author, nil
}

// ProfileByUserID returns the author profile linked to an account, or nil
// when the account has none.
func (r *Repository) ProfileByUserID(ctx context.Context, userID int64) (database.Row, error) {
	row, err := r.db.QueryOne(ctx,
		"SELECT id, staff_id, faculty, department, qualifications, biography FROM authors WHERE user_id = ?", userID)
	if errors.Is(err, database.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author profile: %w", err)
	}
	return row, nil
}

// UpdateStatus sets an author's approval status and the matching status of
// the linked account.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	userStatus, ok := userStatusFor[status]
	if !ok {
		return ErrInvalidStatus
	}

	author, err := r.db.QueryOne(ctx, "SELECT id, user_id FROM authors WHERE id = ?", id)
	if errors.Is(err, database.ErrNoRows) {
		return ErrAuthorNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get author: %w", err)
	}

	if _, err := r.db.Execute(ctx, "UPDATE authors SET status = ? WHERE id = ?", status, id); err != nil {
		return fmt.Errorf("failed to update author status: %w", err)
	}

	res, err := r.db.Execute(ctx, "UPDATE users SET status = ? WHERE id = ?", userStatus, author.Int("user_id"))
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}
	if res.Affected() == 0 {
		return ErrLinkedUserNotFound
	}
	return nil
}
