// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(ctx, "editor@example.edu")
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unipress/publishing/internal/database"
)

const (
	RoleUser     = "user"
	RoleAuthor   = "author"
	RoleAdmin    = "admin"
	RoleEditor   = "editor"
	RoleReviewer = "reviewer"
)

const (
	StatusActive    = "active"
	StatusPending   = "pending"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// StaffRoles may sign in to the admin panel.
var StaffRoles = []string{RoleAdmin, RoleEditor, RoleReviewer}

var ErrUserNotFound = errors.New("user not found")

// User is an account row without its password hash exposed to JSON.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone,omitempty"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	ProfileImage string     `json:"profile_image,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// HasRole reports whether the user's role is one of roles.
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func userFromRow(row database.Row) *User {
	u := &User{
		ID:           row.Int("id"),
		Username:     row.String("username"),
		Email:        row.String("email"),
		PasswordHash: row.String("password"),
		FullName:     row.String("full_name"),
		Phone:        row.String("phone"),
		Role:         row.String("role"),
		Status:       row.String("status"),
		ProfileImage: row.String("profile_image"),
		CreatedAt:    row.Time("created_at"),
	}
	if row.Has("last_login") {
		t := row.Time("last_login")
		u.LastLogin = &t
	}
	return u
}

// NewUser holds the fields of an account to insert. PasswordHash must
// already be hashed.
type NewUser struct {
	Username      string
	Email         string
	PasswordHash  string
	FullName      string
	Phone         string
	Role          string
	Status        string
	EmailVerified bool
}

// ListFilter narrows List. Empty fields are ignored.
type ListFilter struct {
	Role   string
	Status string
	Search string
}

// Update replaces the editable profile fields of an account.
type Update struct {
	Username string
	Email    string
	FullName string
	Role     string
	Status   string
}

// Repository handles all user database operations.
type Repository struct {
	db *database.Adapter
}

// NewRepository creates a new users repository.
func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

// Create inserts an account and returns its id.
func (r *Repository) Create(ctx context.Context, u NewUser) (int64, error) {
	var phone any
	if u.Phone != "" {
		phone = u.Phone
	}

	res, err := r.db.Execute(ctx,
		"INSERT INTO users (username, email, password, full_name, phone, role, status, email_verified) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		u.Username, u.Email, u.PasswordHash, u.FullName, phone, u.Role, u.Status, u.EmailVerified)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return res.InsertID(), nil
}

// Exists reports whether an account uses the email or the username.
func (r *Repository) Exists(ctx context.Context, email, username string) (bool, error) {
	rows, err := r.db.QueryRows(ctx, "SELECT id FROM users WHERE email = ? OR username = ?", email, username)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return len(rows) > 0, nil
}

// EmailTaken reports whether an account uses the email.
func (r *Repository) EmailTaken(ctx context.Context, email string) (bool, error) {
	rows, err := r.db.QueryRows(ctx, "SELECT id FROM users WHERE email = ?", email)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return len(rows) > 0, nil
}

// GetByEmail retrieves an account by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "SELECT * FROM users WHERE email = ?", email)
}

// GetByID retrieves an account by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, "SELECT * FROM users WHERE id = ?", id)
}

func (r *Repository) getOne(ctx context.Context, query string, args ...any) (*User, error) {
	row, err := r.db.QueryOne(ctx, query, args...)
	if errors.Is(err, database.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userFromRow(row), nil
}

// MarkLogin records a successful sign-in.
func (r *Repository) MarkLogin(ctx context.Context, id int64) error {
	if _, err := r.db.Execute(ctx, "UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// List returns a page of accounts, newest first.
func (r *Repository) List(ctx context.Context, f ListFilter, page database.PageRequest) ([]database.Row, database.Pagination, error) {
	var where database.Filter
	where.Add("role = ?", f.Role)
	where.Add("status = ?", f.Status)
	where.AddLike("(username LIKE ? OR email LIKE ? OR full_name LIKE ?)", f.Search)

	total, err := r.db.ScalarInt(ctx, "total", "SELECT COUNT(*) as total FROM users WHERE 1=1"+where.SQL(), where.Args()...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to count users: %w", err)
	}

	args := append(where.Args(), page.Limit, page.Offset())
	rows, err := r.db.QueryRows(ctx,
		"SELECT id, username, email, full_name, role, status, last_login, created_at FROM users WHERE 1=1"+
			where.SQL()+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, database.Pagination{}, fmt.Errorf("failed to list users: %w", err)
	}
	return rows, page.Paginate(total), nil
}

// Update replaces an account's profile fields.
func (r *Repository) Update(ctx context.Context, id int64, u Update) error {
	res, err := r.db.Execute(ctx,
		"UPDATE users SET username = ?, email = ?, full_name = ?, role = ?, status = ? WHERE id = ?",
		u.Username, u.Email, u.FullName, u.Role, u.Status, id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.Affected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateStatus sets an account's status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.Execute(ctx, "UPDATE users SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	if res.Affected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes an account.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Execute(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.Affected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
