// Package contacts stores messages sent through the contact form.
package contacts

import (
	"context"
	"fmt"

	"github.com/unipress/publishing/internal/database"
)

// Message is a contact form submission.
type Message struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

type Repository struct {
	db *database.Adapter
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

// Create stores a new message and returns its id. Category defaults to
// "general".
func (r *Repository) Create(ctx context.Context, m Message) (int64, error) {
	category := m.Category
	if category == "" {
		category = "general"
	}
	var phone any
	if m.Phone != "" {
		phone = m.Phone
	}

	res, err := r.db.Execute(ctx, `INSERT INTO contacts
		(name, email, phone, subject, message, category, status)
		VALUES (?, ?, ?, ?, ?, ?, 'new')`,
		m.Name, m.Email, phone, m.Subject, m.Message, category)
	if err != nil {
		return 0, fmt.Errorf("failed to save contact message: %w", err)
	}
	return res.InsertID(), nil
}

// CountNew returns the number of unanswered messages.
func (r *Repository) CountNew(ctx context.Context) (int64, error) {
	count, err := r.db.ScalarInt(ctx, "count", "SELECT COUNT(*) as count FROM contacts WHERE status = 'new'")
	if err != nil {
		return 0, fmt.Errorf("failed to count contact messages: %w", err)
	}
	return count, nil
}
