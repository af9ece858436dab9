// Package training provides database operations for training registrations.
package training

import (
	"context"
	"errors"
	"fmt"

	"github.com/unipress/publishing/internal/database"
)

var ErrRegistrationNotFound = errors.New("registration not found")

// Registration is a public sign-up for a training session.
type Registration struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	StudentID     string `json:"student_id"`
	Faculty       string `json:"faculty"`
	Department    string `json:"department"`
	Level         string `json:"level"`
	TrainingType  string `json:"training_type"`
	PreferredDate string `json:"preferred_date"`
}

// Outcome records how a registration went.
type Outcome struct {
	Status            string `json:"status"`
	Attendance        bool   `json:"attendance"`
	CertificateIssued bool   `json:"certificate_issued"`
	Feedback          string `json:"feedback"`
}

type ListFilter struct {
	Status string
	Type   string
	Mode   string
}

type Repository struct {
	db *database.Adapter
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

// CountCompleted returns the number of completed registrations.
func (r *Repository) CountCompleted(ctx context.Context) (int64, error) {
	count, err := r.db.ScalarInt(ctx, "count",
		"SELECT COUNT(*) as count FROM training_registrations WHERE status = 'completed'")
	if err != nil {
		return 0, fmt.Errorf("failed to count training: %w", err)
	}
	return count, nil
}

// Register stores a pending registration and returns its id.
func (r *Repository) Register(ctx context.Context, reg Registration) (int64, error) {
	var preferred any
	if reg.PreferredDate != "" {
		preferred = reg.PreferredDate
	}

	res, err := r.db.Execute(ctx, `INSERT INTO training_registrations
		(full_name, email, student_id, faculty, department, level, training_type, preferred_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'pending')`,
		reg.FullName, reg.Email, reg.StudentID, reg.Faculty, reg.Department, reg.Level, reg.TrainingType, preferred)
	if err != nil {
		return 0, fmt.Errorf("failed to register for training: %w", err)
	}
	return res.InsertID(), nil
}

// List returns registrations, newest first.
func (r *Repository) List(ctx context.Context, f ListFilter, page database.PageRequest) ([]database.Row, error) {
	var where database.Filter
	where.Add("status = ?", f.Status)
	where.Add("training_type = ?", f.Type)
	where.Add("training_mode = ?", f.Mode)

	args := append(where.Args(), page.Limit, page.Offset())
	rows, err := r.db.QueryRows(ctx,
		"SELECT * FROM training_registrations WHERE 1=1"+where.SQL()+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list training registrations: %w", err)
	}
	return rows, nil
}

// UpdateOutcome records the status, attendance and feedback of a
// registration.
func (r *Repository) UpdateOutcome(ctx context.Context, id int64, o Outcome) error {
	res, err := r.db.Execute(ctx, `UPDATE training_registrations
		SET status = ?, attendance = ?, certificate_issued = ?, feedback = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		o.Status, o.Attendance, o.CertificateIssued, o.Feedback, id)
	if err != nil {
		return fmt.Errorf("failed to update training registration: %w", err)
	}
	if res.Affected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}
