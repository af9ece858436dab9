// Package notifications stores per-user notices such as contract expiry
// reminders.
package notifications

import (
	"context"
	"fmt"
	"strconv"

	"github.com/unipress/publishing/internal/database"
)

const TypeContractExpiry = "contract_expiry"

// Notification is a notice addressed to one account.
type Notification struct {
	UserID     int64
	Type       string
	Title      string
	Message    string
	EntityType string
	EntityID   int64
}

type Repository struct {
	db *database.Adapter
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

// Create stores a notification and returns its id.
func (r *Repository) Create(ctx context.Context, n Notification) (int64, error) {
	var entityType, entityID any
	if n.EntityType != "" {
		entityType = n.EntityType
		entityID = n.EntityID
	}

	res, err := r.db.Execute(ctx,
		"INSERT INTO notifications (user_id, type, title, message, entity_type, entity_id) VALUES (?, ?, ?, ?, ?, ?)",
		n.UserID, n.Type, n.Title, n.Message, entityType, entityID)
	if err != nil {
		return 0, fmt.Errorf("failed to create notification: %w", err)
	}
	return res.InsertID(), nil
}

// SentToday reports whether the user already received a notification of
// this type about the entity today.
func (r *Repository) SentToday(ctx context.Context, userID int64, typ, entityType string, entityID int64) (bool, error) {
	rows, err := r.db.QueryRows(ctx,
		"SELECT id FROM notifications WHERE user_id = ? AND type = ? AND entity_type = ? AND entity_id = ? AND DATE(created_at) = CURDATE()",
		userID, typ, entityType, entityID)
	if err != nil {
		return false, fmt.Errorf("failed to check notifications: %w", err)
	}
	return len(rows) > 0, nil
}

// ListForUser returns the user's latest notifications, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID int64, limit int) ([]database.Row, error) {
	if limit <= 0 {
		limit = database.DefaultPageLimit
	}

	rows, err := r.db.QueryRows(ctx,
		"SELECT id, type, title, message, entity_type, entity_id, read_at, created_at FROM notifications WHERE user_id = ? ORDER BY created_at DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return rows, nil
}

// DeleteReadOlderThan removes read notifications created more than days
// days ago and returns how many were deleted.
func (r *Repository) DeleteReadOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("retention must be positive, got %d days", days)
	}

	// DATE_SUB only translates with a literal interval.
	res, err := r.db.Execute(ctx,
		"DELETE FROM notifications WHERE read_at IS NOT NULL AND created_at < DATE_SUB(CURDATE(), INTERVAL "+strconv.Itoa(days)+" DAY)")
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}
	return res.Affected(), nil
}
