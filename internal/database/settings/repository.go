// Package settings provides database operations for site settings.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	days := repo.GetInt(ctx, "contract_reminder_days", 30)
package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/dialect"
)

var ErrSettingNotFound = errors.New("setting not found")

// Repository handles all settings database operations.
type Repository struct {
	db *database.Adapter
}

// NewRepository creates a new settings repository.
func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db}
}

// All returns every setting grouped by category.
func (r *Repository) All(ctx context.Context) (map[string][]database.Row, error) {
	rows, err := r.db.QueryRows(ctx, "SELECT * FROM settings ORDER BY category, setting_key")
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	grouped := make(map[string][]database.Row)
	for _, row := range rows {
		category := row.String("category")
		grouped[category] = append(grouped[category], row)
	}
	return grouped, nil
}

// Get retrieves a setting value by key.
func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	row, err := r.db.QueryOne(ctx, "SELECT setting_value FROM settings WHERE setting_key = ?", key)
	if errors.Is(err, database.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return row.String("setting_value"), nil
}

// GetInt reads a numeric setting, returning fallback when it is missing,
// unreadable or not a number.
func (r *Repository) GetInt(ctx context.Context, key string, fallback int) int {
	value, err := r.Get(ctx, key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// Set creates or updates a setting.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	query := "INSERT INTO settings (setting_key, setting_value) VALUES (?, ?) ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value), updated_at = CURRENT_TIMESTAMP"
	if r.db.Engine() == dialect.Postgres {
		query = "INSERT INTO settings (setting_key, setting_value) VALUES (?, ?) ON CONFLICT (setting_key) DO UPDATE SET setting_value = EXCLUDED.setting_value, updated_at = CURRENT_TIMESTAMP"
	}

	if _, err := r.db.Execute(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// SetMany saves every key in values, in key order.
func (r *Repository) SetMany(ctx context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := r.Set(ctx, k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a setting by key.
func (r *Repository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Execute(ctx, "DELETE FROM settings WHERE setting_key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
