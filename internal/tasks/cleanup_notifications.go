package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

const CleanupNotificationsQueue = "cleanup_notifications"

type NotificationCleaner interface {
	DeleteReadOlderThan(ctx context.Context, days int) (int64, error)
}

// CleanupNotificationsTask removes read notifications older than RetentionDays.
type CleanupNotificationsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupNotificationsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        CleanupNotificationsQueue,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func CleanupNotificationsProcessor(cleaner NotificationCleaner) backlite.QueueProcessor[CleanupNotificationsTask] {
	return func(ctx context.Context, task CleanupNotificationsTask) error {
		if cleaner == nil {
			return fmt.Errorf("notification cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 90
		}

		deleted, err := cleaner.DeleteReadOlderThan(ctx, retentionDays)
		if err != nil {
			return fmt.Errorf("cleanup notifications: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d read notifications older than %d days", deleted, retentionDays)
		return nil
	}
}

func NewCleanupNotificationsQueue(cleaner NotificationCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupNotificationsProcessor(cleaner))
}
