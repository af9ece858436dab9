package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/unipress/publishing/internal/database/contracts"
	"github.com/unipress/publishing/internal/database/notifications"
)

const (
	ContractRemindersQueue = "contract_expiry_reminders"

	// ReminderDaysSetting is the settings key that overrides the reminder window.
	ReminderDaysSetting = "contract_reminder_days"

	defaultReminderDays = 30
)

type ExpiringContracts interface {
	ExpiringWithin(ctx context.Context, days int) ([]contracts.Expiring, error)
}

type Notifier interface {
	SentToday(ctx context.Context, userID int64, typ, entityType string, entityID int64) (bool, error)
	Create(ctx context.Context, n notifications.Notification) (int64, error)
}

type IntSettings interface {
	GetInt(ctx context.Context, key string, fallback int) int
}

// ContractRemindersTask notifies authors whose active contracts end within
// Days days. Zero means the contract_reminder_days setting decides.
type ContractRemindersTask struct {
	Days int `json:"days,omitempty"`
}

func (t ContractRemindersTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        ContractRemindersQueue,
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

// ContractReminders holds what the reminder processor reads and writes.
type ContractReminders struct {
	Contracts     ExpiringContracts
	Notifications Notifier
	Settings      IntSettings
	DefaultDays   int
}

func (r ContractReminders) days(ctx context.Context, requested int) int {
	if requested > 0 {
		return requested
	}
	fallback := r.DefaultDays
	if fallback <= 0 {
		fallback = defaultReminderDays
	}
	if r.Settings == nil {
		return fallback
	}
	if days := r.Settings.GetInt(ctx, ReminderDaysSetting, fallback); days > 0 {
		return days
	}
	return fallback
}

// Send creates one notification per expiring contract and returns how many
// were created. Contracts whose author has no linked account, or who was
// already reminded today, are skipped.
func (r ContractReminders) Send(ctx context.Context, requestedDays int) (int, error) {
	if r.Contracts == nil || r.Notifications == nil {
		return 0, fmt.Errorf("contract reminders not configured")
	}

	days := r.days(ctx, requestedDays)
	expiring, err := r.Contracts.ExpiringWithin(ctx, days)
	if err != nil {
		return 0, fmt.Errorf("load expiring contracts: %w", err)
	}

	sent := 0
	for _, c := range expiring {
		if c.UserID == 0 {
			continue
		}

		already, err := r.Notifications.SentToday(ctx, c.UserID, notifications.TypeContractExpiry, "contract", c.ID)
		if err != nil {
			return sent, err
		}
		if already {
			continue
		}

		if _, err := r.Notifications.Create(ctx, reminderFor(c)); err != nil {
			return sent, err
		}
		sent++
	}

	log.Printf("[TASK] Sent %d contract expiry reminders (%d contracts within %d days)", sent, len(expiring), days)
	return sent, nil
}

func reminderFor(c contracts.Expiring) notifications.Notification {
	subject := c.ContractNumber
	if c.BookTitle != "" {
		subject = fmt.Sprintf("%s (%s)", c.ContractNumber, c.BookTitle)
	}

	when := "today"
	switch {
	case c.DaysLeft == 1:
		when = "in 1 day"
	case c.DaysLeft > 1:
		when = fmt.Sprintf("in %d days", c.DaysLeft)
	}

	return notifications.Notification{
		UserID:     c.UserID,
		Type:       notifications.TypeContractExpiry,
		Title:      "Contract expiring soon",
		Message:    fmt.Sprintf("Contract %s expires %s.", subject, when),
		EntityType: "contract",
		EntityID:   c.ID,
	}
}

func ContractRemindersProcessor(r ContractReminders) backlite.QueueProcessor[ContractRemindersTask] {
	return func(ctx context.Context, task ContractRemindersTask) error {
		_, err := r.Send(ctx, task.Days)
		return err
	}
}

func NewContractRemindersQueue(r ContractReminders) backlite.Queue {
	return backlite.NewQueue(ContractRemindersProcessor(r))
}
