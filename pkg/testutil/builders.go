// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNotification creates a test Notification with default values that can be overridden.
func CreateTestNotification(overrides ...func(*models.Notification)) *models.Notification {
	now := time.Now().UTC().Truncate(time.Millisecond)

	notification := &models.Notification{
		ID:        uuid.New().String(),
		Title:     "Post published",
		TriggerID: "post.published",
		Enabled:   true,
		Connections: models.NewConnections(models.ConnectionEntry{
			ID: uuid.New().String(),
			Connection: models.Connection{
				Integration: "log",
				Settings:    map[string]any{"message": "{{post.title}} was published"},
			},
		}),
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(notification)
	}

	return notification
}

// WithTrigger binds the notification to another trigger.
func WithTrigger(triggerID string) func(*models.Notification) {
	return func(n *models.Notification) {
		n.TriggerID = triggerID
	}
}

// WithTitle sets the notification title.
func WithTitle(title string) func(*models.Notification) {
	return func(n *models.Notification) {
		n.Title = title
	}
}

// Disabled turns the notification off.
func Disabled() func(*models.Notification) {
	return func(n *models.Notification) {
		n.Enabled = false
	}
}

// WithConnections replaces the connections of the notification.
func WithConnections(entries ...models.ConnectionEntry) func(*models.Notification) {
	return func(n *models.Notification) {
		n.Connections = models.NewConnections(entries...)
	}
}

// CreateTestLogEntry creates a test LogEntry.
func CreateTestLogEntry(notificationID string, createdAt time.Time) *models.LogEntry {
	return &models.LogEntry{
		ID:             uuid.New().String(),
		NotificationID: notificationID,
		ConnectionID:   uuid.New().String(),
		Integration:    "log",
		TriggerID:      "post.published",
		Status:         models.LogStatusSuccess,
		CreatedAt:      createdAt.UTC().Truncate(time.Millisecond),
	}
}
