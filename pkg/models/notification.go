package models

import "time"

// Notification binds one trigger to an ordered set of connections.
type Notification struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"        validate:"required,min=1,max=255"`
	TriggerID   string      `json:"trigger_id"   validate:"required"`
	Enabled     bool        `json:"enabled"`
	Connections Connections `json:"connections"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// DispatchJob is the unit of work handed to the asynchronous queue when
// background processing is enabled.
type DispatchJob struct {
	ID             string         `json:"id"`
	NotificationID string         `json:"notification_id"`
	Connections    Connections    `json:"connections"`
	Trigger        TriggerContext `json:"trigger"`
	EnqueuedAt     time.Time      `json:"enqueued_at"`
}
