package models

import "time"

// LogStatus is the outcome of one delivery attempt.
type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusFailed  LogStatus = "failed"
)

// LogEntry records one connection delivery attempt.
type LogEntry struct {
	ID             string    `json:"id"`
	NotificationID string    `json:"notification_id"`
	ConnectionID   string    `json:"connection_id"`
	Integration    string    `json:"integration"`
	TriggerID      string    `json:"trigger_id,omitempty"`
	Status         LogStatus `json:"status"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
