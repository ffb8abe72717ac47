// Package events defines the messages exchanged over the event bus.
package events

import (
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries dispatch jobs from the API to the workers.
const Topic = "notimaster.dispatch"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	DispatchRequestedEvent EventType = "notification.dispatch.requested"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	WorkerID  string         `json:"worker_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// DispatchRequested asks a worker to run the inline dispatch path for a job.
type DispatchRequested struct {
	BaseEvent

	Job models.DispatchJob `json:"job"`
}

func (d DispatchRequested) GetType() EventType {
	return DispatchRequestedEvent
}
