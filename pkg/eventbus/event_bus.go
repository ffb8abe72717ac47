// Package eventbus carries dispatch jobs between the API and the workers.
package eventbus

import (
	"context"

	"github.com/dukex/notimaster/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}

// newEvent returns an empty event for a wire type, or false when the type is
// not one this bus knows how to decode.
func newEvent(eventType events.EventType) (any, bool) {
	switch eventType {
	case events.DispatchRequestedEvent:
		return &events.DispatchRequested{}, true
	default:
		return nil, false
	}
}
