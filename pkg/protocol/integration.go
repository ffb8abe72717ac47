// Package protocol defines the contracts for pluggable integrations and trigger sources.
package protocol

import (
	"context"
	"log/slog"

	"github.com/dukex/notimaster/pkg/models"
)

// Delivery is everything an integration needs to send one connection of a
// fired notification.
type Delivery struct {
	ConnectionID   string
	NotificationID string
	Settings       map[string]any
	Trigger        models.TriggerContext
	Logger         *slog.Logger
}

// Integration delivers a notification through one channel (email, webhook,
// Discord, web push...).
type Integration interface {
	// Process performs the send. The returned error is the integration's own
	// report; the dispatcher never retries it.
	Process(ctx context.Context, delivery Delivery) error
}

// IntegrationFunc adapts a function to the Integration interface.
type IntegrationFunc func(ctx context.Context, delivery Delivery) error

func (f IntegrationFunc) Process(ctx context.Context, delivery Delivery) error {
	return f(ctx, delivery)
}

// Dependencies contains the shared collaborators integrations may need.
type Dependencies struct {
	Logger *slog.Logger
}

// IntegrationFactory creates an integration and describes it.
type IntegrationFactory interface {
	// Create builds the integration instance stored in the registry.
	Create(deps Dependencies) (Integration, error)

	// ID returns the identifier connections use to reference this integration.
	ID() string

	// Name returns the human-readable name.
	Name() string

	// Description returns what this integration does.
	Description() string

	// Schema returns the JSON schema of the connection settings.
	Schema() map[string]any
}
