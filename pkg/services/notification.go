package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/notimaster/pkg/mergetags"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TriggerCatalog tells whether a trigger id exists.
type TriggerCatalog interface {
	Has(id string) bool
}

// IntegrationValidator checks connections against the registered integrations.
type IntegrationValidator interface {
	IsRegistered(id string) bool
	ValidateSettings(id string, settings map[string]any) error
}

type Notification struct {
	persistence  persistence.Persistence
	triggers     TriggerCatalog
	integrations IntegrationValidator
	validate     *validator.Validate
}

// NewNotification creates a new notification service.
func NewNotification(persistence persistence.Persistence, triggers TriggerCatalog, integrations IntegrationValidator) *Notification {
	return &Notification{
		persistence:  persistence,
		triggers:     triggers,
		integrations: integrations,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the persistence layer.
func (n *Notification) HealthCheck(ctx context.Context) (string, bool) {
	if n.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := n.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListNotificationsRequest filters the notification list.
type ListNotificationsRequest struct {
	TriggerID string
	Enabled   *bool
}

func (n *Notification) List(ctx context.Context, req ListNotificationsRequest) ([]*models.Notification, error) {
	all, err := n.persistence.NotificationRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]*models.Notification, 0, len(all))
	for _, notification := range all {
		if req.TriggerID != "" && notification.TriggerID != req.TriggerID {
			continue
		}

		if req.Enabled != nil && notification.Enabled != *req.Enabled {
			continue
		}

		out = append(out, notification)
	}

	return out, nil
}

// FetchByID retrieves a notification by its ID.
func (n *Notification) FetchByID(ctx context.Context, id string) (*models.Notification, error) {
	notification, err := n.persistence.NotificationRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if notification == nil {
		return nil, ErrNotificationNotFound
	}

	return notification, nil
}

// Create validates and stores a new notification.
func (n *Notification) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	notification.ID = ""
	notification.Connections = assignConnectionIDs(notification.Connections)

	err := n.Validate(notification)
	if err != nil {
		return nil, err
	}

	err = n.persistence.NotificationRepository().Save(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return notification, nil
}

// UpdateNotificationRequest holds the fields of a partial update. Nil fields are kept.
type UpdateNotificationRequest struct {
	Title       *string
	TriggerID   *string
	Enabled     *bool
	Connections *models.Connections
}

func (n *Notification) Update(ctx context.Context, id string, req UpdateNotificationRequest) (*models.Notification, error) {
	notification, err := n.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		notification.Title = *req.Title
	}

	if req.TriggerID != nil {
		notification.TriggerID = *req.TriggerID
	}

	if req.Enabled != nil {
		notification.Enabled = *req.Enabled
	}

	if req.Connections != nil {
		notification.Connections = assignConnectionIDs(*req.Connections)
	}

	err = n.Validate(notification)
	if err != nil {
		return nil, err
	}

	err = n.persistence.NotificationRepository().Save(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}

	return notification, nil
}

// SetEnabled toggles a notification without validating the rest of it.
func (n *Notification) SetEnabled(ctx context.Context, id string, enabled bool) (*models.Notification, error) {
	notification, err := n.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	notification.Enabled = enabled

	err = n.persistence.NotificationRepository().Save(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}

	return notification, nil
}

func (n *Notification) Delete(ctx context.Context, id string) error {
	return n.persistence.NotificationRepository().Delete(ctx, id)
}

// Validate checks a notification against the trigger catalog and the
// integration schemas.
func (n *Notification) Validate(notification *models.Notification) error {
	notification.Title = strings.TrimSpace(notification.Title)

	err := n.validate.Struct(notification)
	if err != nil {
		return NewValidationError("Validate", "INVALID_NOTIFICATION", err.Error(), ErrInvalidRequest)
	}

	if !n.triggers.Has(notification.TriggerID) {
		return NewValidationError("Validate", "UNKNOWN_TRIGGER",
			fmt.Sprintf("trigger '%s' does not exist", notification.TriggerID), ErrUnknownTrigger)
	}

	for id, connection := range notification.Connections.All() {
		err = n.validateConnection(id, connection)
		if err != nil {
			return err
		}
	}

	return nil
}

func (n *Notification) validateConnection(id string, connection models.Connection) error {
	err := n.validate.Struct(connection)
	if err != nil {
		return NewValidationError("Validate", "INVALID_CONNECTION",
			fmt.Sprintf("connection '%s': %v", id, err), ErrInvalidRequest)
	}

	if !n.integrations.IsRegistered(connection.Integration) {
		return NewValidationError("Validate", "UNKNOWN_INTEGRATION",
			fmt.Sprintf("connection '%s' uses unknown integration '%s'", id, connection.Integration), ErrUnknownIntegration)
	}

	err = n.integrations.ValidateSettings(connection.Integration, connection.Settings)
	if err != nil {
		return NewValidationError("Validate", "INVALID_SETTINGS",
			fmt.Sprintf("connection '%s': %v", id, err), ErrInvalidSettings)
	}

	err = mergetags.ValidateMap(connection.Settings)
	if err != nil {
		return NewValidationError("Validate", "INVALID_MERGE_TAG",
			fmt.Sprintf("connection '%s': %v", id, err), ErrInvalidMergeTag)
	}

	return nil
}

// assignConnectionIDs gives every connection stored under a blank id a new
// uuid, keeping the order of the mapping.
func assignConnectionIDs(connections models.Connections) models.Connections {
	var out models.Connections

	for id, connection := range connections.All() {
		if strings.TrimSpace(id) == "" {
			id = uuid.NewString()
		}

		out.Set(id, connection)
	}

	return out
}
