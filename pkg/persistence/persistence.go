// Package persistence provides the storage abstraction for notifications,
// settings, activity logs and push subscriptions.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/notimaster/pkg/models"
)

type Persistence interface {
	NotificationRepository() NotificationRepository
	SettingsRepository() SettingsRepository
	LogRepository() LogRepository
	SubscriptionRepository() SubscriptionRepository

	// GetSetting returns the stored value of a settings key, or def when the
	// key is unknown or the settings cannot be read.
	GetSetting(ctx context.Context, key string, def any) any

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// NotificationRepository stores notifications and their connections.
type NotificationRepository interface {
	GetAll(ctx context.Context) ([]*models.Notification, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// GetByTrigger returns the enabled notifications bound to a trigger,
	// oldest first.
	GetByTrigger(ctx context.Context, triggerID string) ([]*models.Notification, error)
	Save(ctx context.Context, notification *models.Notification) error
	Delete(ctx context.Context, id string) error
}

type SettingsRepository interface {
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, settings models.Settings) error
}

// ListLogsOptions filters and paginates activity log queries.
type ListLogsOptions struct {
	NotificationID string
	Limit          int
	Offset         int
}

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

// Normalize applies the default and maximum page size.
func (o ListLogsOptions) Normalize() ListLogsOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLogLimit
	}

	if o.Limit > MaxLogLimit {
		o.Limit = MaxLogLimit
	}

	if o.Offset < 0 {
		o.Offset = 0
	}

	return o
}

type LogListResult struct {
	Entries    []*models.LogEntry `json:"entries"`
	TotalCount int64              `json:"total_count"`
}

// LogRepository stores delivery activity, newest first.
type LogRepository interface {
	Save(ctx context.Context, entry *models.LogEntry) error
	List(ctx context.Context, opts ListLogsOptions) (*LogListResult, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Clear(ctx context.Context) error
}

// SubscriptionRepository stores browser push subscriptions, unique by endpoint.
type SubscriptionRepository interface {
	Save(ctx context.Context, subscription *models.PushSubscription) error
	GetAll(ctx context.Context) ([]*models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

// LookupSetting resolves key from settings, falling back to def.
func LookupSetting(settings models.Settings, err error, key string, def any) any {
	if err != nil {
		return def
	}

	value, ok := settings.Lookup(key)
	if !ok {
		return def
	}

	return value
}
