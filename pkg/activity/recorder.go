// Package activity writes the delivery log.
package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/notimaster/pkg/dispatcher"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/google/uuid"
)

// Store persists log entries.
type Store interface {
	Save(ctx context.Context, entry *models.LogEntry) error
}

// Recorder writes one log entry per delivery attempt while logging is enabled.
// Store failures are logged and never abort a batch.
type Recorder struct {
	store    Store
	settings dispatcher.SettingsReader
	logger   *slog.Logger
	now      func() time.Time
}

func NewRecorder(store Store, settings dispatcher.SettingsReader, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:    store,
		settings: settings,
		logger:   logger.With("module", "activity"),
		now:      time.Now,
	}
}

func (r *Recorder) BeforeDispatch(context.Context, dispatcher.Attempt) error {
	return nil
}

func (r *Recorder) AfterDispatch(ctx context.Context, attempt dispatcher.Attempt, deliveryErr error) error {
	enabled, _ := r.settings.GetSetting(ctx, models.SettingLoggingEnabled, true).(bool)
	if !enabled {
		return nil
	}

	entry := &models.LogEntry{
		ID:             uuid.NewString(),
		NotificationID: attempt.NotificationID,
		ConnectionID:   attempt.ConnectionID,
		Integration:    attempt.Integration,
		TriggerID:      attempt.TriggerID(),
		Status:         models.LogStatusSuccess,
		CreatedAt:      r.now().UTC(),
	}

	if deliveryErr != nil {
		entry.Status = models.LogStatusFailed
		entry.Error = deliveryErr.Error()
	}

	if err := r.store.Save(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "Failed to record delivery",
			"notification_id", attempt.NotificationID,
			"connection_id", attempt.ConnectionID,
			"error", err,
		)
	}

	return nil
}
