package triggers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/notimaster/pkg/models"
)

var ErrUnknownTrigger = errors.New("unknown trigger")

// NotificationFinder returns the enabled notifications bound to a trigger.
type NotificationFinder interface {
	GetByTrigger(ctx context.Context, triggerID string) ([]*models.Notification, error)
}

// Dispatcher receives one call per notification of a fired trigger.
type Dispatcher interface {
	Dispatch(ctx context.Context, connections models.Connections, trigger models.TriggerContext, notificationID string) error
}

type Service struct {
	catalog    *Catalog
	finder     NotificationFinder
	dispatcher Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(catalog *Catalog, finder NotificationFinder, dispatcher Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		catalog:    catalog,
		finder:     finder,
		dispatcher: dispatcher,
		logger:     logger.With("module", "trigger_service"),
		now:        time.Now,
	}
}

// Fire dispatches every enabled notification bound to triggerID exactly once
// and returns how many were dispatched. The first dispatch error stops the
// loop and is returned along with the count so far.
func (s *Service) Fire(ctx context.Context, triggerID string, data models.TriggerContext) (int, error) {
	if !s.catalog.Has(triggerID) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTrigger, triggerID)
	}

	notifications, err := s.finder.GetByTrigger(ctx, triggerID)
	if err != nil {
		return 0, fmt.Errorf("failed to load notifications for %s: %w", triggerID, err)
	}

	trigger := data.Clone()
	trigger[models.TriggerContextTriggerIDKey] = triggerID
	trigger[models.TriggerContextFiredAtKey] = s.now().UTC().Format(time.RFC3339)

	dispatched := 0

	for _, notification := range notifications {
		if !notification.Enabled {
			continue
		}

		err := s.dispatcher.Dispatch(ctx, notification.Connections, trigger, notification.ID)
		if err != nil {
			return dispatched, fmt.Errorf("failed to dispatch notification %s: %w", notification.ID, err)
		}

		dispatched++
	}

	s.logger.InfoContext(ctx, "Trigger fired",
		"trigger_id", triggerID,
		"notifications", dispatched,
	)

	return dispatched, nil
}
