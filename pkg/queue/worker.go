package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/notimaster/pkg/eventbus"
	"github.com/dukex/notimaster/pkg/events"
	"github.com/dukex/notimaster/pkg/models"
)

// Processor runs the inline dispatch path.
type Processor interface {
	Process(ctx context.Context, connections models.Connections, trigger models.TriggerContext, notificationID string) error
}

// Worker consumes dispatch jobs and hands them to the processor. It never
// enqueues again, whatever the background_processing setting says.
type Worker struct {
	id        string
	bus       eventbus.EventBus
	processor Processor
	logger    *slog.Logger
}

func NewWorker(id string, bus eventbus.EventBus, processor Processor, logger *slog.Logger) *Worker {
	return &Worker{
		id:        id,
		bus:       bus,
		processor: processor,
		logger:    logger.With("module", "dispatch-worker", "worker_id", id),
	}
}

// Start registers the handler and begins consuming. It returns once the
// subscription is established.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting dispatch worker")

	err := w.bus.Handle(events.DispatchRequestedEvent, w.handle)
	if err != nil {
		return fmt.Errorf("failed to register dispatch handler: %w", err)
	}

	err = w.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to dispatch jobs: %w", err)
	}

	return nil
}

func (w *Worker) handle(ctx context.Context, event any) error {
	requested, ok := event.(*events.DispatchRequested)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	job := requested.Job
	logger := w.logger.With("job_id", job.ID, "notification_id", job.NotificationID)
	logger.DebugContext(ctx, "Processing dispatch job", "connections", job.Connections.Len())

	err := w.processor.Process(ctx, job.Connections, job.Trigger, job.NotificationID)
	if err != nil {
		logger.ErrorContext(ctx, "Dispatch job failed", "error", err)

		return err
	}

	return nil
}
