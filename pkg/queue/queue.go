// Package queue implements the asynchronous dispatch path on top of the event bus.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/notimaster/pkg/eventbus"
	"github.com/dukex/notimaster/pkg/events"
	"github.com/dukex/notimaster/pkg/models"
)

// Counter is told about every accepted job.
type Counter interface {
	JobEnqueued()
}

// Queue publishes dispatch jobs for the workers.
type Queue struct {
	publisher eventbus.EventPublisher
	idgen     func() string
	counter   Counter
}

type Option func(*Queue)

func WithCounter(counter Counter) Option {
	return func(q *Queue) {
		q.counter = counter
	}
}

func New(bus eventbus.EventBus, opts ...Option) *Queue {
	q := &Queue{publisher: bus, idgen: bus.GenerateID}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Enqueue publishes the job, assigning an id and timestamp when missing. The
// notification id is the partition key so jobs of one notification stay in order.
func (q *Queue) Enqueue(ctx context.Context, job models.DispatchJob) error {
	if job.ID == "" {
		job.ID = q.idgen()
	}

	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	event := events.DispatchRequested{
		BaseEvent: events.NewBaseEvent(events.DispatchRequestedEvent),
		Job:       job,
	}

	err := q.publisher.Publish(ctx, job.NotificationID, event)
	if err != nil {
		return fmt.Errorf("failed to publish dispatch job %s: %w", job.ID, err)
	}

	if q.counter != nil {
		q.counter.JobEnqueued()
	}

	return nil
}
