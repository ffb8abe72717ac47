// Package dispatcher fans a fired notification out to its configured
// integrations, inline or through the asynchronous job queue.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/otelhelper"
	"github.com/dukex/notimaster/pkg/protocol"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrQueueUnavailable is returned when background processing is enabled but
// no queue was configured.
var ErrQueueUnavailable = errors.New("background processing enabled but no queue configured")

// Resolver looks integrations up by identifier.
type Resolver interface {
	Resolve(id string) (protocol.Integration, bool)
}

// SettingsReader reads a single setting, returning def when it is unset.
type SettingsReader interface {
	GetSetting(ctx context.Context, key string, def any) any
}

// Queue accepts a whole dispatch batch for asynchronous processing.
type Queue interface {
	Enqueue(ctx context.Context, job models.DispatchJob) error
}

type Dispatcher struct {
	resolver  Resolver
	settings  SettingsReader
	queue     Queue
	observers []Observer
	tracer    trace.Tracer
	logger    *slog.Logger
}

type Option func(*Dispatcher)

// WithObservers appends observers; they run in the order given.
func WithObservers(observers ...Observer) Option {
	return func(d *Dispatcher) {
		d.observers = append(d.observers, observers...)
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = tracer
	}
}

// New builds a dispatcher. queue may be nil when background processing is
// never enabled.
func New(resolver Resolver, settings SettingsReader, queue Queue, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		settings: settings,
		queue:    queue,
		logger:   logger.With("module", "dispatcher"),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dispatch delivers every eligible connection of a notification. When the
// background_processing setting is on, the whole batch is enqueued once and
// nothing is delivered inline; an enqueue failure is returned as is.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	connections models.Connections,
	trigger models.TriggerContext,
	notificationID string,
) error {
	if !d.backgroundProcessing(ctx) {
		return d.Process(ctx, connections, trigger, notificationID)
	}

	if d.queue == nil {
		return ErrQueueUnavailable
	}

	job := models.DispatchJob{
		NotificationID: notificationID,
		Connections:    connections,
		Trigger:        trigger,
		EnqueuedAt:     time.Now().UTC(),
	}

	err := d.queue.Enqueue(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification %s: %w", notificationID, err)
	}

	d.logger.DebugContext(ctx, "Enqueued notification for background processing",
		"notification_id", notificationID,
		"connections", connections.Len(),
	)

	return nil
}

// Process runs the inline path: connections are visited in insertion order,
// disabled or unresolvable ones are skipped silently, and each remaining one
// is wrapped by the before and after observer hooks. Delivery errors are
// logged and handed to the after hooks; they never stop the batch. An
// observer error aborts the remaining batch.
func (d *Dispatcher) Process(
	ctx context.Context,
	connections models.Connections,
	trigger models.TriggerContext,
	notificationID string,
) error {
	for id, conn := range connections.All() {
		if !conn.IsEnabled() {
			d.logger.DebugContext(ctx, "Skipping disabled connection", "connection_id", id)

			continue
		}

		integration, ok := d.resolver.Resolve(conn.Integration)
		if !ok {
			d.logger.DebugContext(ctx, "Skipping connection with unregistered integration",
				"connection_id", id,
				"integration", conn.Integration,
			)

			continue
		}

		attempt := Attempt{
			ConnectionID:   id,
			Integration:    conn.Integration,
			Settings:       conn.Settings,
			Trigger:        trigger,
			NotificationID: notificationID,
		}

		for _, observer := range d.observers {
			err := observer.BeforeDispatch(ctx, attempt)
			if err != nil {
				return fmt.Errorf("before dispatch hook failed for connection %s: %w", id, err)
			}
		}

		deliveryErr := d.deliver(ctx, integration, attempt)

		for _, observer := range d.observers {
			err := observer.AfterDispatch(ctx, attempt, deliveryErr)
			if err != nil {
				return fmt.Errorf("after dispatch hook failed for connection %s: %w", id, err)
			}
		}
	}

	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, integration protocol.Integration, attempt Attempt) error {
	logger := d.logger.With(
		"notification_id", attempt.NotificationID,
		"connection_id", attempt.ConnectionID,
		"integration", attempt.Integration,
	)

	var span trace.Span
	if d.tracer != nil {
		ctx, span = otelhelper.StartSpan(ctx, d.tracer, "dispatcher.deliver",
			attribute.String(otelhelper.NotificationIDKey, attempt.NotificationID),
			attribute.String(otelhelper.ConnectionIDKey, attempt.ConnectionID),
			attribute.String(otelhelper.IntegrationIDKey, attempt.Integration),
		)
		defer span.End()
	}

	err := integration.Process(ctx, protocol.Delivery{
		ConnectionID:   attempt.ConnectionID,
		NotificationID: attempt.NotificationID,
		Settings:       attempt.Settings,
		Trigger:        attempt.Trigger,
		Logger:         logger,
	})
	if err != nil {
		logger.WarnContext(ctx, "Integration delivery failed", "error", err)

		if span != nil {
			otelhelper.SetError(span, err)
		}
	}

	return err
}

func (d *Dispatcher) backgroundProcessing(ctx context.Context) bool {
	if d.settings == nil {
		return false
	}

	return truthy(d.settings.GetSetting(ctx, models.SettingBackgroundProcessing, false))
}

// truthy interprets loosely typed setting values the way they are stored by
// the different backends.
func truthy(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(value))

		return err == nil && b
	case int:
		return value != 0
	case int64:
		return value != 0
	case float64:
		return value != 0
	default:
		return false
	}
}
