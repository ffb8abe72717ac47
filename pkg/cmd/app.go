package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/notimaster/pkg/activity"
	"github.com/dukex/notimaster/pkg/config"
	"github.com/dukex/notimaster/pkg/dispatcher"
	"github.com/dukex/notimaster/pkg/eventbus"
	"github.com/dukex/notimaster/pkg/metrics"
	"github.com/dukex/notimaster/pkg/otelhelper"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/dukex/notimaster/pkg/queue"
	"github.com/dukex/notimaster/pkg/registry"
	"github.com/dukex/notimaster/pkg/triggers"
	"go.opentelemetry.io/otel/trace"
)

// AppOptions selects the backends of an App.
type AppOptions struct {
	ServiceName string
	DatabaseURL string
	// EventBus is empty when the process never enqueues or consumes jobs.
	EventBus string
}

// App wires every component a binary needs.
type App struct {
	Config      config.Config
	Persistence persistence.Persistence
	Registry    *registry.Registry
	EventBus    eventbus.EventBus
	Queue       *queue.Queue
	Metrics     *metrics.Collector
	Tracer      trace.Tracer
	Dispatcher  *dispatcher.Dispatcher
	Catalog     *triggers.Catalog
	Triggers    *triggers.Service

	closers []func(context.Context) error
}

func NewApp(ctx context.Context, logger *slog.Logger, opts AppOptions) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Catalog: triggers.DefaultCatalog(), Tracer: otelhelper.NoopTracer()}

	err = app.build(ctx, logger, opts)
	if err != nil {
		_ = app.Close(ctx)

		return nil, err
	}

	return app, nil
}

func (a *App) build(ctx context.Context, logger *slog.Logger, opts AppOptions) error {
	if a.Config.Tracing.Enabled() {
		tracer, shutdown, err := otelhelper.NewTracer(ctx, opts.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		a.Tracer = tracer
		a.closers = append(a.closers, shutdown)
	}

	p, err := NewPersistence(ctx, logger, opts.DatabaseURL)
	if err != nil {
		return err
	}

	a.Persistence = p
	a.closers = append(a.closers, p.Close)

	a.Registry, err = NewRegistry(logger, a.Config, p.SubscriptionRepository())
	if err != nil {
		return err
	}

	a.Metrics, err = metrics.NewCollector()
	if err != nil {
		return fmt.Errorf("failed to create metrics collector: %w", err)
	}

	var q dispatcher.Queue

	if opts.EventBus != "" {
		a.EventBus, err = NewEventBus(ctx, opts.EventBus, a.Config, logger)
		if err != nil {
			return err
		}

		a.closers = append(a.closers, func(context.Context) error { return a.EventBus.Close() })
		a.Queue = queue.New(a.EventBus, queue.WithCounter(a.Metrics))
		q = a.Queue
	}

	a.Dispatcher = dispatcher.New(a.Registry, p, q, logger,
		dispatcher.WithObservers(activity.NewRecorder(p.LogRepository(), p, logger), a.Metrics),
		dispatcher.WithTracer(a.Tracer),
	)

	a.Triggers = triggers.NewService(a.Catalog, p.NotificationRepository(), a.Dispatcher, logger)

	return nil
}

// Close releases resources in reverse creation order.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	a.closers = nil

	return errors.Join(errs...)
}
