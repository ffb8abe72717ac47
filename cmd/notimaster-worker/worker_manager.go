// Package main provides the Notimaster background worker.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/notimaster/pkg/channels/kafka"
	"github.com/dukex/notimaster/pkg/cmd"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/protocol"
	"github.com/dukex/notimaster/pkg/queue"
	"github.com/dukex/notimaster/pkg/services"
	kafkasource "github.com/dukex/notimaster/pkg/sources/kafka"
	"github.com/dukex/notimaster/pkg/sources/schedule"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	SchedulesFile string
	PruneSchedule string
}

type WorkerManager struct {
	id        string
	app       *cmd.App
	worker    *queue.Worker
	schedules *schedule.Source
	sources   []protocol.TriggerSource
	logs      *services.Logs
	prune     cron.Schedule
	logger    *slog.Logger
	now       func() time.Time
}

func NewWorkerManager(id string, app *cmd.App, logger *slog.Logger, opts Options) (*WorkerManager, error) {
	w := &WorkerManager{
		id:        id,
		app:       app,
		schedules: schedule.New(app.Catalog, logger),
		logs:      services.NewLogs(app.Persistence, logger),
		logger:    logger.With("module", "worker_manager"),
		now:       time.Now,
	}

	if app.EventBus != nil {
		w.worker = queue.NewWorker(id, app.EventBus, app.Dispatcher, logger)
	}

	if opts.SchedulesFile != "" {
		loaded, err := schedule.Load(opts.SchedulesFile)
		if err != nil {
			return nil, err
		}

		for _, s := range loaded {
			if err := w.schedules.Add(s); err != nil {
				return nil, err
			}
		}
	}

	w.sources = append(w.sources, w.schedules)

	if topic := app.Config.Kafka.TriggerTopic; topic != "" {
		source, err := kafkasource.New(app.Catalog, kafkasource.Options{
			Brokers:       kafka.ParseBrokers(app.Config.Kafka.Brokers),
			Topic:         topic,
			ConsumerGroup: app.Config.Kafka.TriggerGroup,
		}, logger)
		if err != nil {
			return nil, err
		}

		w.sources = append(w.sources, source)
	}

	if opts.PruneSchedule != "" {
		sched, err := cron.ParseStandard(opts.PruneSchedule)
		if err != nil {
			return nil, fmt.Errorf("invalid prune schedule %q: %w", opts.PruneSchedule, err)
		}

		w.prune = sched
	}

	return w, nil
}

// Start runs until ctx is cancelled or one of the components fails.
func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager", "worker_id", w.id)

	g, gctx := errgroup.WithContext(ctx)

	if w.worker != nil {
		g.Go(func() error {
			err := w.worker.Start(gctx)
			if err != nil {
				w.logger.ErrorContext(gctx, "Failed to subscribe to event bus", "error", err)

				return err
			}

			<-gctx.Done()

			return nil
		})
	}

	for _, source := range w.sources {
		g.Go(func() error {
			err := source.Start(gctx, w.fire)
			if err != nil {
				return err
			}

			<-gctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			return source.Stop(stopCtx)
		})
	}

	if w.prune != nil {
		g.Go(func() error {
			w.runPruner(gctx)

			return nil
		})
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	err := g.Wait()

	w.logger.InfoContext(ctx, "Shutting down worker...")

	return err
}

func (w *WorkerManager) fire(ctx context.Context, triggerID string, data models.TriggerContext) error {
	_, err := w.app.Triggers.Fire(ctx, triggerID, data)

	return err
}

// runPruner prunes once at startup, then on every tick of the prune schedule.
func (w *WorkerManager) runPruner(ctx context.Context) {
	for {
		w.pruneOnce(ctx)

		next := w.prune.Next(w.now())

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()

			return
		case <-timer.C:
		}
	}
}

func (w *WorkerManager) pruneOnce(ctx context.Context) {
	_, err := w.logs.Prune(ctx, w.now())
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to prune activity logs", "error", err)
	}
}
