package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/notimaster/pkg/cmd"
	"github.com/dukex/notimaster/pkg/log"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "notimaster-worker",
		EnableShellCompletion: true,
		Usage:                 "Deliver queued notifications, run scheduled triggers and prune logs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Dispatch queue backend (gochannel, kafka, redis)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "schedules",
				Usage:   "JSON file with cron scheduled triggers",
				Sources: cli.EnvVars("SCHEDULES_FILE"),
			},
			&cli.StringFlag{
				Name:    "prune-schedule",
				Usage:   "Cron expression for activity log pruning",
				Value:   "@daily",
				Sources: cli.EnvVars("PRUNE_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("notimaster-worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing Notimaster Worker")

			app, err := cmd.NewApp(ctx, logger, cmd.AppOptions{
				ServiceName: "notimaster-worker",
				DatabaseURL: command.String("database-url"),
				EventBus:    command.String("event-bus"),
			})
			if err != nil {
				return err
			}

			defer func() {
				err := app.Close(context.Background())
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close resources", "error", err)
				}
			}()

			worker, err := NewWorkerManager(workerID, app, logger, Options{
				SchedulesFile: command.String("schedules"),
				PruneSchedule: command.String("prune-schedule"),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return worker.Start(ctx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
