package main

import (
	"context"
	"os"

	"github.com/dukex/notimaster/pkg/cmd"
	"github.com/dukex/notimaster/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "notimaster-api",
		Usage:                 "Manage notifications and fire triggers over HTTP",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file:// or postgres://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Dispatch queue backend (gochannel, kafka, redis)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
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

			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing Notimaster API")

			app, err := cmd.NewApp(ctx, logger, cmd.AppOptions{
				ServiceName: "notimaster-api",
				DatabaseURL: command.String("database-url"),
				EventBus:    command.String("event-bus"),
			})
			if err != nil {
				return err
			}

			defer func() {
				err := app.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close resources", "error", err)
				}
			}()

			return NewAPI(logger, app).Start(ctx, command.Int("port"))
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
