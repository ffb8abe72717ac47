// Package main provides the notimaster administration CLI.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dukex/notimaster/pkg/cmd"
	"github.com/dukex/notimaster/pkg/integrations/webpush"
	"github.com/dukex/notimaster/pkg/log"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/services"
	cli "github.com/urfave/cli/v3"
)

var errInvalidNotifications = errors.New("some notifications are invalid")

func databaseURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "database-url",
		Usage:    "Database connection URL for persistence",
		Required: true,
		Sources:  cli.EnvVars("DATABASE_URL"),
	}
}

func newApp(ctx context.Context, command *cli.Command, eventBus string) (*cmd.App, error) {
	log.Setup(command.String("log-level"))

	return cmd.NewApp(ctx, log.WithModule("cli"), cmd.AppOptions{
		ServiceName: "notimaster-cli",
		DatabaseURL: command.String("database-url"),
		EventBus:    eventBus,
	})
}

func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check every stored notification against the triggers and integrations",
		Flags: []cli.Flag{databaseURLFlag()},
		Action: func(ctx context.Context, command *cli.Command) error {
			app, err := newApp(ctx, command, "")
			if err != nil {
				return err
			}
			defer func() { _ = app.Close(ctx) }()

			return validateNotifications(ctx, command.Root().Writer, app)
		},
	}
}

func validateNotifications(ctx context.Context, out io.Writer, app *cmd.App) error {
	service := services.NewNotification(app.Persistence, app.Catalog, app.Registry)

	notifications, err := service.List(ctx, services.ListNotificationsRequest{})
	if err != nil {
		return err
	}

	invalid := 0

	for _, notification := range notifications {
		if err := service.Validate(notification); err != nil {
			invalid++

			fmt.Fprintf(out, "FAIL %s (%s): %v\n", notification.ID, notification.Title, err)

			continue
		}

		fmt.Fprintf(out, "OK   %s (%s)\n", notification.ID, notification.Title)
	}

	fmt.Fprintf(out, "%d notifications, %d invalid\n", len(notifications), invalid)

	if invalid > 0 {
		return errInvalidNotifications
	}

	return nil
}

func FireCommand() *cli.Command {
	return &cli.Command{
		Name:      "fire",
		Usage:     "Fire a trigger with JSON data",
		ArgsUsage: "<trigger-id>",
		Flags: []cli.Flag{
			databaseURLFlag(),
			&cli.StringFlag{
				Name:  "data",
				Usage: "Trigger data as a JSON object, or @file to read it from a file",
				Value: "{}",
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Dispatch queue backend used when background processing is enabled",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			triggerID := command.Args().First()
			if triggerID == "" {
				return errors.New("trigger id is required")
			}

			data, err := parseTriggerData(command.String("data"))
			if err != nil {
				return err
			}

			app, err := newApp(ctx, command, command.String("event-bus"))
			if err != nil {
				return err
			}
			defer func() { _ = app.Close(ctx) }()

			dispatched, err := app.Triggers.Fire(ctx, triggerID, data)
			if err != nil {
				return err
			}

			fmt.Fprintf(command.Root().Writer, "Dispatched %d notifications for %s\n", dispatched, triggerID)

			return nil
		},
	}
}

func parseTriggerData(raw string) (models.TriggerContext, error) {
	if len(raw) > 0 && raw[0] == '@' {
		content, err := os.ReadFile(raw[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to read trigger data: %w", err)
		}

		raw = string(content)
	}

	data := models.TriggerContext{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("trigger data must be a JSON object: %w", err)
	}

	return data, nil
}

func VAPIDKeysCommand() *cli.Command {
	return &cli.Command{
		Name:  "vapid-keys",
		Usage: "Generate a VAPID key pair for web push",
		Action: func(_ context.Context, command *cli.Command) error {
			public, private, err := webpush.GenerateVAPIDKeys()
			if err != nil {
				return err
			}

			fmt.Fprintf(command.Root().Writer, "VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", public, private)

			return nil
		},
	}
}
