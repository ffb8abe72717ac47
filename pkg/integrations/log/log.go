// Package log writes notifications to the application log.
package log

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukex/notimaster/pkg/integrations"
	"github.com/dukex/notimaster/pkg/protocol"
)

type Integration struct {
	logger *slog.Logger
}

func (l *Integration) Process(ctx context.Context, delivery protocol.Delivery) error {
	settings := integrations.Resolve(delivery)

	message, err := settings.Required("message")
	if err != nil {
		return err
	}

	integrations.Logger(delivery, l.logger).Log(ctx, parseLevel(settings.String("level")), message,
		"notification_id", delivery.NotificationID,
		"connection_id", delivery.ConnectionID,
	)

	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
