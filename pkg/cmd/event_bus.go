package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/notimaster/pkg/channels/gochannel"
	"github.com/dukex/notimaster/pkg/channels/kafka"
	"github.com/dukex/notimaster/pkg/config"
	"github.com/dukex/notimaster/pkg/eventbus"
)

const serviceName = "notimaster"

// NewEventBus builds the dispatch queue transport for provider: "gochannel"
// (in-process), "kafka" or "redis".
func NewEventBus(ctx context.Context, provider string, cfg config.Config, logger *slog.Logger) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "", "gochannel":
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-process pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, kafka.ParseBrokers(cfg.Kafka.Brokers), serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	case "redis":
		client, err := eventbus.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}

		return eventbus.NewRedisEventBus(client, logger,
			eventbus.WithRedisQueue(cfg.Redis.Queue),
			eventbus.WithRedisMaxAttempts(cfg.Redis.MaxAttempts),
		), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
